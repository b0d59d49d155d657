package domain

import "time"

// StudyOverview summarizes one learner's progress over a collection.
type StudyOverview struct {
	TotalCards    int `json:"total_cards"`
	DueCards      int `json:"due_cards"`
	MasteredCards int `json:"mastered_cards"`
	LearningCards int `json:"learning_cards"`
}

// SummarizeProgress computes an overview for a collection of totalCards cards
// given the learner's progress records for cards in that collection.
//
// Cards without a progress record have never been reviewed and count as due.
// Records for the same card are expected to be unique; extra records beyond
// totalCards are still counted by status but cannot make DueCards exceed
// TotalCards.
func SummarizeProgress(totalCards int, progress []*Progress, now time.Time) StudyOverview {
	overview := StudyOverview{TotalCards: totalCards}

	tracked := 0
	for _, p := range progress {
		if p == nil {
			continue
		}
		tracked++

		if p.IsDue(now) {
			overview.DueCards++
		}

		switch p.Status {
		case ProgressStatusMastered:
			overview.MasteredCards++
		case ProgressStatusLearning:
			overview.LearningCards++
		}
	}

	if untracked := totalCards - tracked; untracked > 0 {
		overview.DueCards += untracked
	}

	if overview.DueCards > totalCards {
		overview.DueCards = totalCards
	}

	return overview
}
