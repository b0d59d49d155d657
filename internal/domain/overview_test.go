package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeProgress(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		totalCards int
		progress   []*Progress
		expected   StudyOverview
	}{
		{
			name:       "empty collection",
			totalCards: 0,
			expected:   StudyOverview{},
		},
		{
			name:       "nothing reviewed is all due",
			totalCards: 3,
			expected:   StudyOverview{TotalCards: 3, DueCards: 3},
		},
		{
			name:       "mixed",
			totalCards: 5,
			progress: []*Progress{
				{Status: ProgressStatusMastered, NextReviewAt: now.AddDate(0, 0, 30)},
				{Status: ProgressStatusLearning, NextReviewAt: now.Add(-time.Minute)},
				{Status: ProgressStatusReview, NextReviewAt: now},
				nil,
			},
			// two untracked cards plus two due records
			expected: StudyOverview{TotalCards: 5, DueCards: 4, MasteredCards: 1, LearningCards: 1},
		},
		{
			name:       "nothing due",
			totalCards: 2,
			progress: []*Progress{
				{Status: ProgressStatusLearning, NextReviewAt: now.AddDate(0, 0, 1)},
				{Status: ProgressStatusLearning, NextReviewAt: now.AddDate(0, 0, 1)},
			},
			expected: StudyOverview{TotalCards: 2, LearningCards: 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SummarizeProgress(tc.totalCards, tc.progress, now))
		})
	}
}
