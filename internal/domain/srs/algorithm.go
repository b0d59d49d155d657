package srs

import (
	"math"
	"time"

	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a correct review.
//
// The ease factor controls how quickly intervals grow once the fixed early
// intervals have been used up. A rating of params.MaxDifficulty adds
// params.BaseEaseBonus; each step below it subtracts a growing penalty:
//
//	ef' = max(MinEaseFactor, ef + (BaseEaseBonus - q*(LinearPenalty + q*QuadraticPenalty)))
//
// where q = MaxDifficulty - difficulty. With the default params this is
// +0.10, -0.14 and -0.54 for difficulty 5, 3 and 1.
func calculateNewEaseFactor(currentEF float64, difficulty int, params *Params) float64 {
	q := float64(params.MaxDifficulty - difficulty)
	newEF := currentEF + (params.BaseEaseBonus - q*(params.LinearPenalty+q*params.QuadraticPenalty))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days after a correct review.
//
// Parameters:
//   - currentInterval: the interval before this review
//   - consecutiveCorrect: the streak including this review
//   - easeFactor: the ease factor already updated for this review
//
// The first two reviews of a streak use fixed intervals. From the third on the
// previous interval is multiplied by the ease factor and rounded half away from
// zero to whole days.
func calculateNewInterval(
	currentInterval int,
	consecutiveCorrect int,
	easeFactor float64,
	params *Params,
) int {
	switch consecutiveCorrect {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	interval := int(math.Round(float64(currentInterval) * easeFactor))
	if interval < 1 {
		interval = 1
	}
	return interval
}

// calculateStatus maps a consecutive-correct streak to a progress status.
func calculateStatus(consecutiveCorrect int, params *Params) domain.ProgressStatus {
	switch {
	case consecutiveCorrect >= params.MasteryThreshold:
		return domain.ProgressStatusMastered
	case consecutiveCorrect >= params.ReviewThreshold:
		return domain.ProgressStatusReview
	default:
		return domain.ProgressStatusLearning
	}
}

// calculateNextProgress returns a new Progress reflecting one review.
//
// The input record is copied and never modified. A correct review bumps the
// counters, updates the ease factor, then derives the interval and status from
// the new streak. An incorrect review resets the streak, schedules the card
// params.LapseInterval days out and moves it back to LEARNING while keeping the
// ease factor. The next review is always now + interval days.
func calculateNextProgress(
	progress *domain.Progress,
	correct bool,
	difficulty int,
	now time.Time,
	params *Params,
) *domain.Progress {
	next := progress.Clone()

	next.TimesReviewed++
	next.LastReviewedAt = now
	next.UpdatedAt = now

	if correct {
		next.TimesCorrect++
		next.ConsecutiveCorrect++
		next.EaseFactor = calculateNewEaseFactor(progress.EaseFactor, difficulty, params)
		next.Interval = calculateNewInterval(
			progress.Interval,
			next.ConsecutiveCorrect,
			next.EaseFactor,
			params,
		)
		next.Status = calculateStatus(next.ConsecutiveCorrect, params)
	} else {
		next.ConsecutiveCorrect = 0
		next.Interval = params.LapseInterval
		next.Status = domain.ProgressStatusLearning
	}

	next.NextReviewAt = now.AddDate(0, 0, next.Interval)

	return next
}
