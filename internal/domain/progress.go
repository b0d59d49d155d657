package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgressStatus is the learning stage of a card for one learner.
type ProgressStatus string

// Progress statuses. A record starts as NEW and only the scheduling engine
// moves it between the other states.
const (
	ProgressStatusNew      ProgressStatus = "NEW"
	ProgressStatusLearning ProgressStatus = "LEARNING"
	ProgressStatusReview   ProgressStatus = "REVIEW"
	ProgressStatusMastered ProgressStatus = "MASTERED"
)

// Initial scheduling values for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
)

// Progress-specific validation errors
var (
	ErrProgressUserIDEmpty   = fmt.Errorf("%w: progress user ID cannot be empty", ErrValidation)
	ErrProgressCardIDEmpty   = fmt.Errorf("%w: progress card ID cannot be empty", ErrValidation)
	ErrProgressCounters      = fmt.Errorf("%w: progress counters are inconsistent", ErrValidation)
	ErrProgressEaseFactor    = fmt.Errorf("%w: ease factor must be at least 1.3", ErrValidation)
	ErrProgressInterval      = fmt.Errorf("%w: interval must be at least 1 day", ErrValidation)
	ErrInvalidProgressStatus = fmt.Errorf("%w: invalid progress status", ErrValidation)
)

// MinEaseFactor is the hard floor for a progress record's ease factor.
const MinEaseFactor = 1.3

// Progress is the spaced-repetition memory state for a (learner, card) pair.
//
// Records are created lazily the first time a learner reviews a card. A card
// with no Progress row for a learner is treated as due.
type Progress struct {
	UserID             uuid.UUID      `json:"user_id"`
	CardID             uuid.UUID      `json:"card_id"`
	TimesReviewed      int            `json:"times_reviewed"`
	TimesCorrect       int            `json:"times_correct"`
	ConsecutiveCorrect int            `json:"consecutive_correct"`
	EaseFactor         float64        `json:"ease_factor"`
	Interval           int            `json:"interval"`
	Status             ProgressStatus `json:"status"`
	LastReviewedAt     time.Time      `json:"last_reviewed_at"`
	NextReviewAt       time.Time      `json:"next_review_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewProgress creates a default progress record for a card the learner has
// not reviewed yet.
func NewProgress(userID, cardID uuid.UUID) (*Progress, error) {
	now := time.Now().UTC()
	p := &Progress{
		UserID:     userID,
		CardID:     cardID,
		EaseFactor: DefaultEaseFactor,
		Interval:   DefaultInterval,
		Status:     ProgressStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the Progress has valid data.
func (p *Progress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrProgressUserIDEmpty
	}

	if p.CardID == uuid.Nil {
		return ErrProgressCardIDEmpty
	}

	if p.TimesReviewed < 0 || p.TimesCorrect < 0 || p.ConsecutiveCorrect < 0 ||
		p.TimesCorrect > p.TimesReviewed || p.ConsecutiveCorrect > p.TimesCorrect {
		return ErrProgressCounters
	}

	if p.EaseFactor < MinEaseFactor {
		return ErrProgressEaseFactor
	}

	if p.Interval < 1 {
		return ErrProgressInterval
	}

	if !p.Status.IsValid() {
		return ErrInvalidProgressStatus
	}

	return nil
}

// IsDue reports whether the card should be reviewed at now. A record that
// has never been scheduled is always due.
func (p *Progress) IsDue(now time.Time) bool {
	return p.NextReviewAt.IsZero() || !p.NextReviewAt.After(now)
}

// Clone returns a copy of the record.
func (p *Progress) Clone() *Progress {
	c := *p
	return &c
}

// IsValid reports whether s is a known progress status.
func (s ProgressStatus) IsValid() bool {
	switch s {
	case ProgressStatusNew, ProgressStatusLearning, ProgressStatusReview, ProgressStatusMastered:
		return true
	default:
		return false
	}
}
