package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgress(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	cardID := uuid.New()

	p, err := NewProgress(userID, cardID)
	require.NoError(t, err)

	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, cardID, p.CardID)
	assert.Equal(t, 0, p.TimesReviewed)
	assert.Equal(t, 0, p.TimesCorrect)
	assert.Equal(t, 0, p.ConsecutiveCorrect)
	assert.Equal(t, 2.5, p.EaseFactor)
	assert.Equal(t, 1, p.Interval)
	assert.Equal(t, ProgressStatusNew, p.Status)
	assert.True(t, p.NextReviewAt.IsZero())

	_, err = NewProgress(uuid.Nil, cardID)
	assert.ErrorIs(t, err, ErrProgressUserIDEmpty)

	_, err = NewProgress(userID, uuid.Nil)
	assert.ErrorIs(t, err, ErrProgressCardIDEmpty)
}

func TestProgressValidate(t *testing.T) {
	t.Parallel()
	valid := Progress{
		UserID:             uuid.New(),
		CardID:             uuid.New(),
		TimesReviewed:      4,
		TimesCorrect:       3,
		ConsecutiveCorrect: 2,
		EaseFactor:         2.36,
		Interval:           6,
		Status:             ProgressStatusReview,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(p *Progress)
		wantErr error
	}{
		{"correct exceeds reviewed", func(p *Progress) { p.TimesCorrect = 5 }, ErrProgressCounters},
		{"negative streak", func(p *Progress) { p.ConsecutiveCorrect = -1 }, ErrProgressCounters},
		{"ease below floor", func(p *Progress) { p.EaseFactor = 1.29 }, ErrProgressEaseFactor},
		{"zero interval", func(p *Progress) { p.Interval = 0 }, ErrProgressInterval},
		{"unknown status", func(p *Progress) { p.Status = "DONE" }, ErrInvalidProgressStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tc.wantErr)
		})
	}
}

func TestProgressIsDue(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	p := Progress{}
	assert.True(t, p.IsDue(now), "never scheduled is due")

	p.NextReviewAt = now
	assert.True(t, p.IsDue(now), "due exactly at now")

	p.NextReviewAt = now.Add(time.Second)
	assert.False(t, p.IsDue(now))

	p.NextReviewAt = now.Add(-time.Hour)
	assert.True(t, p.IsDue(now))
}

func TestProgressClone(t *testing.T) {
	t.Parallel()
	p, err := NewProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	c := p.Clone()
	c.TimesReviewed = 10

	assert.Equal(t, 0, p.TimesReviewed)
}
