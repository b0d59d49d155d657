package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// Common errors
var (
	ErrNilProgress       = errors.New("progress cannot be nil")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 5")
	ErrNilParams         = errors.New("srs params cannot be nil")
)

// Service defines the interface for SRS algorithm operations.
//
// Implementations are pure: they read nothing but their arguments and have no
// shared mutable state, so they are safe for concurrent use. Callers must
// serialize reviews of the same (learner, card) pair themselves, for example
// with a row lock around load, ApplyReview and save.
type Service interface {
	// ApplyReview computes the progress that results from reviewing a card at
	// now. difficulty is the learner's rating from 1 (easiest) to 5
	// (hardest); values outside that range are rejected, not clamped. The
	// given progress is not modified.
	ApplyReview(
		progress *domain.Progress,
		correct bool,
		difficulty int,
		now time.Time,
	) (*domain.Progress, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	return &defaultService{
		params: params,
	}, nil
}

// ApplyReview implements the Service interface
func (s *defaultService) ApplyReview(
	progress *domain.Progress,
	correct bool,
	difficulty int,
	now time.Time,
) (*domain.Progress, error) {
	// Validate inputs
	if progress == nil {
		return nil, ErrNilProgress
	}

	if difficulty < s.params.MinDifficulty || difficulty > s.params.MaxDifficulty {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}

	return calculateNextProgress(progress, correct, difficulty, now, s.params), nil
}
