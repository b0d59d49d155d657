package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// ProgressStore defines the interface for per-learner progress persistence.
type ProgressStore interface {
	// Get retrieves the progress of userID on cardID.
	// Returns ErrProgressNotFound if the user never reviewed the card.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.Progress, error)

	// GetForUpdate retrieves progress with a row-level lock using SELECT FOR UPDATE.
	// This must be used within a transaction; the lock is held until it ends,
	// which serializes concurrent reviews of the same (user, card) pair.
	// Returns ErrProgressNotFound if the row does not exist.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.Progress, error)

	// EnsureExists inserts a default progress row for (userID, cardID) unless
	// one already exists. Concurrent callers never create duplicates.
	EnsureExists(ctx context.Context, userID, cardID uuid.UUID) error

	// Update persists all scheduling fields of an existing record.
	// Returns ErrProgressNotFound if the row does not exist.
	// Returns validation errors from domain.Progress if data is invalid.
	Update(ctx context.Context, progress *domain.Progress) error

	// ListByCollection returns userID's progress rows for cards in the collection.
	ListByCollection(ctx context.Context, userID, collectionID uuid.UUID) ([]*domain.Progress, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
