package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// CollectionStore defines the interface for collection data persistence.
//
// Returned collections always carry their full ApprovedUserIDs set, since the
// access policy is evaluated against it on every read and write.
type CollectionStore interface {
	// Create saves a new collection. The approved set of a new collection is
	// expected to be empty.
	Create(ctx context.Context, collection *domain.Collection) error

	// GetByID retrieves a collection by ID together with its approved users.
	// Returns ErrCollectionNotFound if the collection does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error)

	// Update persists name, visibility and UpdatedAt.
	// Returns ErrCollectionNotFound if the collection does not exist.
	Update(ctx context.Context, collection *domain.Collection) error

	// Delete removes a collection. Cards, progress, approvals and access
	// requests are removed by ON DELETE CASCADE.
	// Returns ErrCollectionNotFound if the collection does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddApprovedUser grants userID read access. Adding an already-approved
	// user is a no-op.
	AddApprovedUser(ctx context.Context, collectionID, userID uuid.UUID) error

	// ListAccessible returns collections the user owns, is approved for, or
	// that are public, ordered by name.
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error)

	// WithTx returns a new CollectionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CollectionStore
}
