package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store.
	// IMPORTANT: This method MUST be run within a transaction for atomicity and data consistency.
	// Use the WithTx method with store.RunInTransaction to ensure proper transaction handling.
	//
	// All cards must be valid according to domain validation rules.
	// Returns validation errors if any card data is invalid.
	//
	// Usage example:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// UpdateText persists a card's term, definition and UpdatedAt.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateText(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	// Progress rows are removed by ON DELETE CASCADE.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByCollection returns all cards of a collection in creation order.
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error)

	// CountByCollection returns the number of cards in a collection.
	CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error)

	// ListDueForUser returns the cards of a collection that userID should
	// review at now: cards the user never reviewed and cards whose next review
	// is at or before now. Never-reviewed cards come first, then by next
	// review time.
	ListDueForUser(
		ctx context.Context,
		collectionID, userID uuid.UUID,
		now time.Time,
	) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
