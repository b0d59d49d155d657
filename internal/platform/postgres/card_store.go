package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// CreateMultiple implements store.CardStore.CreateMultiple
// Every card is validated before the first insert, so an invalid card leaves
// the database untouched. The caller supplies the transaction.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO cards (id, collection_id, term, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, card := range cards {
		_, err := s.db.ExecContext(ctx, query,
			card.ID,
			card.CollectionID,
			card.Term,
			card.Definition,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return store.ErrCollectionNotFound
			}
			log.Error("failed to insert card",
				slog.String("card_id", card.ID.String()),
				slog.String("error", redact.Error(err)))
			return MapError(err, store.ErrCardNotFound)
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT id, collection_id, term, definition, created_at, updated_at
		FROM cards
		WHERE id = $1
	`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load card",
				slog.String("card_id", id.String()),
				slog.String("error", redact.Error(err)))
		}
		return nil, MapError(err, store.ErrCardNotFound)
	}
	return card, nil
}

// UpdateText implements store.CardStore.UpdateText
func (s *PostgresCardStore) UpdateText(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET term = $2, definition = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, card.ID, card.Term, card.Definition, card.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCardNotFound)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove card",
			slog.String("card_id", id.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCardNotFound)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// ListByCollection implements store.CardStore.ListByCollection
func (s *PostgresCardStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT id, collection_id, term, definition, created_at, updated_at
		FROM cards
		WHERE collection_id = $1
		ORDER BY created_at, id
	`
	return s.queryCards(ctx, query, collectionID)
}

// CountByCollection implements store.CardStore.CountByCollection
func (s *PostgresCardStore) CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE collection_id = $1`,
		collectionID,
	).Scan(&n)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count cards",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", redact.Error(err)))
		return 0, MapError(err, store.ErrCollectionNotFound)
	}
	return n, nil
}

// ListDueForUser implements store.CardStore.ListDueForUser
func (s *PostgresCardStore) ListDueForUser(
	ctx context.Context,
	collectionID, userID uuid.UUID,
	now time.Time,
) ([]*domain.Card, error) {
	query := `
		SELECT c.id, c.collection_id, c.term, c.definition, c.created_at, c.updated_at
		FROM cards c
		LEFT JOIN progress p ON p.card_id = c.id AND p.user_id = $2
		WHERE c.collection_id = $1
		  AND (p.card_id IS NULL OR p.next_review_at IS NULL OR p.next_review_at <= $3)
		ORDER BY p.next_review_at ASC NULLS FIRST, c.created_at, c.id
	`
	return s.queryCards(ctx, query, collectionID, userID, now)
}

func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrCardNotFound)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", redact.Error(cerr)))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan card: %v", store.ErrInternal, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate cards", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrCardNotFound)
	}

	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var c domain.Card
	if err := row.Scan(
		&c.ID,
		&c.CollectionID,
		&c.Term,
		&c.Definition,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}
