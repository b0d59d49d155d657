package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// collectionColumns selects a collection joined with its approved users. A
// collection with no approved users yields a single row with a NULL user_id.
const collectionColumns = `
	SELECT c.id, c.name, c.owner_id, c.is_public, c.created_at, c.updated_at, a.user_id
	FROM collections c
	LEFT JOIN collection_approved_users a ON a.collection_id = c.id
`

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of the CollectionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCollectionStore(db store.DBTX, logger *slog.Logger) *PostgresCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// Create implements store.CollectionStore.Create
func (s *PostgresCollectionStore) Create(ctx context.Context, collection *domain.Collection) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := collection.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO collections (id, name, owner_id, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		collection.ID,
		collection.Name,
		collection.OwnerID,
		collection.IsPublic,
		collection.CreatedAt,
		collection.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert collection",
			slog.String("collection_id", collection.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCollectionNotFound)
	}

	log.Debug("collection created",
		slog.String("collection_id", collection.ID.String()),
		slog.String("owner_id", collection.OwnerID.String()))
	return nil
}

// GetByID implements store.CollectionStore.GetByID
func (s *PostgresCollectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	query := collectionColumns + `
		WHERE c.id = $1
		ORDER BY a.created_at
	`
	collections, err := s.query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return nil, store.ErrCollectionNotFound
	}
	return collections[0], nil
}

// Update implements store.CollectionStore.Update
func (s *PostgresCollectionStore) Update(ctx context.Context, collection *domain.Collection) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := collection.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE collections
		SET name = $2, is_public = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		collection.ID,
		collection.Name,
		collection.IsPublic,
		collection.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update collection",
			slog.String("collection_id", collection.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCollectionNotFound)
	}

	return CheckRowsAffected(result, store.ErrCollectionNotFound)
}

// Delete implements store.CollectionStore.Delete
func (s *PostgresCollectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to remove collection",
			slog.String("collection_id", id.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCollectionNotFound)
	}

	if err := CheckRowsAffected(result, store.ErrCollectionNotFound); err != nil {
		return err
	}

	log.Debug("collection removed", slog.String("collection_id", id.String()))
	return nil
}

// AddApprovedUser implements store.CollectionStore.AddApprovedUser
func (s *PostgresCollectionStore) AddApprovedUser(ctx context.Context, collectionID, userID uuid.UUID) error {
	query := `
		INSERT INTO collection_approved_users (collection_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (collection_id, user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, collectionID, userID); err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrCollectionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to approve user",
			slog.String("collection_id", collectionID.String()),
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrCollectionNotFound)
	}
	return nil
}

// ListAccessible implements store.CollectionStore.ListAccessible
func (s *PostgresCollectionStore) ListAccessible(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Collection, error) {
	query := collectionColumns + `
		WHERE c.owner_id = $1
		   OR c.is_public
		   OR EXISTS (
		       SELECT 1 FROM collection_approved_users x
		       WHERE x.collection_id = c.id AND x.user_id = $1
		   )
		ORDER BY c.name, c.id, a.created_at
	`
	return s.query(ctx, query, userID)
}

// query runs a collectionColumns query and folds the joined rows into one
// collection per id, keeping row order.
func (s *PostgresCollectionStore) query(ctx context.Context, query string, args ...any) ([]*domain.Collection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query collections", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrCollectionNotFound)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", redact.Error(cerr)))
		}
	}()

	var (
		result []*domain.Collection
		byID   = make(map[uuid.UUID]*domain.Collection)
	)
	for rows.Next() {
		var (
			c        domain.Collection
			approved uuid.NullUUID
		)
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.OwnerID,
			&c.IsPublic,
			&c.CreatedAt,
			&c.UpdatedAt,
			&approved,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan collection: %v", store.ErrInternal, err)
		}

		existing, ok := byID[c.ID]
		if !ok {
			c.ApprovedUserIDs = []uuid.UUID{}
			existing = &c
			byID[c.ID] = existing
			result = append(result, existing)
		}
		if approved.Valid {
			existing.ApprovedUserIDs = append(existing.ApprovedUserIDs, approved.UUID)
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate collections", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrCollectionNotFound)
	}

	return result, nil
}

// WithTx implements store.CollectionStore.WithTx
func (s *PostgresCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return &PostgresCollectionStore{
		db:     tx,
		logger: s.logger,
	}
}
