package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// PostgresAccessRequestStore implements the store.AccessRequestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccessRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAccessRequestStore creates a new PostgreSQL implementation of the AccessRequestStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAccessRequestStore(db store.DBTX, logger *slog.Logger) *PostgresAccessRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAccessRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "access_request_store")),
	}
}

// Ensure PostgresAccessRequestStore implements store.AccessRequestStore interface
var _ store.AccessRequestStore = (*PostgresAccessRequestStore)(nil)

// Create implements store.AccessRequestStore.Create
func (s *PostgresAccessRequestStore) Create(ctx context.Context, request *domain.AccessRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := request.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO access_requests (id, requester_id, collection_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		request.ID,
		request.RequesterID,
		request.CollectionID,
		string(request.Status),
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrAccessRequestExists
		}
		if IsForeignKeyViolation(err) {
			return store.ErrCollectionNotFound
		}
		log.Error("failed to insert access request",
			slog.String("request_id", request.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrAccessRequestNotFound)
	}

	log.Debug("access request created",
		slog.String("request_id", request.ID.String()),
		slog.String("collection_id", request.CollectionID.String()))
	return nil
}

// GetForUpdate implements store.AccessRequestStore.GetForUpdate
func (s *PostgresAccessRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AccessRequest, error) {
	query := `
		SELECT id, requester_id, collection_id, status, created_at, updated_at
		FROM access_requests
		WHERE id = $1
		FOR UPDATE
	`
	return s.getOne(ctx, query, id)
}

// FindByRequester implements store.AccessRequestStore.FindByRequester
func (s *PostgresAccessRequestStore) FindByRequester(
	ctx context.Context,
	requesterID, collectionID uuid.UUID,
) (*domain.AccessRequest, error) {
	query := `
		SELECT id, requester_id, collection_id, status, created_at, updated_at
		FROM access_requests
		WHERE requester_id = $1 AND collection_id = $2
	`
	return s.getOne(ctx, query, requesterID, collectionID)
}

func (s *PostgresAccessRequestStore) getOne(ctx context.Context, query string, args ...any) (*domain.AccessRequest, error) {
	var (
		r      domain.AccessRequest
		status string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&r.ID,
		&r.RequesterID,
		&r.CollectionID,
		&status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load access request",
				slog.String("error", redact.Error(err)))
		}
		return nil, MapError(err, store.ErrAccessRequestNotFound)
	}
	r.Status = domain.AccessRequestStatus(status)
	return &r, nil
}

// ListPendingByCollection implements store.AccessRequestStore.ListPendingByCollection
func (s *PostgresAccessRequestStore) ListPendingByCollection(
	ctx context.Context,
	collectionID uuid.UUID,
) ([]*domain.AccessRequestDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT r.id, r.requester_id, r.collection_id, r.status, r.created_at, r.updated_at,
		       c.name, u.username
		FROM access_requests r
		JOIN collections c ON c.id = r.collection_id
		JOIN users u ON u.id = r.requester_id
		WHERE r.collection_id = $1 AND r.status = $2
		ORDER BY r.created_at, r.id
	`
	rows, err := s.db.QueryContext(ctx, query, collectionID, string(domain.AccessRequestPending))
	if err != nil {
		log.Error("failed to query access requests", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrAccessRequestNotFound)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", redact.Error(cerr)))
		}
	}()

	result := []*domain.AccessRequestDetails{}
	for rows.Next() {
		var (
			d      domain.AccessRequestDetails
			status string
		)
		if err := rows.Scan(
			&d.ID,
			&d.RequesterID,
			&d.CollectionID,
			&status,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.CollectionName,
			&d.RequesterUsername,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan access request: %v", store.ErrInternal, err)
		}
		d.Status = domain.AccessRequestStatus(status)
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate access requests", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrAccessRequestNotFound)
	}

	return result, nil
}

// CompareAndSwapStatus implements store.AccessRequestStore.CompareAndSwapStatus
func (s *PostgresAccessRequestStore) CompareAndSwapStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.AccessRequestStatus,
) (bool, error) {
	query := `
		UPDATE access_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to swap access request status",
			slog.String("request_id", id.String()),
			slog.String("error", redact.Error(err)))
		return false, MapError(err, store.ErrAccessRequestNotFound)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to get rows affected: %v", store.ErrInternal, err)
	}
	return n == 1, nil
}

// Delete implements store.AccessRequestStore.Delete
func (s *PostgresAccessRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM access_requests WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove access request",
			slog.String("request_id", id.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrAccessRequestNotFound)
	}

	return CheckRowsAffected(result, store.ErrAccessRequestNotFound)
}

// WithTx implements store.AccessRequestStore.WithTx
func (s *PostgresAccessRequestStore) WithTx(tx *sql.Tx) store.AccessRequestStore {
	return &PostgresAccessRequestStore{
		db:     tx,
		logger: s.logger,
	}
}
