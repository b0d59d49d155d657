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

const progressColumns = `
	SELECT p.user_id, p.card_id, p.times_reviewed, p.times_correct, p.consecutive_correct,
	       p.ease_factor, p.interval_days, p.status, p.last_reviewed_at, p.next_review_at,
	       p.created_at, p.updated_at
	FROM progress p
`

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Get implements store.ProgressStore.Get
func (s *PostgresProgressStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.Progress, error) {
	query := progressColumns + `WHERE p.user_id = $1 AND p.card_id = $2`
	return s.getOne(ctx, query, userID, cardID)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
func (s *PostgresProgressStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Progress, error) {
	query := progressColumns + `WHERE p.user_id = $1 AND p.card_id = $2 FOR UPDATE`
	return s.getOne(ctx, query, userID, cardID)
}

func (s *PostgresProgressStore) getOne(ctx context.Context, query string, userID, cardID uuid.UUID) (*domain.Progress, error) {
	p, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, cardID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load progress",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()),
				slog.String("error", redact.Error(err)))
		}
		return nil, MapError(err, store.ErrProgressNotFound)
	}
	return p, nil
}

// EnsureExists implements store.ProgressStore.EnsureExists
func (s *PostgresProgressStore) EnsureExists(ctx context.Context, userID, cardID uuid.UUID) error {
	query := `
		INSERT INTO progress (
			user_id, card_id, times_reviewed, times_correct, consecutive_correct,
			ease_factor, interval_days, status, created_at, updated_at
		)
		VALUES ($1, $2, 0, 0, 0, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, card_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		userID,
		cardID,
		domain.DefaultEaseFactor,
		domain.DefaultInterval,
		string(domain.ProgressStatusNew),
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to ensure progress row",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrProgressNotFound)
	}
	return nil
}

// Update implements store.ProgressStore.Update
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.Progress) error {
	if err := progress.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE progress
		SET times_reviewed = $3,
		    times_correct = $4,
		    consecutive_correct = $5,
		    ease_factor = $6,
		    interval_days = $7,
		    status = $8,
		    last_reviewed_at = $9,
		    next_review_at = $10,
		    updated_at = $11
		WHERE user_id = $1 AND card_id = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.CardID,
		progress.TimesReviewed,
		progress.TimesCorrect,
		progress.ConsecutiveCorrect,
		progress.EaseFactor,
		progress.Interval,
		string(progress.Status),
		nullTime(progress.LastReviewedAt),
		nullTime(progress.NextReviewAt),
		progress.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update progress",
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err, store.ErrProgressNotFound)
	}

	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// ListByCollection implements store.ProgressStore.ListByCollection
func (s *PostgresProgressStore) ListByCollection(
	ctx context.Context,
	userID, collectionID uuid.UUID,
) ([]*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := progressColumns + `
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = $1 AND c.collection_id = $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, collectionID)
	if err != nil {
		log.Error("failed to query progress", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrProgressNotFound)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", redact.Error(cerr)))
		}
	}()

	result := []*domain.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan progress: %v", store.ErrInternal, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate progress", slog.String("error", redact.Error(err)))
		return nil, MapError(err, store.ErrProgressNotFound)
	}

	return result, nil
}

func scanProgress(row rowScanner) (*domain.Progress, error) {
	var (
		p            domain.Progress
		status       string
		lastReviewed sql.NullTime
		nextReview   sql.NullTime
	)
	if err := row.Scan(
		&p.UserID,
		&p.CardID,
		&p.TimesReviewed,
		&p.TimesCorrect,
		&p.ConsecutiveCorrect,
		&p.EaseFactor,
		&p.Interval,
		&status,
		&lastReviewed,
		&nextReview,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.ProgressStatus(status)
	if lastReviewed.Valid {
		p.LastReviewedAt = lastReviewed.Time
	}
	if nextReview.Valid {
		p.NextReviewAt = nextReview.Time
	}
	return &p, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
