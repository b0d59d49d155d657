package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/clock"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/domain/srs"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// StudyService records review outcomes and answers scheduling queries.
type StudyService struct {
	cards       store.CardStore
	collections store.CollectionStore
	progress    store.ProgressStore
	engine      srs.Service
	clock       clock.Clock
	db          *sql.DB
	logger      *slog.Logger
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil.
func NewStudyService(
	cards store.CardStore,
	collections store.CollectionStore,
	progress store.ProgressStore,
	engine srs.Service,
	clk clock.Clock,
	db *sql.DB,
	logger *slog.Logger,
) (*StudyService, error) {
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}
	if collections == nil {
		return nil, fmt.Errorf("%w: collection store cannot be nil", domain.ErrValidation)
	}
	if progress == nil {
		return nil, fmt.Errorf("%w: progress store cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: srs service cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", domain.ErrValidation)
	}

	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StudyService{
		cards:       cards,
		collections: collections,
		progress:    progress,
		engine:      engine,
		clock:       clk,
		db:          db,
		logger:      logger.With(slog.String("component", "study_service")),
	}, nil
}

// Review applies one review outcome to the actor's progress on a card and
// returns the updated record.
//
// The progress row is created on first review with INSERT ... ON CONFLICT
// DO NOTHING and then locked with SELECT ... FOR UPDATE, so concurrent
// reviews of the same (actor, card) pair are applied one after the other
// and none is lost.
func (s *StudyService) Review(
	ctx context.Context,
	actorID, cardID uuid.UUID,
	correct bool,
	difficulty int,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, translateStoreError("review card", err)
	}

	collection, err := loadCollection(ctx, s.collections, card.CollectionID)
	if err != nil {
		return nil, err
	}

	if _, err := access.RequireReadAccess(actorID, collection); err != nil {
		log.Warn("review refused",
			slog.String("card_id", cardID.String()),
			slog.String("actor_id", actorID.String()))
		return nil, err
	}

	var updated *domain.Progress
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProgress := s.progress.WithTx(tx)

		if err := txProgress.EnsureExists(ctx, actorID, cardID); err != nil {
			return err
		}

		current, err := txProgress.GetForUpdate(ctx, actorID, cardID)
		if err != nil {
			return err
		}

		next, err := s.engine.ApplyReview(current, correct, difficulty, s.clock.Now())
		if err != nil {
			if errors.Is(err, srs.ErrInvalidDifficulty) {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}
			return NewServiceError("review card", "failed to apply review", err)
		}

		if err := txProgress.Update(ctx, next); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidArgument) {
			log.Error("failed to record review",
				slog.String("error", redact.Error(err)),
				slog.String("card_id", cardID.String()))
		}
		return nil, passOrWrap("review card", err)
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.Bool("correct", correct),
		slog.Int("interval", updated.Interval),
		slog.String("status", string(updated.Status)))

	return updated, nil
}

// DueCards returns the cards of a collection the actor should review now.
// Cards the actor never reviewed come first.
func (s *StudyService) DueCards(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
) ([]*domain.Card, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if _, err := access.RequireReadAccess(actorID, collection); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListDueForUser(ctx, collectionID, actorID, s.clock.Now())
	if err != nil {
		return nil, translateStoreError("list due cards", err)
	}

	return cards, nil
}

// Overview summarizes the actor's progress over a collection.
func (s *StudyService) Overview(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
) (domain.StudyOverview, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return domain.StudyOverview{}, err
	}

	if _, err := access.RequireReadAccess(actorID, collection); err != nil {
		return domain.StudyOverview{}, err
	}

	total, err := s.cards.CountByCollection(ctx, collectionID)
	if err != nil {
		return domain.StudyOverview{}, translateStoreError("study overview", err)
	}

	records, err := s.progress.ListByCollection(ctx, actorID, collectionID)
	if err != nil {
		return domain.StudyOverview{}, translateStoreError("study overview", err)
	}

	return domain.SummarizeProgress(total, records, s.clock.Now()), nil
}
