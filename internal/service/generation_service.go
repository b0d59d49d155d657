package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// upstreamTimeout bounds a single shared generator call. The call runs
// detached from any one caller's context because other callers may be
// waiting on it.
const upstreamTimeout = 2 * time.Minute

// GenerateInput is an uploaded document and the generation options.
// Zero values select the defaults.
type GenerateInput struct {
	Document generation.Document
	Count    int
	Level    string
	Language string
}

// GenerateResult holds the cards created from a document.
type GenerateResult struct {
	Cards []*domain.Card
	// Discarded is the number of generated pairs that failed admission.
	Discarded int
}

// GenerationService turns documents into cards.
type GenerationService struct {
	generator   generation.Generator
	guard       *generation.Guard[*GenerateResult]
	cards       store.CardStore
	collections store.CollectionStore
	limits      config.GenerationConfig
	db          *sql.DB
	logger      *slog.Logger
}

// NewGenerationService creates a new GenerationService. generator may be nil,
// in which case Generate reports ErrGenerationUnavailable.
func NewGenerationService(
	generator generation.Generator,
	guard *generation.Guard[*GenerateResult],
	cards store.CardStore,
	collections store.CollectionStore,
	limits config.GenerationConfig,
	db *sql.DB,
	logger *slog.Logger,
) (*GenerationService, error) {
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}
	if collections == nil {
		return nil, fmt.Errorf("%w: collection store cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", domain.ErrValidation)
	}
	if limits.MaxQuestionCount < 1 || limits.DefaultQuestionCount < 1 ||
		limits.DefaultQuestionCount > limits.MaxQuestionCount {
		return nil, fmt.Errorf("%w: invalid question count limits", domain.ErrValidation)
	}

	if guard == nil {
		guard = generation.NewGuard[*GenerateResult]()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationService{
		generator:   generator,
		guard:       guard,
		cards:       cards,
		collections: collections,
		limits:      limits,
		db:          db,
		logger:      logger.With(slog.String("component", "generation_service")),
	}, nil
}

// Generate extracts the document text, asks the generator for cards, and
// stores every pair that passes admission. Owner only.
//
// Concurrent requests for the same collection, text and options share one
// generator call and one insert; every caller receives the same stored
// cards. If no pair survives admission nothing is stored and the error wraps
// generation.ErrNoUsableCards.
func (s *GenerationService) Generate(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
	input GenerateInput,
) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		return nil, err
	}

	req, err := s.buildRequest(input)
	if err != nil {
		return nil, err
	}

	if s.generator == nil {
		return nil, ErrGenerationUnavailable
	}

	key := generation.Key(collectionID, req)
	detached := logger.WithLogger(context.WithoutCancel(ctx), log)
	result, shared, err := s.guard.Do(ctx, key, func() (*GenerateResult, error) {
		callCtx, cancel := context.WithTimeout(detached, upstreamTimeout)
		defer cancel()
		return s.generateAndStore(callCtx, collectionID, req)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		log.Debug("generation result shared with concurrent request",
			slog.String("collection_id", collectionID.String()))
	}

	return &GenerateResult{
		Cards:     slices.Clone(result.Cards),
		Discarded: result.Discarded,
	}, nil
}

// generateAndStore runs once per in-flight request key. Errors are already
// mapped to service errors because they are handed to every waiting caller.
func (s *GenerationService) generateAndStore(
	ctx context.Context,
	collectionID uuid.UUID,
	req generation.Request,
) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pairs, err := s.generator.GenerateCards(ctx, req)
	if err != nil {
		return nil, s.mapGeneratorError(ctx, err)
	}

	admitted := generation.Admit(pairs)
	log.Info("cards generated",
		slog.String("collection_id", collectionID.String()),
		slog.Int("requested", req.Count),
		slog.Int("returned", len(pairs)),
		slog.Int("admitted", len(admitted)))

	if len(admitted) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, generation.ErrNoUsableCards)
	}

	cards := make([]*domain.Card, 0, len(admitted))
	for _, p := range admitted {
		card, err := domain.NewCard(collectionID, p.Term, p.Definition)
		if err != nil {
			// Admit already enforces the card rules.
			return nil, NewServiceError("generate cards", "admitted pair failed validation", err)
		}
		cards = append(cards, card)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cards.WithTx(tx).CreateMultiple(ctx, cards)
	})
	if err != nil {
		log.Error("failed to store generated cards",
			slog.String("error", redact.Error(err)),
			slog.String("collection_id", collectionID.String()))
		return nil, translateStoreError("generate cards", err)
	}

	return &GenerateResult{Cards: cards, Discarded: len(pairs) - len(admitted)}, nil
}

// buildRequest validates the document and options and fills in defaults.
func (s *GenerationService) buildRequest(input GenerateInput) (generation.Request, error) {
	text, err := generation.ExtractText(input.Document, generation.Limits{
		MaxBytes: s.limits.MaxDocumentBytes,
		MinChars: s.limits.MinDocumentChars,
	})
	if err != nil {
		return generation.Request{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	count := input.Count
	if count == 0 {
		count = s.limits.DefaultQuestionCount
	}
	if count < 1 || count > s.limits.MaxQuestionCount {
		return generation.Request{}, fmt.Errorf("%w: %w: must be between 1 and %d",
			ErrInvalidArgument, generation.ErrInvalidCount, s.limits.MaxQuestionCount)
	}

	level, err := generation.ParseLevel(input.Level)
	if err != nil {
		return generation.Request{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	language := input.Language
	if language == "" {
		language = generation.DefaultLanguage
	}

	return generation.Request{Text: text, Count: count, Level: level, Language: language}, nil
}

func (s *GenerationService) mapGeneratorError(ctx context.Context, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, generation.ErrContentBlocked):
		log.Warn("generation blocked by content filter")
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, generation.ErrDocumentTooShort):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	default:
		log.Error("card generator failed", slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}
}
