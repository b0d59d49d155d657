package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/sanitize"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// CardWithProgress is a card joined with the actor's progress on it.
// Progress is never nil: cards the actor has not reviewed carry a default
// NEW record with a zero NextReviewAt.
type CardWithProgress struct {
	Card     *domain.Card
	Progress *domain.Progress
}

// CardService manages the cards of a collection.
type CardService struct {
	cards       store.CardStore
	collections store.CollectionStore
	progress    store.ProgressStore
	db          *sql.DB
	logger      *slog.Logger
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cards store.CardStore,
	collections store.CollectionStore,
	progress store.ProgressStore,
	db *sql.DB,
	logger *slog.Logger,
) (*CardService, error) {
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}
	if collections == nil {
		return nil, fmt.Errorf("%w: collection store cannot be nil", domain.ErrValidation)
	}
	if progress == nil {
		return nil, fmt.Errorf("%w: progress store cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardService{
		cards:       cards,
		collections: collections,
		progress:    progress,
		db:          db,
		logger:      logger.With(slog.String("component", "card_service")),
	}, nil
}

// List returns the cards of a collection the actor can read, each joined
// with the actor's progress.
func (s *CardService) List(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
) ([]*CardWithProgress, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if _, err := access.RequireReadAccess(actorID, collection); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, translateStoreError("list cards", err)
	}

	records, err := s.progress.ListByCollection(ctx, actorID, collectionID)
	if err != nil {
		return nil, translateStoreError("list cards", err)
	}

	byCard := make(map[uuid.UUID]*domain.Progress, len(records))
	for _, p := range records {
		byCard[p.CardID] = p
	}

	result := make([]*CardWithProgress, 0, len(cards))
	for _, card := range cards {
		p, ok := byCard[card.ID]
		if !ok {
			p = defaultProgress(actorID, card)
		}
		result = append(result, &CardWithProgress{Card: card, Progress: p})
	}

	return result, nil
}

// Create adds a card to a collection. Owner only. Term and definition are
// stripped of markup before validation.
func (s *CardService) Create(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
	term, definition string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		return nil, err
	}

	card, err := domain.NewCard(collectionID, sanitize.Text(term), sanitize.Text(definition))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cards.WithTx(tx).CreateMultiple(ctx, []*domain.Card{card})
	})
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", redact.Error(err)),
			slog.String("collection_id", collectionID.String()))
		return nil, translateStoreError("create card", err)
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("collection_id", collectionID.String()))

	return card, nil
}

// Update replaces the text of a card. Owner only.
func (s *CardService) Update(
	ctx context.Context,
	actorID, cardID uuid.UUID,
	term, definition string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.ownedCard(ctx, actorID, cardID)
	if err != nil {
		return nil, err
	}

	if err := card.UpdateText(sanitize.Text(term), sanitize.Text(definition)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if err := s.cards.UpdateText(ctx, card); err != nil {
		log.Error("failed to update card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		return nil, translateStoreError("update card", err)
	}

	return card, nil
}

// Delete removes a card and every learner's progress on it. Owner only.
func (s *CardService) Delete(ctx context.Context, actorID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.ownedCard(ctx, actorID, cardID); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, cardID); err != nil {
		log.Error("failed to remove card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		return translateStoreError("delete card", err)
	}

	log.Info("card removed", slog.String("card_id", cardID.String()))
	return nil
}

// ownedCard loads a card and verifies the actor owns its collection.
func (s *CardService) ownedCard(ctx context.Context, actorID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, translateStoreError("load card", err)
	}

	collection, err := loadCollection(ctx, s.collections, card.CollectionID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("card modification refused",
			slog.String("card_id", cardID.String()),
			slog.String("actor_id", actorID.String()))
		return nil, err
	}

	return card, nil
}

// defaultProgress is the record a learner implicitly holds on a card they
// never reviewed. It is not persisted.
func defaultProgress(userID uuid.UUID, card *domain.Card) *domain.Progress {
	return &domain.Progress{
		UserID:     userID,
		CardID:     card.ID,
		EaseFactor: domain.DefaultEaseFactor,
		Interval:   domain.DefaultInterval,
		Status:     domain.ProgressStatusNew,
		CreatedAt:  card.CreatedAt,
		UpdatedAt:  card.CreatedAt,
	}
}
