package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// CollectionView is a collection as seen by one actor.
type CollectionView struct {
	*domain.Collection
	AccessType access.Level
	TotalCards int
}

// CollectionService manages card sets and their visibility.
type CollectionService struct {
	collections store.CollectionStore
	cards       store.CardStore
	logger      *slog.Logger
}

// NewCollectionService creates a new CollectionService.
// It returns an error if any of the required dependencies are nil.
func NewCollectionService(
	collections store.CollectionStore,
	cards store.CardStore,
	logger *slog.Logger,
) (*CollectionService, error) {
	if collections == nil {
		return nil, fmt.Errorf("%w: collection store cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CollectionService{
		collections: collections,
		cards:       cards,
		logger:      logger.With(slog.String("component", "collection_service")),
	}, nil
}

// Create makes a new collection owned by actorID.
func (s *CollectionService) Create(
	ctx context.Context,
	actorID uuid.UUID,
	name string,
	isPublic bool,
) (*CollectionView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := domain.NewCollection(actorID, name, isPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if err := s.collections.Create(ctx, collection); err != nil {
		log.Error("failed to create collection",
			slog.String("error", redact.Error(err)),
			slog.String("owner_id", actorID.String()))
		return nil, translateStoreError("create collection", err)
	}

	log.Info("collection created",
		slog.String("collection_id", collection.ID.String()),
		slog.Bool("is_public", collection.IsPublic))

	return &CollectionView{Collection: collection, AccessType: access.LevelOwner}, nil
}

// Get returns a collection the actor can read, with its card count.
func (s *CollectionService) Get(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
) (*CollectionView, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	level, err := access.RequireReadAccess(actorID, collection)
	if err != nil {
		return nil, err
	}

	total, err := s.cards.CountByCollection(ctx, collectionID)
	if err != nil {
		return nil, translateStoreError("get collection", err)
	}

	return &CollectionView{Collection: collection, AccessType: level, TotalCards: total}, nil
}

// ListAccessible returns every collection the actor owns, was approved
// for, or that is public.
func (s *CollectionService) ListAccessible(
	ctx context.Context,
	actorID uuid.UUID,
) ([]*CollectionView, error) {
	collections, err := s.collections.ListAccessible(ctx, actorID)
	if err != nil {
		return nil, translateStoreError("list collections", err)
	}

	views := make([]*CollectionView, 0, len(collections))
	for _, c := range collections {
		total, err := s.cards.CountByCollection(ctx, c.ID)
		if err != nil {
			return nil, translateStoreError("list collections", err)
		}
		views = append(views, &CollectionView{
			Collection: c,
			AccessType: access.LevelFor(actorID, c),
			TotalCards: total,
		})
	}

	return views, nil
}

// Update renames a collection and sets its visibility. Owner only.
func (s *CollectionService) Update(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
	name string,
	isPublic bool,
) (*CollectionView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		log.Warn("collection update refused",
			slog.String("collection_id", collectionID.String()),
			slog.String("actor_id", actorID.String()))
		return nil, err
	}

	if err := collection.Update(name, isPublic); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if err := s.collections.Update(ctx, collection); err != nil {
		log.Error("failed to update collection",
			slog.String("error", redact.Error(err)),
			slog.String("collection_id", collectionID.String()))
		return nil, translateStoreError("update collection", err)
	}

	total, err := s.cards.CountByCollection(ctx, collectionID)
	if err != nil {
		return nil, translateStoreError("update collection", err)
	}

	return &CollectionView{Collection: collection, AccessType: access.LevelOwner, TotalCards: total}, nil
}

// Delete removes a collection with its cards, progress and access
// requests. Owner only.
func (s *CollectionService) Delete(ctx context.Context, actorID, collectionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		log.Warn("collection removal refused",
			slog.String("collection_id", collectionID.String()),
			slog.String("actor_id", actorID.String()))
		return err
	}

	if err := s.collections.Delete(ctx, collectionID); err != nil {
		log.Error("failed to remove collection",
			slog.String("error", redact.Error(err)),
			slog.String("collection_id", collectionID.String()))
		return translateStoreError("delete collection", err)
	}

	log.Info("collection removed", slog.String("collection_id", collectionID.String()))
	return nil
}

// loadCollection fetches a fresh collection snapshot for a policy check.
func loadCollection(
	ctx context.Context,
	collections store.CollectionStore,
	collectionID uuid.UUID,
) (*domain.Collection, error) {
	collection, err := collections.GetByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, translateStoreError("load collection", err)
	}
	return collection, nil
}
