package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/service"
)

// The interfaces below are the slices of the application services each
// handler calls. They are satisfied by the concrete types in package service.

// UserService registers and authenticates users.
type UserService interface {
	Register(ctx context.Context, username, fullName, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// CollectionService manages card sets.
type CollectionService interface {
	Create(ctx context.Context, actorID uuid.UUID, name string, isPublic bool) (*service.CollectionView, error)
	Get(ctx context.Context, actorID, collectionID uuid.UUID) (*service.CollectionView, error)
	ListAccessible(ctx context.Context, actorID uuid.UUID) ([]*service.CollectionView, error)
	Update(
		ctx context.Context,
		actorID, collectionID uuid.UUID,
		name string,
		isPublic bool,
	) (*service.CollectionView, error)
	Delete(ctx context.Context, actorID, collectionID uuid.UUID) error
}

// CardService manages the cards of a card set.
type CardService interface {
	List(ctx context.Context, actorID, collectionID uuid.UUID) ([]*service.CardWithProgress, error)
	Create(ctx context.Context, actorID, collectionID uuid.UUID, term, definition string) (*domain.Card, error)
	Update(ctx context.Context, actorID, cardID uuid.UUID, term, definition string) (*domain.Card, error)
	Delete(ctx context.Context, actorID, cardID uuid.UUID) error
}

// GenerationService turns uploaded documents into cards.
type GenerationService interface {
	Generate(
		ctx context.Context,
		actorID, collectionID uuid.UUID,
		input service.GenerateInput,
	) (*service.GenerateResult, error)
}

// StudyService records reviews and reports study state.
type StudyService interface {
	Review(ctx context.Context, actorID, cardID uuid.UUID, correct bool, difficulty int) (*domain.Progress, error)
	DueCards(ctx context.Context, actorID, collectionID uuid.UUID) ([]*domain.Card, error)
	Overview(ctx context.Context, actorID, collectionID uuid.UUID) (domain.StudyOverview, error)
}

// AccessRequestService runs the access request workflow.
type AccessRequestService interface {
	RequestAccess(
		ctx context.Context,
		requesterID, collectionID uuid.UUID,
	) (service.RequestOutcome, *domain.AccessRequest, error)
	ListPending(ctx context.Context, actorID, collectionID uuid.UUID) ([]*domain.AccessRequestDetails, error)
	Respond(
		ctx context.Context,
		actorID, collectionID, requestID uuid.UUID,
		approve bool,
	) (service.ResponseOutcome, error)
}

var (
	_ UserService          = (*service.UserService)(nil)
	_ CollectionService    = (*service.CollectionService)(nil)
	_ CardService          = (*service.CardService)(nil)
	_ GenerationService    = (*service.GenerationService)(nil)
	_ StudyService         = (*service.StudyService)(nil)
	_ AccessRequestService = (*service.AccessRequestService)(nil)
)
