package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"  validate:"required,max=50"`
	FullName string `json:"full_name" validate:"max=100"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 time at which the access token expires.
	ExpiresAt string `json:"expires_at"`
}

// CollectionRequest is the payload for creating or updating a card set.
type CollectionRequest struct {
	Name     string `json:"name"      validate:"required,max=100"`
	IsPublic bool   `json:"is_public"`
}

// CollectionResponse describes a card set as seen by the caller.
type CollectionResponse struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	OwnerID    uuid.UUID    `json:"owner_id"`
	IsPublic   bool         `json:"is_public"`
	AccessType access.Level `json:"access_type"`
	TotalCards int          `json:"total_cards"`
	// ApprovedUserIDs is only populated for the owner.
	ApprovedUserIDs []uuid.UUID `json:"approved_user_ids,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CardRequest is the payload for creating or updating a card.
type CardRequest struct {
	Term       string `json:"term"       validate:"required,max=500"`
	Definition string `json:"definition" validate:"required,max=2000"`
}

// CardResponse is a card without learner state.
type CardResponse struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Term         string    `json:"term"`
	Definition   string    `json:"definition"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProgressResponse is the caller's study state for one card.
type ProgressResponse struct {
	CardID             uuid.UUID  `json:"card_id"`
	Status             string     `json:"status"`
	TimesReviewed      int        `json:"times_reviewed"`
	TimesCorrect       int        `json:"times_correct"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	EaseFactor         float64    `json:"ease_factor"`
	Interval           int        `json:"interval"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt       *time.Time `json:"next_review_at,omitempty"`
}

// CardWithProgressResponse pairs a card with the caller's progress on it.
type CardWithProgressResponse struct {
	CardResponse
	Progress ProgressResponse `json:"progress"`
}

// GenerateCardsResponse is returned by the document generation endpoint.
type GenerateCardsResponse struct {
	Cards     []CardResponse `json:"cards"`
	Created   int            `json:"created"`
	Discarded int            `json:"discarded"`
}

// ReviewRequest records one answer to a card.
type ReviewRequest struct {
	// Correct is a pointer so that a missing field fails validation.
	Correct    *bool `json:"correct"    validate:"required"`
	Difficulty int   `json:"difficulty" validate:"required,min=1,max=5"`
}

// OverviewResponse summarizes the caller's study state for a card set.
type OverviewResponse struct {
	CollectionID  uuid.UUID `json:"collection_id"`
	TotalCards    int       `json:"total_cards"`
	DueCards      int       `json:"due_cards"`
	MasteredCards int       `json:"mastered_cards"`
	LearningCards int       `json:"learning_cards"`
}

// AccessRequestResponse describes one access request.
type AccessRequestResponse struct {
	ID                uuid.UUID `json:"id"`
	CollectionID      uuid.UUID `json:"collection_id"`
	CollectionName    string    `json:"collection_name,omitempty"`
	RequesterID       uuid.UUID `json:"requester_id"`
	RequesterUsername string    `json:"requester_username,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RequestAccessResponse reports what requesting access did.
type RequestAccessResponse struct {
	Outcome string                 `json:"outcome"`
	Request *AccessRequestResponse `json:"request,omitempty"`
}

// RespondAccessRequest is the owner's answer to a pending request.
type RespondAccessRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// RespondAccessResponse reports the owner's decision.
type RespondAccessResponse struct {
	Outcome string `json:"outcome"`
}

func collectionToResponse(view *service.CollectionView) CollectionResponse {
	resp := CollectionResponse{
		ID:         view.ID,
		Name:       view.Name,
		OwnerID:    view.OwnerID,
		IsPublic:   view.IsPublic,
		AccessType: view.AccessType,
		TotalCards: view.TotalCards,
		CreatedAt:  view.CreatedAt,
		UpdatedAt:  view.UpdatedAt,
	}
	if view.AccessType == access.LevelOwner {
		resp.ApprovedUserIDs = view.ApprovedUserIDs
	}
	return resp
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID,
		CollectionID: card.CollectionID,
		Term:         card.Term,
		Definition:   card.Definition,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func progressToResponse(p *domain.Progress) ProgressResponse {
	return ProgressResponse{
		CardID:             p.CardID,
		Status:             string(p.Status),
		TimesReviewed:      p.TimesReviewed,
		TimesCorrect:       p.TimesCorrect,
		ConsecutiveCorrect: p.ConsecutiveCorrect,
		EaseFactor:         p.EaseFactor,
		Interval:           p.Interval,
		LastReviewedAt:     optionalTime(p.LastReviewedAt),
		NextReviewAt:       optionalTime(p.NextReviewAt),
	}
}

func accessRequestToResponse(r *domain.AccessRequest) *AccessRequestResponse {
	return &AccessRequestResponse{
		ID:           r.ID,
		CollectionID: r.CollectionID,
		RequesterID:  r.RequesterID,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
