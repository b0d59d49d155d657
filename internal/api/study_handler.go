package api

import (
	"log/slog"
	"net/http"

	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
)

// StudyHandler serves the /study endpoints.
type StudyHandler struct {
	study  StudyService
	logger *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(study StudyService, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		study:  study,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// Review handles POST /study/cards/{id}/review and returns the updated
// progress for the card.
func (h *StudyHandler) Review(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.study.Review(r.Context(), userID, cardID, *req.Correct, req.Difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("status", string(progress.Status)),
		slog.Int("interval", progress.Interval))

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// Due handles GET /study/cardsets/{id}/due.
func (h *StudyHandler) Due(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.study.DueCards(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// Overview handles GET /study/cardsets/{id}/overview.
func (h *StudyHandler) Overview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	overview, err := h.study.Overview(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study overview")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OverviewResponse{
		CollectionID:  collectionID,
		TotalCards:    overview.TotalCards,
		DueCards:      overview.DueCards,
		MasteredCards: overview.MasteredCards,
		LearningCards: overview.LearningCards,
	})
}
