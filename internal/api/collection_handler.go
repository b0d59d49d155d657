package api

import (
	"log/slog"
	"net/http"

	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
)

// CollectionHandler serves the /cardsets endpoints.
type CollectionHandler struct {
	collections CollectionService
	logger      *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collections CollectionService, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CollectionHandler")
	}

	return &CollectionHandler{
		collections: collections,
		logger:      logger.With(slog.String("component", "collection_handler")),
	}
}

// List handles GET /cardsets. It returns every card set the caller owns, was
// approved for, or can read because it is public.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	views, err := h.collections.ListAccessible(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list card sets")
		return
	}

	resp := make([]CollectionResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, collectionToResponse(v))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /cardsets.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CollectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.collections.Create(r.Context(), userID, req.Name, req.IsPublic)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card set")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, collectionToResponse(view))
}

// Get handles GET /cardsets/{id}.
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.collections.Get(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card set")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, collectionToResponse(view))
}

// Update handles PUT /cardsets/{id}. Only the owner may rename a card set or
// change its visibility.
func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CollectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.collections.Update(r.Context(), userID, collectionID, req.Name, req.IsPublic)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card set")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, collectionToResponse(view))
}

// Delete handles DELETE /cardsets/{id}.
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.collections.Delete(r.Context(), userID, collectionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card set")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
