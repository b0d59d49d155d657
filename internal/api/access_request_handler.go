package api

import (
	"log/slog"
	"net/http"

	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/service"
)

// AccessRequestHandler serves the /cardsets/{id}/access-requests endpoints.
type AccessRequestHandler struct {
	requests AccessRequestService
	logger   *slog.Logger
}

// NewAccessRequestHandler creates a new AccessRequestHandler.
func NewAccessRequestHandler(requests AccessRequestService, logger *slog.Logger) *AccessRequestHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AccessRequestHandler")
	}

	return &AccessRequestHandler{
		requests: requests,
		logger:   logger.With(slog.String("component", "access_request_handler")),
	}
}

// Request handles POST /cardsets/{id}/access-requests. Newly submitted and
// resubmitted requests answer 201; outcomes that changed nothing answer 200.
func (h *AccessRequestHandler) Request(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	outcome, req, err := h.requests.RequestAccess(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request access")
		return
	}

	resp := RequestAccessResponse{Outcome: string(outcome)}
	if req != nil {
		resp.Request = accessRequestToResponse(req)
	}

	status := http.StatusOK
	if outcome == service.OutcomeSubmitted || outcome == service.OutcomeResubmitted {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, resp)
}

// ListPending handles GET /cardsets/{id}/access-requests. Only the owner may
// list requests.
func (h *AccessRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	pending, err := h.requests.ListPending(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list access requests")
		return
	}

	resp := make([]*AccessRequestResponse, 0, len(pending))
	for _, d := range pending {
		item := accessRequestToResponse(&d.AccessRequest)
		item.CollectionName = d.CollectionName
		item.RequesterUsername = d.RequesterUsername
		resp = append(resp, item)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Respond handles PUT /cardsets/{id}/access-requests/{requestId}.
func (h *AccessRequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	requestID, err := getPathUUID(r, "requestId")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid requestId", err)
		return
	}

	var req RespondAccessRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := h.requests.Respond(r.Context(), userID, collectionID, requestID, *req.Approve)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to respond to access request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RespondAccessResponse{Outcome: string(outcome)})
}
