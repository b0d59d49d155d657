package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/service"
)

// multipartOverhead is the head room allowed on top of the document limit for
// multipart boundaries and form fields.
const multipartOverhead = 64 << 10

// CardHandler serves card endpoints, including generation from documents.
type CardHandler struct {
	cards            CardService
	generator        GenerationService
	maxDocumentBytes int64
	logger           *slog.Logger
}

// NewCardHandler creates a new CardHandler. maxDocumentBytes bounds how much
// of an uploaded document is read.
func NewCardHandler(
	cards CardService,
	generator GenerationService,
	maxDocumentBytes int64,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:            cards,
		generator:        generator,
		maxDocumentBytes: maxDocumentBytes,
		logger:           logger.With(slog.String("component", "card_handler")),
	}
}

// List handles GET /cardsets/{id}/cards. Each card carries the caller's
// progress on it.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	items, err := h.cards.List(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	resp := make([]CardWithProgressResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, CardWithProgressResponse{
			CardResponse: cardToResponse(item.Card),
			Progress:     progressToResponse(item.Progress),
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /cardsets/{id}/cards.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), userID, collectionID, req.Term, req.Definition)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// Update handles PUT /cards/{id}.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Update(r.Context(), userID, cardID, req.Term, req.Definition)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// Delete handles DELETE /cards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /cardsets/{id}/cards/generate.
//
// The document is sent either as the "file" part of a multipart form, with
// optional "count", "level" and "language" fields, or as a text/plain body
// with the same options in the query string.
func (h *CardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxDocumentBytes+multipartOverhead)

	input, err := h.readGenerateInput(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, generation.ErrDocumentTooLarge):
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Document is too large", err)
		case errors.Is(err, generation.ErrUnsupportedFormat):
			shared.RespondWithErrorAndLog(w, r, http.StatusUnsupportedMediaType, "Unsupported document format", err)
		case errors.Is(err, generation.ErrInvalidCount):
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid question count", err)
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid generation request", err)
		}
		return
	}

	log.Debug("generating cards from document",
		slog.String("collection_id", collectionID.String()),
		slog.String("filename", input.Document.Filename),
		slog.Int("bytes", len(input.Document.Content)))

	result, err := h.generator.Generate(r.Context(), userID, collectionID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateCardsResponse{
		Cards:     cardsToResponse(result.Cards),
		Created:   len(result.Cards),
		Discarded: result.Discarded,
	})
}

func (h *CardHandler) readGenerateInput(r *http.Request) (service.GenerateInput, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return service.GenerateInput{}, fmt.Errorf("%w: missing or malformed content type", generation.ErrUnsupportedFormat)
	}

	var (
		input   service.GenerateInput
		options func(string) string
	)

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxDocumentBytes + multipartOverhead); err != nil {
			return service.GenerateInput{}, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return service.GenerateInput{}, fmt.Errorf("file part: %w", err)
		}
		defer file.Close()

		content, err := h.readDocument(file)
		if err != nil {
			return service.GenerateInput{}, err
		}
		input.Document = generation.Document{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		}
		options = r.FormValue

	case "text/plain":
		content, err := h.readDocument(r.Body)
		if err != nil {
			return service.GenerateInput{}, err
		}
		input.Document = generation.Document{
			Filename:    "document.txt",
			ContentType: r.Header.Get("Content-Type"),
			Content:     content,
		}
		options = r.URL.Query().Get

	default:
		return service.GenerateInput{}, fmt.Errorf("%w: %s", generation.ErrUnsupportedFormat, mediaType)
	}

	if raw := strings.TrimSpace(options("count")); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return service.GenerateInput{}, fmt.Errorf("%w: %q is not a number", generation.ErrInvalidCount, raw)
		}
		input.Count = count
	}
	input.Level = strings.TrimSpace(options("level"))
	input.Language = strings.TrimSpace(options("language"))

	return input, nil
}

// readDocument reads at most one byte past the document limit, which is
// enough to tell that a document is oversized.
func (h *CardHandler) readDocument(src io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(src, h.maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > h.maxDocumentBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", generation.ErrDocumentTooLarge, h.maxDocumentBytes)
	}
	return content, nil
}
