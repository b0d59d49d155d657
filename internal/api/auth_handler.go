package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/service"
	"github.com/stefanvasilev2002/intellicard/internal/service/auth"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	users         UserService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	timeFunc      func() time.Time
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	users UserService,
	jwtService auth.JWTService,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		users:         users,
		jwtService:    jwtService,
		tokenLifetime: time.Duration(authConfig.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.FullName, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithTokens(w, r, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, user)
}

// RefreshToken handles POST /auth/refresh. A valid refresh token is
// exchanged for a new access and refresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		log.Debug("refresh token rejected", slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	// The account must still exist.
	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err,
			shared.WithElevatedLogLevel())
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accessToken, refreshToken, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate tokens",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (string, string, error) {
	accessToken, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
