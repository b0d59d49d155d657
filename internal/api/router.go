package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stefanvasilev2002/intellicard/internal/api/middleware"
	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
)

// healthCheckTimeout bounds the dependency check behind /health.
const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Auth           *AuthHandler
	Collections    *CollectionHandler
	Cards          *CardHandler
	Study          *StudyHandler
	AccessRequests *AccessRequestHandler
}

// NewRouter builds the HTTP routes. Everything under /api/v1 except the
// auth endpoints requires a bearer access token. db may be nil, in which
// case /health only reports that the process is up.
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, db Pinger, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewTraceMiddleware(log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Route("/cardsets", func(r chi.Router) {
				r.Get("/", h.Collections.List)
				r.Post("/", h.Collections.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Collections.Get)
					r.Put("/", h.Collections.Update)
					r.Delete("/", h.Collections.Delete)

					r.Get("/cards", h.Cards.List)
					r.Post("/cards", h.Cards.Create)
					r.Post("/cards/generate", h.Cards.Generate)

					r.Post("/access-requests", h.AccessRequests.Request)
					r.Get("/access-requests", h.AccessRequests.ListPending)
					r.Put("/access-requests/{requestId}", h.AccessRequests.Respond)
				})
			})

			r.Put("/cards/{id}", h.Cards.Update)
			r.Delete("/cards/{id}", h.Cards.Delete)

			r.Route("/study", func(r chi.Router) {
				r.Post("/cards/{id}/review", h.Study.Review)
				r.Get("/cardsets/{id}/due", h.Study.Due)
				r.Get("/cardsets/{id}/overview", h.Study.Overview)
			})
		})
	})

	r.Get("/health", healthHandler(db))

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.FromContext(r.Context()).Error("health check failed",
					slog.String("error", redact.Error(err)))
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, map[string]string{
					"status":   "unavailable",
					"database": "unreachable",
				})
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
