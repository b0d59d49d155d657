package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/stefanvasilev2002/intellicard/internal/clock"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/domain/srs"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/platform/gemini"
	"github.com/stefanvasilev2002/intellicard/internal/platform/postgres"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/service"
	"github.com/stefanvasilev2002/intellicard/internal/service/auth"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// application holds the shared dependencies of the server and closes them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore          store.UserStore
	collectionStore    store.CollectionStore
	cardStore          store.CardStore
	progressStore      store.ProgressStore
	accessRequestStore store.AccessRequestStore

	// Services
	jwtService           auth.JWTService
	userService          *service.UserService
	collectionService    *service.CollectionService
	cardService          *service.CardService
	generationService    *service.GenerationService
	studyService         *service.StudyService
	accessRequestService *service.AccessRequestService
}

// newApplication wires stores and services. db must already be reachable.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.collectionStore = postgres.NewPostgresCollectionStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.accessRequestStore = postgres.NewPostgresAccessRequestStore(db, logger)

	generator, err := setupGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	clk := clock.System{}

	app.userService, err = service.NewUserService(app.userStore, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.collectionService, err = service.NewCollectionService(app.collectionStore, app.cardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection service: %w", err)
	}

	app.cardService, err = service.NewCardService(
		app.cardStore,
		app.collectionStore,
		app.progressStore,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.generationService, err = service.NewGenerationService(
		generator,
		generation.NewGuard[*service.GenerateResult](),
		app.cardStore,
		app.collectionStore,
		cfg.Generation,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.studyService, err = service.NewStudyService(
		app.cardStore,
		app.collectionStore,
		app.progressStore,
		srs.NewDefaultService(),
		clk,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	app.accessRequestService, err = service.NewAccessRequestService(
		app.accessRequestStore,
		app.collectionStore,
		clk,
		db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access request service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupGenerator returns the Gemini generator, or nil when no API key is
// configured. A nil generator makes the generation endpoint answer 503.
func setupGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("no Gemini API key configured, card generation is disabled")
		return nil, nil
	}

	g, err := gemini.NewGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.ModelName))
	return g, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}
	app.logger.Info("application shutdown completed")
}
