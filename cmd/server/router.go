package main

import (
	"net/http"

	"github.com/stefanvasilev2002/intellicard/internal/api"
	"github.com/stefanvasilev2002/intellicard/internal/api/middleware"
)

// setupRouter creates the handlers from the application services and mounts
// them on the API router.
func (app *application) setupRouter() http.Handler {
	handlers := api.Handlers{
		Auth:        api.NewAuthHandler(app.userService, app.jwtService, app.config.Auth, app.logger),
		Collections: api.NewCollectionHandler(app.collectionService, app.logger),
		Cards: api.NewCardHandler(
			app.cardService,
			app.generationService,
			app.config.Generation.MaxDocumentBytes,
			app.logger,
		),
		Study:          api.NewStudyHandler(app.studyService, app.logger),
		AccessRequests: api.NewAccessRequestHandler(app.accessRequestService, app.logger),
	}

	var db api.Pinger
	if app.db != nil {
		db = app.db
	}

	return api.NewRouter(handlers, middleware.NewAuthMiddleware(app.jwtService), db, app.logger)
}
