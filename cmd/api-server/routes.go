package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(app.notFound)
	mux.MethodNotAllowed(app.methodNotAllowed)

	mux.Use(app.traceID)
	mux.Use(app.logAccess)
	mux.Use(app.recoverPanic)

	mux.Use(app.CORS)
	mux.Use(app.authenticate)

	mux.Get("/status", app.handleStatus)

	mux.Get("/", app.handleSearchStations)
	mux.Get("/favorites", app.handleFavoriteStations)
	mux.Get("/station/{eva}", app.handleGetStation)

	mux.Get("/auth/login/google", app.handleGoogleLogin)
	mux.Get("/auth/callback/google", app.handleGoogleCallback)
	mux.Post("/auth/logout", app.handleLogout)

	mux.Group(func(mux chi.Router) {
		mux.Use(app.requireAuth)

		mux.Get("/station/{eva}/edit", app.handleEditStation)
		mux.Post("/station/{eva}/edit", app.handleSubmitEdit)

		mux.Get("/pending", app.handleListPendingEdits)
		mux.Post("/pending/approve", app.handleApproveEdit)
		mux.Post("/pending/reject", app.handleRejectEdit)
		mux.Post("/pending/remove", app.handleRemoveEdit)
	})

	app.logger.Debug("routes configured", "routes", chiRoutesToStrings(mux.Routes()))

	return mux
}

func chiRoutesToStrings(routes []chi.Route) []string {
	parsedRoutes := make([]string, 0, len(routes))
	for _, route := range routes {
		parsedRoutes = append(parsedRoutes, route.Pattern)
	}
	return parsedRoutes
}
