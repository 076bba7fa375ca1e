package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/protomem/night-stations/internal/ctxstore"
	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/model"
	"github.com/protomem/night-stations/internal/response"
	"github.com/rs/cors"

	"github.com/tomasen/realip"
)

const (
	_traceIDKey = ctxstore.Key("traceId")
	_userKey    = ctxstore.Key("user")
)

func (app *application) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := genTraceID()
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.MustFrom[string](r.Context(), _traceIDKey)
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.serverLogger().Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (app *application) CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// authenticate resolves the session cookie into a user in the request
// context. A missing, unknown or expired session means the request proceeds
// anonymously; it is never an error here.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(_sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := app.requestLogger(r)

		sessionDAO := database.NewSessionDAO(logger, app.db)

		session, err := sessionDAO.Get(ctx, cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if session.Expired(time.Now()) {
			// Best effort cleanup, the session is unusable either way.
			_ = sessionDAO.Delete(ctx, session.Token)
			next.ServeHTTP(w, r)
			return
		}

		user, err := database.NewUserDAO(logger, app.db).Get(ctx, session.User)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx = ctxstore.With(ctx, _userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := contextUser(r); !ok {
			app.authenticationRequired(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func contextUser(r *http.Request) (model.User, bool) {
	return ctxstore.From[model.User](r.Context(), _userKey)
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
