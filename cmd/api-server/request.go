package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/protomem/night-stations/internal/ctxstore"
	"github.com/protomem/night-stations/internal/model"
)

func evaFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "eva"), 10, 64)
}

func boolQueryParam(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "true", "on", "1":
		return true
	}
	return false
}

// requestLogger attaches the trace id when the request passed through the
// middleware chain; handlers called directly (tests) fall back to the base
// logger.
func (app *application) requestLogger(r *http.Request) *slog.Logger {
	if tid, ok := ctxstore.From[string](r.Context(), _traceIDKey); ok {
		return app.logger.With(_traceIDKey.String(), tid)
	}
	return app.logger
}

func boolPtr(v bool) *bool { return &v }

func boolValue(v *bool) bool {
	return v != nil && *v
}

// editID payload shared by the moderation actions.
type requestEditAction struct {
	EditID model.ID `json:"editId"`
}
