package main

import (
	"context"
	"time"

	"github.com/protomem/night-stations/internal/database"
)

const _sessionCleanupInterval = time.Hour

// cleanupExpiredSessions periodically deletes sessions past their expiry.
// Expired sessions are already rejected at authentication time; this only
// keeps the table from growing without bound.
func (app *application) cleanupExpiredSessions() {
	dao := database.NewSessionDAO(app.logger.With("module", "sessionCleanup"), app.db)

	ticker := time.NewTicker(_sessionCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		count, err := dao.DeleteExpired(context.Background(), time.Now())
		if err != nil {
			app.logger.Warn("session cleanup failed", "error", err)
			continue
		}
		if count > 0 {
			app.logger.Info("deleted expired sessions", "count", count)
		}
	}
}
