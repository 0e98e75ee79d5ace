package app

import (
	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to every service's route function during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "updating item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db     *database.Database
	Logger logger.Logger
	Events *events.AsyncPublisher
	Redis  *cache.RedisClient
	Cache  *cache.ItemCache // nil when Redis is not configured
}
