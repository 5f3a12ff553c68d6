package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/geodash/pkg/logger"
)

// LoggerExtractor tags log records with the request id from their context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
