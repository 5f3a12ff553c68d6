// Package logger provides a context-aware wrapper around log/slog with
// functional options, attribute helpers and injection of context values.
//
// New returns a *slog.Logger whose handler is chosen by format (text or JSON)
// and decorated by ContextHandler, which runs registered ContextExtractor
// callbacks for every record.
//
//	log := logger.New(
//	    logger.WithEnvironment("development", "geodash"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "layer loaded", logger.Layer("st-louis-municipalities"), logger.Count(91))
//
// Helpers such as Error, Operation, Endpoint and Status keep attribute names
// consistent across services. Error and Errors return an empty attribute for
// nil errors, so they can be passed unconditionally.
//
// Services accept a logger through their own WithLogger options and fall back
// to Discard when none is given.
package logger
