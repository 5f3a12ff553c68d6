// Package requestid correlates log records across the dashboard and the
// services it calls.
//
// Middleware assigns an id to every inbound request, reusing a valid
// X-Request-ID header when the caller sent one. Stamp puts the id from a
// request context on outgoing calls, so a single user action can be traced
// through the session backend, the feature service and the geocoder:
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
//	id := requestid.Stamp(req)
//
// LoggerExtractor plugs into logger.WithContextExtractors.
package requestid
