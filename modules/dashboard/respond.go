package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrymomot/geodash/svc/geocode"
	"github.com/dmitrymomot/geodash/svc/geodata"
	"github.com/dmitrymomot/geodash/svc/session"
)

const maxBodySize = 1 << 20

// envelope is the body of every JSON response.
type envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

// errorDetail is the error member of the envelope.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes body with the given status.
func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ok writes data with 200.
func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

// fail writes err as an error envelope. Backend messages are passed through.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := err.Error()
	var apiErr *session.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	writeJSON(w, status, envelope{Error: &errorDetail{Code: code, Message: msg}})
}

// classify maps domain errors to HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidBody), errors.Is(err, geocode.ErrEmptyQuery):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, geodata.ErrLayerNotFound), errors.Is(err, geocode.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, session.ErrAuthRejected):
		return http.StatusUnauthorized, "rejected"
	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusConflict, "not_authenticated"
	case errors.Is(err, session.ErrMissingCSRFToken):
		return http.StatusPreconditionFailed, "missing_csrf_token"
	case errors.Is(err, session.ErrTransport), errors.Is(err, geocode.ErrRequestFailed),
		errors.Is(err, geocode.ErrInvalidResponse), errors.Is(err, geodata.ErrFetchFailed),
		errors.Is(err, geodata.ErrInvalidCollection):
		return http.StatusBadGateway, "upstream"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeJSON reads a strict JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: content type must be application/json", ErrInvalidBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidBody)
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
