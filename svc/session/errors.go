package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTransport covers network, DNS, timeout, 5xx and undecodable responses.
	ErrTransport = errors.New("session: transport failure")
	// ErrAuthRejected is a 4xx answer from an auth endpoint, including validation errors.
	ErrAuthRejected = errors.New("session: request rejected")
	// ErrSessionExpired is a 401 from the current-user check.
	ErrSessionExpired = errors.New("session: session expired")
	// ErrMissingCSRFToken means no token was available for a protected request.
	ErrMissingCSRFToken = errors.New("session: csrf token is missing")
	// ErrMissingCookie means the fallback csrftoken cookie is absent.
	ErrMissingCookie = errors.New("session: missing csrf cookie")
	// ErrNotAuthenticated is returned by Logout when there is no session to end.
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrUnexpectedResponse is a 2xx answer without the expected payload.
	ErrUnexpectedResponse = errors.New("session: unexpected response")
	// ErrInvalidBaseURL is returned by NewClient for unusable API URLs.
	ErrInvalidBaseURL = errors.New("session: invalid api base url")
)

// APIError is a non-2xx answer from the backend.
// It unwraps to the category sentinel (ErrAuthRejected, ErrSessionExpired or ErrTransport).
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
	kind    error
}

// newAPIError classifies a non-2xx response. current marks the /api/user call.
func newAPIError(method, path string, status int, body []byte, current bool) *APIError {
	e := &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Body:    body,
		Message: extractMessage(body),
	}
	switch {
	case status == http.StatusUnauthorized && current:
		e.kind = ErrSessionExpired
	case status >= 400 && status < 500:
		e.kind = ErrAuthRejected
	default:
		e.kind = ErrTransport
	}
	return e
}

// Error implements error.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns the sentinel for the status class.
func (e *APIError) Unwrap() error {
	return e.kind
}

// extractMessage pulls a human-readable message out of common error payload shapes.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	// Field validation errors: {"email": ["already taken"]}
	var parts []string
	for field, v := range payload {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					parts = append(parts, field+": "+s)
				}
			}
		}
	}
	if len(parts) > 0 {
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}
	return ""
}

// outcome maps an operation result to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSessionExpired):
		return "expired"
	case errors.Is(err, ErrMissingCSRFToken):
		return "precondition"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrAuthRejected):
		return "rejected"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
