package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// Middleware reuses a valid incoming X-Request-ID or generates one, stores
// it in the request context and echoes it in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !Valid(id) {
			id = New()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

// Stamp sets X-Request-ID on an outgoing request and returns it. The id
// carried by the request context is reused so backend logs correlate with
// the inbound request; otherwise a new one is generated.
func Stamp(req *http.Request) string {
	id := FromContext(req.Context())
	if !Valid(id) {
		id = New()
	}
	req.Header.Set(Header, id)
	return id
}

// Valid reports whether id is safe to propagate.
func Valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
