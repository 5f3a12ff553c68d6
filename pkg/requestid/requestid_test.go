package requestid_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"generates when missing", "", false},
		{"reuses valid id", "abc-123_x", true},
		{"replaces invalid id", "bad id!", false},
		{"replaces oversized id", strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen string
			h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(requestid.Header, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestid.Header))
			if tt.reuse {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
				assert.True(t, requestid.Valid(seen))
			}
		})
	}
}

func TestStamp(t *testing.T) {
	t.Parallel()

	ctx := requestid.WithContext(context.Background(), "req-1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "req-1", requestid.Stamp(req))
	assert.Equal(t, "req-1", req.Header.Get(requestid.Header))

	req, err = http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	id := requestid.Stamp(req)
	assert.True(t, requestid.Valid(id))
	assert.Equal(t, id, req.Header.Get(requestid.Header))
}

func TestFromContext(t *testing.T) {
	t.Parallel()
	assert.Empty(t, requestid.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, requestid.FromContext(nil))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithJSONFormatter(),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	log.InfoContext(requestid.WithContext(context.Background(), "req-42"), "hello")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}
