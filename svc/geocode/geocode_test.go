package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/geodash/svc/geocode"
)

const claytonJSON = `[{"lat":"38.6425","lon":"-90.3237","display_name":"Clayton, St. Louis County, Missouri",
"boundingbox":["38.6298","38.6560","-90.3458","-90.3084"]}]`

func newServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(srv *httptest.Server) *geocode.Client {
	return geocode.New(geocode.WithURL(srv.URL), geocode.WithRateLimit(rate.Inf, 1))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	srv, calls := newServer(t, claytonJSON, http.StatusOK)
	c := newClient(srv)

	p, err := c.Search(context.Background(), "Clayton, MO")
	require.NoError(t, err)
	assert.InDelta(t, 38.6425, p.Lat, 1e-9)
	assert.InDelta(t, -90.3237, p.Lon, 1e-9)
	assert.Equal(t, geocode.Bounds{South: 38.6298, North: 38.6560, West: -90.3458, East: -90.3084}, p.Bounds)
	assert.Equal(t, "Clayton, St. Louis County, Missouri", p.DisplayName)

	// Equivalent query is served from cache.
	_, err = c.Search(context.Background(), "  clayton,   mo ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_QueryEncoding(t *testing.T) {
	t.Parallel()

	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query().Get("q")
		_, _ = w.Write([]byte(claytonJSON))
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(srv).Search(context.Background(), "  St. Louis & Co ")
	require.NoError(t, err)
	assert.Equal(t, "St. Louis & Co", <-got)
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()
		srv, calls := newServer(t, claytonJSON, http.StatusOK)
		_, err := newClient(srv).Search(context.Background(), "   ")
		assert.ErrorIs(t, err, geocode.ErrEmptyQuery)
		assert.Zero(t, calls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		srv, _ := newServer(t, `[]`, http.StatusOK)
		_, err := newClient(srv).Search(context.Background(), "nowhere")
		assert.ErrorIs(t, err, geocode.ErrNotFound)
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		srv, _ := newServer(t, `slow down`, http.StatusTooManyRequests)
		_, err := newClient(srv).Search(context.Background(), "x")
		assert.ErrorIs(t, err, geocode.ErrRequestFailed)
	})

	t.Run("bad payload", func(t *testing.T) {
		t.Parallel()
		srv, _ := newServer(t, `[{"lat":"x","lon":"1","boundingbox":["1","2","3","4"]}]`, http.StatusOK)
		_, err := newClient(srv).Search(context.Background(), "x")
		assert.ErrorIs(t, err, geocode.ErrInvalidResponse)
	})

	t.Run("short bounding box", func(t *testing.T) {
		t.Parallel()
		srv, _ := newServer(t, `[{"lat":"1","lon":"1","boundingbox":["1","2"]}]`, http.StatusOK)
		_, err := newClient(srv).Search(context.Background(), "x")
		assert.ErrorIs(t, err, geocode.ErrInvalidResponse)
	})

	t.Run("cancelled while rate limited", func(t *testing.T) {
		t.Parallel()
		srv, calls := newServer(t, claytonJSON, http.StatusOK)
		c := geocode.New(geocode.WithURL(srv.URL), geocode.WithRateLimit(rate.Every(0x7fffffff), 1))
		_, err := c.Search(context.Background(), "first")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.Search(ctx, "second")
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "st. louis county", geocode.Normalize("  St.  Louis\tCOUNTY "))
	assert.Empty(t, geocode.Normalize(" \n "))
}
