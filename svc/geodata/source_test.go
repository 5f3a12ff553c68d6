package geodata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/svc/geodata"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1, "geometry": {"type": "Point", "coordinates": [-90.3, 38.6]},
     "properties": {"MUNICIPALITY": "Clayton", "MUNICODE": "CL", "SQ_MILES": 2.5}},
    {"type": "Feature", "id": 2, "geometry": null,
     "properties": {"MUNICIPALITY": "Ferguson", "MUNICODE": "FE", "SQ_MILES": 6.2}}
  ]
}`

func TestHTTPSource_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("decodes collection", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(sampleGeoJSON))
		}))
		t.Cleanup(srv.Close)

		fc, err := geodata.NewHTTPSource("test", srv.URL).Fetch(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, fc.Len())
		assert.Equal(t, "Clayton", fc.Features[0].Properties.Municipality())
		assert.JSONEq(t, `{"type":"Point","coordinates":[-90.3,38.6]}`, string(fc.Features[0].Geometry))
	})

	t.Run("status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		_, err := geodata.NewHTTPSource("test", srv.URL).Fetch(context.Background())
		assert.ErrorIs(t, err, geodata.ErrFetchFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := geodata.NewHTTPSource("test", url).Fetch(context.Background())
		assert.ErrorIs(t, err, geodata.ErrFetchFailed)
	})
}

func TestDecodeCollection(t *testing.T) {
	t.Parallel()

	fc, err := geodata.DecodeCollection(strings.NewReader(`{"type":"FeatureCollection"}`))
	require.NoError(t, err)
	assert.NotNil(t, fc.Features)
	assert.Zero(t, fc.Len())

	_, err = geodata.DecodeCollection(strings.NewReader(`{"error":{"code":400,"message":"Invalid query"}}`))
	assert.ErrorIs(t, err, geodata.ErrFetchFailed)
	assert.Contains(t, err.Error(), "Invalid query")

	_, err = geodata.DecodeCollection(strings.NewReader(`{"type":"Feature"}`))
	assert.ErrorIs(t, err, geodata.ErrInvalidCollection)

	_, err = geodata.DecodeCollection(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, geodata.ErrInvalidCollection)
}
