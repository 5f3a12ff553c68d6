package geodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/requestid"
)

// Source produces the feature collection of a layer.
type Source interface {
	Fetch(ctx context.Context) (*FeatureCollection, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*FeatureCollection, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (*FeatureCollection, error) {
	return f(ctx)
}

const maxCollectionSize = 64 << 20

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geodash",
		Subsystem: "feature",
		Name:      "fetch_total",
		Help:      "Feature service fetches by layer and outcome.",
	}, []string{"layer", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geodash",
		Subsystem: "feature",
		Name:      "fetch_duration_seconds",
		Help:      "Feature service fetch latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"layer"})
)

// HTTPSource fetches a GeoJSON document from a feature service URL.
type HTTPSource struct {
	layer  string
	url    string
	client *http.Client
	log    *slog.Logger
}

// SourceOption configures an HTTPSource.
type SourceOption func(*HTTPSource)

// WithSourceHTTPClient sets the client used for fetches.
func WithSourceHTTPClient(c *http.Client) SourceOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l *slog.Logger) SourceOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.log = l
		}
	}
}

// NewHTTPSource creates a source for layer reading from url.
func NewHTTPSource(layer, url string, opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		layer:  layer,
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the feature service endpoint.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch downloads and decodes the collection, recording metrics.
func (s *HTTPSource) Fetch(ctx context.Context) (*FeatureCollection, error) {
	start := time.Now()
	fc, err := s.fetch(ctx)
	fetchDuration.WithLabelValues(s.layer).Observe(time.Since(start).Seconds())
	if err != nil {
		fetchTotal.WithLabelValues(s.layer, "error").Inc()
		return nil, err
	}
	fetchTotal.WithLabelValues(s.layer, "success").Inc()
	return fc, nil
}

// fetch performs one request.
func (s *HTTPSource) fetch(ctx context.Context) (*FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("geodata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	reqID := requestid.Stamp(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	s.log.DebugContext(ctx, "feature service responded",
		logger.Layer(s.layer),
		logger.RequestID(reqID),
		logger.Status(resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	return DecodeCollection(io.LimitReader(resp.Body, maxCollectionSize))
}

// DecodeCollection reads a GeoJSON feature collection. ArcGIS reports
// query errors as a 200 with an error object, which is rejected here.
func DecodeCollection(r io.Reader) (*FeatureCollection, error) {
	var doc struct {
		FeatureCollection
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidCollection, err)
	}
	if doc.Error != nil {
		return nil, fmt.Errorf("%w: service error %d: %s", ErrFetchFailed, doc.Error.Code, doc.Error.Message)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidCollection, doc.Type)
	}
	fc := doc.FeatureCollection
	if fc.Features == nil {
		fc.Features = []*Feature{}
	}
	return &fc, nil
}
