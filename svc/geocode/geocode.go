package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/geodash/pkg/cache"
	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/requestid"
)

const (
	// DefaultURL is the public Nominatim search endpoint.
	DefaultURL       = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent = "geodash/1.0"
	DefaultCacheSize = 256
	DefaultCacheTTL  = time.Hour
	// DefaultRate follows the public Nominatim limit of one request per second.
	DefaultRate = rate.Limit(1)
)

var (
	ErrEmptyQuery      = errors.New("geocode: empty query")
	ErrNotFound        = errors.New("geocode: location not found")
	ErrRequestFailed   = errors.New("geocode: request failed")
	ErrInvalidResponse = errors.New("geocode: invalid response")
)

var searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "geodash",
	Subsystem: "geocode",
	Name:      "searches_total",
	Help:      "Geocoder searches by outcome.",
}, []string{"outcome"})

// Bounds is a bounding box in degrees.
type Bounds struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Place is the best match for a search.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Bounds      Bounds  `json:"bounds"`
	DisplayName string  `json:"displayName"`
}

// Client resolves free-text locations. Results are cached by normalized
// query and outgoing requests are rate limited.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	cache     *cache.LRU[string, Place]
	log       *slog.Logger
}

// options collects the Option values passed to New.
type options struct {
	endpoint  string
	userAgent string
	http      *http.Client
	rate      rate.Limit
	burst     int
	cacheSize int
	cacheTTL  time.Duration
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithURL sets the search endpoint.
func WithURL(endpoint string) Option {
	return func(o *options) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithUserAgent sets the User-Agent header. Public Nominatim requires one.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithHTTPClient sets the client used for searches.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.http = c
		}
	}
}

// WithRateLimit sets requests per second and burst. rate.Inf disables limiting.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) {
		o.rate = r
		if burst > 0 {
			o.burst = burst
		}
	}
}

// WithCache sizes the result cache. A non-positive ttl keeps entries until evicted.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		if size > 0 {
			o.cacheSize = size
		}
		o.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates a geocoding client.
func New(opts ...Option) *Client {
	o := options{
		endpoint:  DefaultURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: 15 * time.Second},
		rate:      DefaultRate,
		burst:     1,
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		endpoint:  o.endpoint,
		userAgent: o.userAgent,
		http:      o.http,
		limiter:   rate.NewLimiter(o.rate, o.burst),
		cache:     cache.New(o.cacheSize, cache.WithTTL[string, Place](o.cacheTTL)),
		log:       o.log.With(logger.Component("geocode")),
	}
}

// Normalize folds case and whitespace so equivalent queries share a cache entry.
func Normalize(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Search returns the first match for query.
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	key := Normalize(query)
	if key == "" {
		return nil, ErrEmptyQuery
	}
	if p, ok := c.cache.Get(key); ok {
		searchesTotal.WithLabelValues("cache_hit").Inc()
		return &p, nil
	}

	p, err := c.search(ctx, strings.TrimSpace(query))
	switch {
	case errors.Is(err, ErrNotFound):
		searchesTotal.WithLabelValues("not_found").Inc()
		return nil, err
	case err != nil:
		searchesTotal.WithLabelValues("error").Inc()
		c.log.WarnContext(ctx, "geocode search failed", logger.Error(err))
		return nil, err
	}
	searchesTotal.WithLabelValues("success").Inc()
	c.cache.Put(key, p)
	return &p, nil
}

// result is one entry of the search response.
type result struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// search performs one rate-limited request.
func (c *Client) search(ctx context.Context, query string) (Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Place{}, fmt.Errorf("geocode: wait for rate limiter: %w", err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Place{}, fmt.Errorf("geocode: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestid.Stamp(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Place{}, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Place{}, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var results []result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&results); err != nil {
		return Place{}, errors.Join(ErrInvalidResponse, err)
	}
	if len(results) == 0 {
		return Place{}, ErrNotFound
	}
	return results[0].place()
}

// place converts a result; boundingbox is [south, north, west, east].
func (r result) place() (Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: lat %q", ErrInvalidResponse, r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: lon %q", ErrInvalidResponse, r.Lon)
	}
	if len(r.BoundingBox) != 4 {
		return Place{}, fmt.Errorf("%w: boundingbox has %d values", ErrInvalidResponse, len(r.BoundingBox))
	}
	var box [4]float64
	for i, s := range r.BoundingBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Place{}, fmt.Errorf("%w: boundingbox %q", ErrInvalidResponse, s)
		}
		box[i] = v
	}
	return Place{
		Lat:         lat,
		Lon:         lon,
		Bounds:      Bounds{South: box[0], North: box[1], West: box[2], East: box[3]},
		DisplayName: r.DisplayName,
	}, nil
}
