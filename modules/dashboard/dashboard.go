package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/geodash/pkg/httpserver"
	"github.com/dmitrymomot/geodash/pkg/kv"
	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/svc/geocode"
	"github.com/dmitrymomot/geodash/svc/geodata"
	"github.com/dmitrymomot/geodash/svc/session"
	"github.com/dmitrymomot/geodash/svc/view"
)

// Notice messages posted when the authentication state flips.
const (
	LoggedInMessage  = "You are now logged in!"
	LoggedOutMessage = "You are now logged out!"
)

// Dashboard wires the session manager, the layer engine, the geocoder and
// the view model into one client.
type Dashboard struct {
	Session  *session.Manager
	Geo      *geodata.Engine
	Geocoder *geocode.Client
	View     *view.Model

	log       *slog.Logger
	checks    map[string]httpserver.Check
	closers   []func() error
	closeOnce sync.Once
}

// options collects the Option values passed to New.
type options struct {
	log        *slog.Logger
	storage    kv.Store
	httpClient *http.Client
	layers     []geodata.LayerSpec
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by every service.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithStorage overrides the configured storage driver.
func WithStorage(s kv.Store) Option {
	return func(o *options) { o.storage = s }
}

// WithHTTPClient is used for the feature service and the geocoder. The
// session client always gets its own cookie jar.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLayers replaces the manifest with explicit layer specs.
func WithLayers(specs []geodata.LayerSpec) Option {
	return func(o *options) { o.layers = specs }
}

// New builds a dashboard from cfg. Nothing is fetched until Start.
func New(ctx context.Context, cfg Config, opts ...Option) (*Dashboard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.ClientTimeout}
	}

	d := &Dashboard{log: o.log, checks: map[string]httpserver.Check{}}

	storage := o.storage
	if storage == nil {
		st, closeFn, check, err := openStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storage = st
		d.closers = append(d.closers, closeFn)
		if check != nil {
			d.checks["storage"] = check
		}
	}

	client, err := session.NewClient(cfg.APIBaseURL,
		session.WithTimeout(cfg.ClientTimeout),
		session.WithClientLogger(o.log),
	)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Session = session.NewManager(client,
		session.WithLogger(o.log),
		session.WithStorage(storage),
		session.WithPersistCSRFToken(cfg.PersistCSRFToken),
	)
	d.closers = append(d.closers, func() error { d.Session.Close(); return nil })

	specs := o.layers
	if specs == nil {
		manifest, err := geodata.LoadManifest(cfg.LayerManifest)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		if cfg.FeatureServiceURL != "" {
			manifest.OverrideSource(geodata.DefaultLayerID, cfg.FeatureServiceURL)
		}
		specs = manifest.Specs(
			geodata.WithSourceHTTPClient(o.httpClient),
			geodata.WithSourceLogger(o.log),
		)
	}
	d.Geo, err = geodata.NewEngine(specs, geodata.WithLogger(o.log))
	if err != nil {
		_ = d.Close()
		return nil, err
	}

	limit := rate.Limit(cfg.GeocoderRate)
	if cfg.GeocoderRate == 0 {
		limit = rate.Inf
	}
	d.Geocoder = geocode.New(
		geocode.WithURL(cfg.GeocoderURL),
		geocode.WithUserAgent(cfg.GeocoderUserAgent),
		geocode.WithHTTPClient(o.httpClient),
		geocode.WithRateLimit(limit, 1),
		geocode.WithCache(cfg.GeocoderCacheSize, cfg.GeocoderCacheTTL),
		geocode.WithLogger(o.log),
	)

	d.View = view.New()
	return d, nil
}

// Start restores the saved session, fetches a CSRF token and loads every
// layer. Session problems are logged; layer load failures are returned.
// Auth notices are posted for changes after the restore.
func (d *Dashboard) Start(ctx context.Context) error {
	if err := d.Session.Restore(ctx); err != nil {
		d.log.WarnContext(ctx, "restore session", logger.Error(err))
	}
	d.watchAuth()

	if _, err := d.Session.EnsureCSRFToken(ctx); err != nil {
		d.log.WarnContext(ctx, "initial csrf token", logger.Error(err))
	}
	if err := d.Geo.LoadAll(ctx); err != nil {
		return err
	}
	return nil
}

// watchAuth posts a notice whenever isAuthenticated flips.
func (d *Dashboard) watchAuth() {
	var mu sync.Mutex
	last := d.Session.State().IsAuthenticated
	unsubscribe := d.Session.Subscribe(func(s session.AuthState) {
		mu.Lock()
		changed := s.IsAuthenticated != last
		last = s.IsAuthenticated
		mu.Unlock()
		if !changed {
			return
		}
		if s.IsAuthenticated {
			d.View.Notify(LoggedInMessage, view.SeveritySuccess)
		} else {
			d.View.Notify(LoggedOutMessage, view.SeverityInfo)
		}
	})
	d.closers = append(d.closers, func() error { unsubscribe(); return nil })
}

// Checks returns the readiness probes of remote dependencies.
func (d *Dashboard) Checks() map[string]httpserver.Check {
	return d.checks
}

// Close releases storage connections and detaches subscribers.
func (d *Dashboard) Close() error {
	var errs []error
	d.closeOnce.Do(func() {
		for i := len(d.closers) - 1; i >= 0; i-- {
			if err := d.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
