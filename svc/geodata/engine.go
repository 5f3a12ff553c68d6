package geodata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/store"
)

const defaultLoadConcurrency = 4

// Engine owns the layer map, the active filters and the derived feature queries.
type Engine struct {
	state       *store.Store[State]
	sources     map[string]Source
	log         *slog.Logger
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithLoadConcurrency bounds parallel fetches in LoadAll.
func WithLoadConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine predeclares the given layers with no data.
func NewEngine(specs []LayerSpec, opts ...Option) (*Engine, error) {
	st := State{
		Layers:  make(map[string]Layer, len(specs)),
		Order:   make([]string, 0, len(specs)),
		Filters: EmptyFilters(),
	}
	sources := make(map[string]Source, len(specs))
	for _, spec := range specs {
		if spec.ID == "" {
			return nil, ErrEmptyLayerID
		}
		if _, dup := st.Layers[spec.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLayer, spec.ID)
		}
		st.Layers[spec.ID] = Layer{
			ID:      spec.ID,
			Name:    spec.Name,
			Visible: spec.Visible,
			Style:   spec.Style,
		}
		st.Order = append(st.Order, spec.ID)
		if spec.Source != nil {
			sources[spec.ID] = spec.Source
		}
	}

	e := &Engine{
		state:       store.New(st),
		sources:     sources,
		log:         logger.Discard(),
		concurrency: defaultLoadConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("geodata"))
	return e, nil
}

// State returns the current geodata state.
func (e *Engine) State() State {
	return e.state.Get()
}

// Subscribe registers fn for every state change.
func (e *Engine) Subscribe(fn func(State)) func() {
	return e.state.Subscribe(fn)
}

// Layers returns the layers in declaration order.
func (e *Engine) Layers() []Layer {
	st := e.state.Get()
	out := make([]Layer, 0, len(st.Order))
	for _, id := range st.Order {
		out = append(out, st.Layers[id])
	}
	return out
}

// Layer returns the layer with id.
func (e *Engine) Layer(id string) (Layer, bool) {
	l, ok := e.state.Get().Layers[id]
	return l, ok
}

// Filters returns the active filters.
func (e *Engine) Filters() FilterState {
	return e.state.Get().Filters
}

// DataLoaded reports whether the current collection has features.
func (e *Engine) DataLoaded() bool {
	return e.state.Get().DataLoaded
}

// SetLayerData stores fc on an existing layer and makes it the collection
// the queries read. The loaded flag is true iff fc has features.
func (e *Engine) SetLayerData(id string, fc *FeatureCollection) error {
	if _, ok := e.Layer(id); !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.state.UpdateFunc(func(s State) State {
		l := s.Layers[id]
		l.Data = fc
		s = s.withLayer(l)
		s.GeoJSON = fc
		s.DataLoaded = fc.Len() > 0
		return s
	})
	return nil
}

// ToggleVisibility flips the visible flag of one layer.
func (e *Engine) ToggleVisibility(id string) error {
	if _, ok := e.Layer(id); !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.state.UpdateFunc(func(s State) State {
		l := s.Layers[id]
		l.Visible = !l.Visible
		return s.withLayer(l)
	})
	return nil
}

// SetFilters merges p into the active filters.
func (e *Engine) SetFilters(p FilterPatch) {
	e.state.UpdateFunc(func(s State) State {
		s.Filters = p.Apply(s.Filters)
		return s
	})
}

// ResetFilters restores the empty filter state.
func (e *Engine) ResetFilters() {
	e.state.UpdateFunc(func(s State) State {
		s.Filters = EmptyFilters()
		return s
	})
}

// FilteredFeatures applies the current filters to the current collection.
// It returns nil when no collection is set, which callers must tell apart
// from an empty result.
func (e *Engine) FilteredFeatures() *FeatureCollection {
	st := e.state.Get()
	return Filter(st.GeoJSON, st.Filters)
}

// UniqueMunicipalities lists municipality names over the unfiltered collection.
func (e *Engine) UniqueMunicipalities() []string {
	return UniqueValues(e.state.Get().GeoJSON, PropMunicipality)
}

// UniqueMunicodes lists municipal codes over the unfiltered collection.
func (e *Engine) UniqueMunicodes() []string {
	return UniqueValues(e.state.Get().GeoJSON, PropMunicode)
}

// LoadLayer fetches a layer through its source. On failure the layer data
// and the current collection are dropped rather than left stale.
func (e *Engine) LoadLayer(ctx context.Context, id string) error {
	if _, ok := e.Layer(id); !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	src, ok := e.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSource, id)
	}

	log := e.log.With(logger.Layer(id))
	start := time.Now()
	fc, err := src.Fetch(ctx)
	if err != nil {
		e.state.UpdateFunc(func(s State) State {
			l := s.Layers[id]
			l.Data = nil
			s = s.withLayer(l)
			s.GeoJSON = nil
			s.DataLoaded = false
			return s
		})
		log.ErrorContext(ctx, "load layer", logger.Error(err))
		return fmt.Errorf("geodata: load %s: %w", id, err)
	}

	if err := e.SetLayerData(id, fc); err != nil {
		return err
	}
	log.InfoContext(ctx, "layer loaded",
		logger.Count(fc.Len()),
		logger.Duration(time.Since(start)),
	)
	return nil
}

// LoadAll loads every layer that has a source. Failures do not stop the
// other loads; all errors are returned joined.
func (e *Engine) LoadAll(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(e.concurrency)
	for _, id := range e.state.Get().Order {
		if _, ok := e.sources[id]; !ok {
			continue
		}
		g.Go(func() error {
			if err := e.LoadLayer(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
