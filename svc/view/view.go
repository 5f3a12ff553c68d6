// Package view keeps the map viewport and user notices shown by the dashboard.
package view

import (
	"github.com/dmitrymomot/geodash/pkg/store"
	"github.com/dmitrymomot/geodash/svc/geocode"
)

// DefaultCenter is St. Louis.
var DefaultCenter = LatLng{Lat: 38.64, Lng: -90.3}

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangle the map should fit.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Severity of a notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// State is the view slice of client state.
type State struct {
	DefaultCenter  LatLng  `json:"defaultCenter"`
	Center         LatLng  `json:"center"`
	Bounds         *Bounds `json:"bounds,omitempty"`
	UserLocation   *LatLng `json:"userLocation,omitempty"`
	TableCollapsed bool    `json:"tableCollapsed"`
	Notice         *Notice `json:"notice,omitempty"`
}

// Model owns the view state.
type Model struct {
	state *store.Store[State]
}

// Option configures a Model.
type Option func(*State)

// WithDefaultCenter overrides the home position.
func WithDefaultCenter(c LatLng) Option {
	return func(s *State) {
		s.DefaultCenter = c
	}
}

// New creates a model centered on the default position with the table collapsed.
func New(opts ...Option) *Model {
	s := State{DefaultCenter: DefaultCenter, TableCollapsed: true}
	for _, opt := range opts {
		opt(&s)
	}
	s.Center = s.DefaultCenter
	return &Model{state: store.New(s)}
}

// State returns the current view state.
func (m *Model) State() State {
	return m.state.Get()
}

// Subscribe registers fn for every view change.
func (m *Model) Subscribe(fn func(State)) func() {
	return m.state.Subscribe(fn)
}

// SetCenter moves the map.
func (m *Model) SetCenter(c LatLng) {
	m.update(func(s State) State {
		s.Center = c
		return s
	})
}

// SetBounds fits the map to b.
func (m *Model) SetBounds(b Bounds) {
	m.update(func(s State) State {
		s.Bounds = &b
		return s
	})
}

// ShowPlace centers on a search result and fits its bounding box.
func (m *Model) ShowPlace(p geocode.Place) {
	b := Bounds{
		SouthWest: LatLng{Lat: p.Bounds.South, Lng: p.Bounds.West},
		NorthEast: LatLng{Lat: p.Bounds.North, Lng: p.Bounds.East},
	}
	m.update(func(s State) State {
		s.Center = LatLng{Lat: p.Lat, Lng: p.Lon}
		s.Bounds = &b
		return s
	})
}

// SetUserLocation stores a copy of loc; nil clears it.
func (m *Model) SetUserLocation(loc *LatLng) {
	var cp *LatLng
	if loc != nil {
		v := *loc
		cp = &v
	}
	m.update(func(s State) State {
		s.UserLocation = cp
		return s
	})
}

// ToggleTable collapses or expands the feature table.
func (m *Model) ToggleTable() {
	m.update(func(s State) State {
		s.TableCollapsed = !s.TableCollapsed
		return s
	})
}

// Home returns to the default center and drops any fitted bounds.
func (m *Model) Home() {
	m.update(func(s State) State {
		s.Center = s.DefaultCenter
		s.Bounds = nil
		return s
	})
}

// Notify replaces the current notice.
func (m *Model) Notify(msg string, sev Severity) {
	m.update(func(s State) State {
		s.Notice = &Notice{Message: msg, Severity: sev}
		return s
	})
}

// DismissNotice clears the current notice.
func (m *Model) DismissNotice() {
	m.update(func(s State) State {
		s.Notice = nil
		return s
	})
}

// update applies fn as one store update.
func (m *Model) update(fn func(State) State) {
	m.state.UpdateFunc(fn)
}
