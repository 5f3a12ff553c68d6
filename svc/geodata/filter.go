package geodata

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/geodash/pkg/store"
)

// Set is an immutable set of strings.
type Set struct {
	items map[string]struct{}
}

// NewSet builds a set from values; duplicates collapse.
func NewSet(values ...string) Set {
	if len(values) == 0 {
		return Set{}
	}
	items := make(map[string]struct{}, len(values))
	for _, v := range values {
		items[v] = struct{}{}
	}
	return Set{items: items}
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s.items[v]
	return ok
}

// Len returns the number of values.
func (s Set) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the set has no values.
func (s Set) IsEmpty() bool {
	return len(s.items) == 0
}

// Values returns the members in ascending order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s.items))
	for v := range s.items {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for v := range s.items {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array; null gives an empty set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// FilterState selects features by facet and area.
//
// An empty facet set means no restriction on that facet, not "match
// nothing". Area bounds are raw user text parsed at evaluation time.
type FilterState struct {
	Municipality Set    `json:"municipality"`
	Municode     Set    `json:"municode"`
	AreaMin      string `json:"areaMin"`
	AreaMax      string `json:"areaMax"`
}

// EmptyFilters is the initial filter state.
func EmptyFilters() FilterState {
	return FilterState{}
}

// IsEmpty reports whether no facet or bound is set.
func (f FilterState) IsEmpty() bool {
	return f.Municipality.IsEmpty() && f.Municode.IsEmpty() &&
		strings.TrimSpace(f.AreaMin) == "" && strings.TrimSpace(f.AreaMax) == ""
}

// Equal compares filter states by value.
func (f FilterState) Equal(other FilterState) bool {
	return f.Municipality.Equal(other.Municipality) &&
		f.Municode.Equal(other.Municode) &&
		f.AreaMin == other.AreaMin &&
		f.AreaMax == other.AreaMax
}

// FilterPatch is a shallow update of FilterState.
type FilterPatch struct {
	Municipality store.Field[Set]
	Municode     store.Field[Set]
	AreaMin      store.Field[string]
	AreaMax      store.Field[string]
}

// Apply replaces the fields set in p.
func (p FilterPatch) Apply(f FilterState) FilterState {
	f.Municipality = p.Municipality.Or(f.Municipality)
	f.Municode = p.Municode.Or(f.Municode)
	f.AreaMin = p.AreaMin.Or(f.AreaMin)
	f.AreaMax = p.AreaMax.Or(f.AreaMax)
	return f
}

// predicate is a FilterState compiled once per query.
type predicate struct {
	municipality Set
	municode     Set
	min, max     float64
}

// compile parses the bounds once per query.
func (f FilterState) compile() predicate {
	return predicate{
		municipality: f.Municipality,
		municode:     f.Municode,
		min:          parseBound(f.AreaMin, math.Inf(-1)),
		max:          parseBound(f.AreaMax, math.Inf(1)),
	}
}

// parseBound returns unset for blank input and NaN for text that is not a
// finite number; every comparison with NaN is false, so such a bound
// matches nothing.
func parseBound(raw string, unset float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unset
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// match reports whether ft passes every active filter.
func (p predicate) match(ft *Feature) bool {
	if ft == nil {
		return false
	}
	if !p.municipality.IsEmpty() && !p.municipality.Has(ft.Properties.Municipality()) {
		return false
	}
	if !p.municode.IsEmpty() && !p.municode.Has(ft.Properties.Municode()) {
		return false
	}
	area, ok := ft.Properties.SquareMiles()
	if !ok {
		return false
	}
	return area >= p.min && area <= p.max
}

// Filter returns the features of fc that match f, sharing the feature
// values with fc. A nil collection yields nil.
func Filter(fc *FeatureCollection, f FilterState) *FeatureCollection {
	if fc == nil {
		return nil
	}
	p := f.compile()
	out := &FeatureCollection{Type: fc.Type, Features: make([]*Feature, 0, len(fc.Features))}
	for _, ft := range fc.Features {
		if p.match(ft) {
			out.Features = append(out.Features, ft)
		}
	}
	return out
}

// UniqueValues extracts a string property from every feature, dropping
// blanks and duplicates, in ascending bytewise order.
func UniqueValues(fc *FeatureCollection, key string) []string {
	if fc.Len() == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	for _, ft := range fc.Features {
		if ft == nil {
			continue
		}
		v, ok := ft.Properties.String(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
