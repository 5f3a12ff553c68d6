package geodata_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/pkg/store"
	"github.com/dmitrymomot/geodash/svc/geodata"
)

func feature(name, code string, area any) *geodata.Feature {
	props := geodata.Properties{}
	if name != "" {
		props[geodata.PropMunicipality] = name
	}
	if code != "" {
		props[geodata.PropMunicode] = code
	}
	if area != nil {
		props[geodata.PropSquareMiles] = area
	}
	return &geodata.Feature{Type: "Feature", Properties: props}
}

func collection(features ...*geodata.Feature) *geodata.FeatureCollection {
	if features == nil {
		features = []*geodata.Feature{}
	}
	return &geodata.FeatureCollection{Type: "FeatureCollection", Features: features}
}

func names(fc *geodata.FeatureCollection) []string {
	out := make([]string, 0, fc.Len())
	for _, f := range fc.Features {
		out = append(out, f.Properties.Municipality())
	}
	return out
}

func TestProperties_SquareMiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float", 2.5, 2.5, true},
		{"int", 3, 3, true},
		{"json number", json.Number("4.25"), 4.25, true},
		{"string is not a number", "4", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"missing", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := feature("A", "1", tt.value).Properties.SquareMiles()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_EmptyStateDropsOnlyNonFiniteArea(t *testing.T) {
	t.Parallel()

	fc := collection(
		feature("A", "1", 1.0),
		feature("B", "2", math.NaN()),
		feature("C", "3", nil),
		feature("D", "4", "12"),
		feature("E", "5", 0.0),
	)
	got := geodata.Filter(fc, geodata.EmptyFilters())
	require.NotNil(t, got)
	assert.Equal(t, []string{"A", "E"}, names(got))
	assert.Same(t, fc.Features[0], got.Features[0])
}

func TestFilter_NilCollection(t *testing.T) {
	t.Parallel()
	assert.Nil(t, geodata.Filter(nil, geodata.FilterState{Municipality: geodata.NewSet("A")}))
}

func TestFilter_EmptyResultIsNotNil(t *testing.T) {
	t.Parallel()
	got := geodata.Filter(collection(feature("A", "1", 1.0)), geodata.FilterState{Municipality: geodata.NewSet("Z")})
	require.NotNil(t, got)
	assert.Zero(t, got.Len())
}

func TestFilter_Conjunctive(t *testing.T) {
	t.Parallel()

	fc := collection(
		feature("A", "1", 3.0),
		feature("B", "2", 10.0),
		feature("A", "3", 7.0),
	)
	f := geodata.FilterState{Municipality: geodata.NewSet("A"), AreaMin: "5"}
	assert.Equal(t, []string{"A"}, names(geodata.Filter(fc, f)))
	assert.Equal(t, 7.0, mustArea(t, geodata.Filter(fc, f).Features[0]))
}

func mustArea(t *testing.T, f *geodata.Feature) float64 {
	t.Helper()
	v, ok := f.Properties.SquareMiles()
	require.True(t, ok)
	return v
}

func TestFilter_FacetMembershipIsDisjunctive(t *testing.T) {
	t.Parallel()

	fc := collection(
		feature("A", "10", 1.0),
		feature("B", "20", 1.0),
		feature("C", "30", 1.0),
	)
	got := geodata.Filter(fc, geodata.FilterState{Municipality: geodata.NewSet("A", "C")})
	assert.Equal(t, []string{"A", "C"}, names(got))

	got = geodata.Filter(fc, geodata.FilterState{Municode: geodata.NewSet("20")})
	assert.Equal(t, []string{"B"}, names(got))

	got = geodata.Filter(fc, geodata.FilterState{Municipality: geodata.NewSet("A", "B"), Municode: geodata.NewSet("20")})
	assert.Equal(t, []string{"B"}, names(got))
}

func TestFilter_AreaBounds(t *testing.T) {
	t.Parallel()

	fc := collection(
		feature("small", "1", 1.0),
		feature("mid", "2", 5.0),
		feature("large", "3", 9.0),
	)
	tests := []struct {
		name     string
		min, max string
		want     []string
	}{
		{"inclusive min", "5", "", []string{"mid", "large"}},
		{"inclusive max", "", "5", []string{"small", "mid"}},
		{"range", "2", "8", []string{"mid"}},
		{"whitespace trimmed", " 5 ", " 5 ", []string{"mid"}},
		{"blank bounds ignored", "   ", "", []string{"small", "mid", "large"}},
		{"unparsable min matches nothing", "abc", "", []string{}},
		{"unparsable max matches nothing", "", "1x", []string{}},
		{"infinite bound matches nothing", "Inf", "", []string{}},
		{"inverted range", "8", "2", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := geodata.Filter(fc, geodata.FilterState{AreaMin: tt.min, AreaMax: tt.max})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestUniqueValues(t *testing.T) {
	t.Parallel()

	fc := collection(
		feature("Ferguson", "b", 1.0),
		feature("Clayton", "a", math.NaN()),
		feature("Ferguson", "", 1.0),
		feature("  ", "c", 1.0),
		feature("", "a", 1.0),
		feature("ballwin", "B", 1.0),
	)
	got := geodata.UniqueValues(fc, geodata.PropMunicipality)
	assert.Equal(t, []string{"Clayton", "Ferguson", "ballwin"}, got)
	assert.Equal(t, []string{"B", "a", "b", "c"}, geodata.UniqueValues(fc, geodata.PropMunicode))

	fc.Features = append(fc.Features, feature("Clayton", "a", 2.0))
	assert.Equal(t, got, geodata.UniqueValues(fc, geodata.PropMunicipality))

	assert.Nil(t, geodata.UniqueValues(nil, geodata.PropMunicipality))
	assert.Empty(t, geodata.UniqueValues(collection(), geodata.PropMunicipality))
}

func TestFilterPatch(t *testing.T) {
	t.Parallel()

	base := geodata.FilterState{Municipality: geodata.NewSet("A"), AreaMin: "1"}
	got := geodata.FilterPatch{AreaMax: store.Set("9")}.Apply(base)
	assert.True(t, got.Municipality.Equal(geodata.NewSet("A")))
	assert.Equal(t, "1", got.AreaMin)
	assert.Equal(t, "9", got.AreaMax)

	got = geodata.FilterPatch{Municipality: store.Clear[geodata.Set]()}.Apply(got)
	assert.True(t, got.Municipality.IsEmpty())
	assert.False(t, got.IsEmpty())
	assert.True(t, geodata.EmptyFilters().IsEmpty())
}

func TestSet_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(geodata.FilterState{Municipality: geodata.NewSet("b", "a", "a")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"municipality":["a","b"],"municode":[],"areaMin":"","areaMax":""}`, string(data))

	var f geodata.FilterState
	require.NoError(t, json.Unmarshal([]byte(`{"municode":["7","7","8"],"areaMin":"2"}`), &f))
	assert.Equal(t, []string{"7", "8"}, f.Municode.Values())
	assert.Equal(t, "2", f.AreaMin)
	assert.True(t, f.Municipality.IsEmpty())
}
