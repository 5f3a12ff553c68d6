package geodata

import (
	"encoding/json"
	"math"
	"strconv"
)

// Feature property keys read by the filter engine.
const (
	PropMunicipality = "MUNICIPALITY"
	PropMunicode     = "MUNICODE"
	PropSquareMiles  = "SQ_MILES"
)

// FeatureCollection is a GeoJSON feature collection. Features are treated
// as immutable once decoded.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// Feature is a GeoJSON feature. Geometry is kept undecoded.
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Properties is the attribute mapping of a feature.
type Properties map[string]any

// Len reports the number of features; nil-safe.
func (fc *FeatureCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// String returns the property value when it is a string.
func (p Properties) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Municipality returns the MUNICIPALITY property.
func (p Properties) Municipality() string {
	s, _ := p.String(PropMunicipality)
	return s
}

// Municode returns the MUNICODE property.
func (p Properties) Municode() string {
	s, _ := p.String(PropMunicode)
	return s
}

// SquareMiles returns SQ_MILES when it holds a finite number.
// Numeric strings are not numbers.
func (p Properties) SquareMiles() (float64, bool) {
	return finite(p[PropSquareMiles])
}

// finite converts numeric JSON values. Strings, NaN and infinities are rejected.
func finite(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
