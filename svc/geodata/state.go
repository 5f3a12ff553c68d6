package geodata

// Style is the map rendering hint of a layer.
type Style struct {
	Fill   string `json:"fill,omitempty" yaml:"fill"`
	Stroke string `json:"stroke,omitempty" yaml:"stroke"`
}

// Layer is a named, independently toggleable unit of map data.
// Data stays nil until the layer is loaded.
type Layer struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Visible bool               `json:"visible"`
	Style   Style              `json:"style"`
	Data    *FeatureCollection `json:"-"`
}

// Loaded reports whether the layer carries data.
func (l Layer) Loaded() bool {
	return l.Data != nil
}

// LayerSpec declares a layer and where its features come from.
type LayerSpec struct {
	ID      string
	Name    string
	Visible bool
	Style   Style
	Source  Source
}

// State is the geodata slice of client state. Layers is keyed by id and
// Order keeps the declaration order. GeoJSON is the collection the derived
// queries read: the most recently set layer data.
type State struct {
	Layers     map[string]Layer
	Order      []string
	GeoJSON    *FeatureCollection
	DataLoaded bool
	Filters    FilterState
}

// withLayer returns a copy of s with l replacing its layer entry.
// The layers map is never mutated in place.
func (s State) withLayer(l Layer) State {
	layers := make(map[string]Layer, len(s.Layers))
	for id, v := range s.Layers {
		layers[id] = v
	}
	layers[l.ID] = l
	s.Layers = layers
	return s
}
