package geodata

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultLayerID is the municipalities layer of the embedded manifest.
const DefaultLayerID = "st-louis-municipalities"

//go:embed layers.yaml
var defaultManifest []byte

// Manifest declares the layers of the dashboard.
type Manifest struct {
	Layers []ManifestLayer `yaml:"layers"`
}

// ManifestLayer is one layer entry. Source is the feature service URL.
type ManifestLayer struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Visible bool   `yaml:"visible"`
	Style   Style  `yaml:"style"`
	Source  string `yaml:"source"`
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("geodata: embedded manifest: %v", err))
	}
	return m
}

// LoadManifest reads a manifest file; an empty path yields the default.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geodata: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Join(ErrInvalidManifest, err)
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidManifest)
	}
	seen := make(map[string]struct{}, len(m.Layers))
	for i, l := range m.Layers {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: layer %d has no id", ErrInvalidManifest, i)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate layer %q", ErrInvalidManifest, l.ID)
		}
		seen[l.ID] = struct{}{}
		if l.Name == "" {
			m.Layers[i].Name = l.ID
		}
		if l.Source != "" {
			u, err := url.Parse(l.Source)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return nil, fmt.Errorf("%w: layer %q has invalid source %q", ErrInvalidManifest, l.ID, l.Source)
			}
		}
	}
	return &m, nil
}

// OverrideSource replaces the source URL of layer id. Unknown ids are ignored.
func (m *Manifest) OverrideSource(id, source string) {
	for i := range m.Layers {
		if m.Layers[i].ID == id {
			m.Layers[i].Source = source
		}
	}
}

// Specs turns the manifest into layer specs backed by HTTP sources.
func (m *Manifest) Specs(opts ...SourceOption) []LayerSpec {
	specs := make([]LayerSpec, 0, len(m.Layers))
	for _, l := range m.Layers {
		spec := LayerSpec{ID: l.ID, Name: l.Name, Visible: l.Visible, Style: l.Style}
		if l.Source != "" {
			spec.Source = NewHTTPSource(l.ID, l.Source, opts...)
		}
		specs = append(specs, spec)
	}
	return specs
}
