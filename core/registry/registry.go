// Package registry keeps the list of sentinel marker conventions that
// extraction should recognise. Analysis prompts have shipped with several
// marker names and versions over time; a registry file lets the set be
// changed without touching code:
//
//	markers:
//	  - name: ANALYSIS_JSON
//	  - name: DISCERNUS_ANALYSIS_JSON
//	    version: "6"
package registry

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/discernus/discernus-sub017/core/extract"
)

var (
	// ErrEmpty is returned for a registry without conventions.
	ErrEmpty = errors.New("registry defines no markers")

	namePattern    = regexp.MustCompile(`^[A-Z0-9]+(?:_[A-Z0-9]+)*$`)
	versionPattern = regexp.MustCompile(`^[vV]?[0-9]+$`)
)

// Registry is a validated, ordered set of marker conventions.
type Registry struct {
	markers []extract.Markers
}

type file struct {
	Markers []extract.Markers `yaml:"markers"`
}

// Default returns a registry holding only [extract.DefaultMarkers].
func Default() *Registry {
	return &Registry{markers: []extract.Markers{extract.DefaultMarkers}}
}

// New validates markers and builds a registry from them.
func New(markers ...extract.Markers) (*Registry, error) {
	if len(markers) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[string]bool, len(markers))
	for i, m := range markers {
		if !namePattern.MatchString(m.Name) {
			return nil, fmt.Errorf("marker %d: invalid name %q: want upper-case words joined by underscores", i, m.Name)
		}
		if m.Version != "" && !versionPattern.MatchString(m.Version) {
			return nil, fmt.Errorf("marker %d: invalid version %q: want digits", i, m.Version)
		}
		key := m.String()
		if seen[key] {
			return nil, fmt.Errorf("marker %d: duplicate convention %s", i, key)
		}
		seen[key] = true
	}
	return &Registry{markers: append([]extract.Markers(nil), markers...)}, nil
}

// Parse reads a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse marker registry: %w", err)
	}
	return New(f.Markers...)
}

// Load reads a registry file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read marker registry: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Add appends conventions to a copy of the registry.
func (r *Registry) Add(markers ...extract.Markers) (*Registry, error) {
	return New(append(r.Markers(), markers...)...)
}

// Markers returns a copy of the registered conventions in file order.
func (r *Registry) Markers() []extract.Markers {
	return append([]extract.Markers(nil), r.markers...)
}

// Extractor builds an extractor that searches for every registered
// convention. Extra options are applied after the markers.
func (r *Registry) Extractor(opts ...extract.Option) *extract.Extractor {
	all := append([]extract.Option{extract.WithMarkers(r.markers...)}, opts...)
	return extract.New(all...)
}

// Marshal encodes the registry back to YAML.
func (r *Registry) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Markers: r.markers})
}
