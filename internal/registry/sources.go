// Package registry holds the two static, immutable catalogs the
// pipeline is built around: the source registry (spec.md §4.2) and the
// region registry (spec.md §3 "Regions are loaded from a config/registry
// at startup and are read-only thereafter"). Both are constructed once
// at process start and shared by reference — no locking is needed
// because neither mutates after construction (NewSourceRegistry,
// NewRegionRegistry).
package registry

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// SourceRegistry is an immutable, ordered catalog of source definitions.
// Lookup is by id; enumeration returns registration order (spec.md §4.2).
type SourceRegistry struct {
	order []string
	byID  map[string]domain.SourceDefinition
}

// NewSourceRegistry builds a registry from an ordered list of
// definitions. Duplicate ids are rejected at construction — a
// duplicate id is an invalid_configuration, caught at startup rather
// than silently shadowing a connector.
func NewSourceRegistry(defs []domain.SourceDefinition) (*SourceRegistry, error) {
	r := &SourceRegistry{byID: make(map[string]domain.SourceDefinition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: source definition with empty id", domain.ErrInvalidConfiguration)
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate source id %q", domain.ErrInvalidConfiguration, d.ID)
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// sourcesFile is the on-disk shape decoded by BurntSushi/toml for the
// SOURCES_OVERRIDE_FILE configuration option (spec.md §6).
type sourcesFile struct {
	Source []domain.SourceDefinition `toml:"source"`
}

// LoadSourceRegistry reads a TOML source catalog from path. A missing
// file (or an empty path) is not an error — it returns a registry built
// from DefaultSourceDefinitions(), matching LoadRegionRegistry's "no override file yet" behavior.
func LoadSourceRegistry(path string) (*SourceRegistry, error) {
	if path == "" {
		return NewSourceRegistry(DefaultSourceDefinitions())
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewSourceRegistry(DefaultSourceDefinitions())
	}

	var f sourcesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	return NewSourceRegistry(f.Source)
}

// Get returns the definition for id, or (zero, false).
func (r *SourceRegistry) Get(id string) (domain.SourceDefinition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// MustGet returns the definition for id, panicking if it is unknown.
// Reserved for wiring code at startup, never for request handling.
func (r *SourceRegistry) MustGet(id string) domain.SourceDefinition {
	d, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("registry: unknown source id %q", id))
	}
	return d
}

// List returns every definition in registration order.
func (r *SourceRegistry) List() []domain.SourceDefinition {
	out := make([]domain.SourceDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Regional returns every REGIONAL-classified source, in registration
// order — the set the variance probe exercises.
func (r *SourceRegistry) Regional() []domain.SourceDefinition {
	var out []domain.SourceDefinition
	for _, id := range r.order {
		d := r.byID[id]
		if d.Classification == domain.ClassificationRegional {
			out = append(out, d)
		}
	}
	return out
}
