// Package model manages named language models.
//
// A registry maps model names to word-vector files via a YAML manifest and
// loads each model at most once, caching it for later lookups. Models can
// also be registered programmatically, which is how custom Embedder
// implementations plug in.
package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hazalci/textcompare/pkg/embed"
)

// Common errors
var (
	// ErrEmptyName is returned when a model name is empty and the
	// manifest declares no default.
	ErrEmptyName = errors.New("model: empty model name")

	// ErrNotFound is returned when a model name is not in the registry.
	ErrNotFound = errors.New("model: model not found")
)

// Info describes one model in a manifest.
type Info struct {
	// Name identifies the model, e.g. "en-core-sm".
	Name string `yaml:"name"`
	// Path is the word-vector file for the model.
	Path string `yaml:"path"`
	// Dimensions optionally pins the expected vector dimension.
	// Zero means auto-detect from the file.
	Dimensions int `yaml:"dimensions,omitempty"`
}

// Manifest lists the models available to a registry.
type Manifest struct {
	Models  []Info `yaml:"models"`
	Default string `yaml:"default,omitempty"`
}

// LoadManifest reads a YAML manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for _, info := range m.Models {
		if info.Name == "" {
			return nil, fmt.Errorf("manifest %s: model entry with empty name", path)
		}
		if info.Path == "" {
			return nil, fmt.Errorf("manifest %s: model %q has no path", path, info.Name)
		}
	}
	return &m, nil
}

// Registry loads and caches language models by name.
// Safe for concurrent use; concurrent loads of the same name load once.
type Registry struct {
	mu     sync.Mutex
	byName map[string]Info
	dflt   string
	loaded map[string]embed.Embedder
}

// NewRegistry creates a registry from a manifest. A nil manifest yields
// an empty registry that only serves programmatically registered models.
func NewRegistry(m *Manifest) *Registry {
	r := &Registry{
		byName: make(map[string]Info),
		loaded: make(map[string]embed.Embedder),
	}
	if m != nil {
		for _, info := range m.Models {
			r.byName[info.Name] = info
		}
		r.dflt = m.Default
	}
	return r
}

// OpenRegistry reads a manifest file and creates a registry from it.
func OpenRegistry(path string) (*Registry, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(m), nil
}

// Load returns the named model, reading it from disk on first use.
// An empty name selects the manifest default.
func (r *Registry) Load(ctx context.Context, name string) (embed.Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = r.dflt
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	if e, ok := r.loaded[name]; ok {
		return e, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	e, err := embed.LoadWordVectors(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load language model %q, make sure it is installed: %w", name, err)
	}
	if info.Dimensions > 0 && e.Dim() != info.Dimensions {
		return nil, fmt.Errorf("model %q: dimension mismatch: manifest says %d, file has %d",
			name, info.Dimensions, e.Dim())
	}

	r.loaded[name] = e
	return e, nil
}

// Register adds a preloaded embedder under the given name, replacing any
// previous registration. The first registered model becomes the default
// if the manifest declared none.
func (r *Registry) Register(name string, e embed.Embedder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded[name] = e
	if r.dflt == "" {
		r.dflt = name
	}
}

// Default returns the default model name, or "" if none is set.
func (r *Registry) Default() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dflt
}

// Models returns the names of all known models: manifest entries plus
// registered embedders.
func (r *Registry) Models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(r.byName)+len(r.loaded))
	var names []string
	for name := range r.byName {
		seen[name] = true
		names = append(names, name)
	}
	for name := range r.loaded {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}
