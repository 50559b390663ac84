package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownRenderer is returned by Get for names nobody registered.
var ErrUnknownRenderer = errors.New("render: renderer not found")

// Registry stores renderers by lower-cased name. The first registered
// renderer is the default, which Get returns for a blank name so the CLI can
// leave --renderer unset.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := normalizeName(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// SetDefault changes the renderer Get returns for a blank name.
func (r *Registry) SetDefault(name string) error {
	key := normalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[key]; !ok {
		return r.unknown(key)
	}
	r.fallback = key
	return nil
}

// Get retrieves a renderer by name, or the default one when name is blank.
// Unknown names fail with ErrUnknownRenderer and the available names.
func (r *Registry) Get(name string) (Renderer, error) {
	key := normalizeName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key == "" {
		key = r.fallback
	}
	renderer, ok := r.renderers[key]
	if !ok {
		return nil, r.unknown(key)
	}
	return renderer, nil
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

// names must be called with mu held.
func (r *Registry) names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unknown must be called with mu held.
func (r *Registry) unknown(name string) error {
	available := "none"
	if len(r.renderers) > 0 {
		available = strings.Join(r.names(), ", ")
	}
	return fmt.Errorf("%w: %q (available: %s)", ErrUnknownRenderer, name, available)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
