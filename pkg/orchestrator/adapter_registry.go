package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/integrixs/fieldtree/pkg/schema"
)

// FormatAdapter aliases the canonical adapter interface for convenience.
type FormatAdapter = schema.FormatAdapter

// ErrFormatNotDetected is returned when no registered adapter claims a
// document.
var ErrFormatNotDetected = errors.New("orchestrator: unable to detect format")

// FormatKind tells tree formats, which store field trees verbatim, apart from
// schema formats that go through the IR.
type FormatKind string

const (
	FormatKindTree   FormatKind = "tree"
	FormatKindSchema FormatKind = "schema"
)

// FormatInfo describes a registered adapter.
type FormatInfo struct {
	Name   string
	Kind   FormatKind
	Export bool
}

type registration struct {
	adapter schema.FormatAdapter
	info    FormatInfo
}

// AdapterRegistry stores format adapters by lower-cased name and records
// what each one can do: adapters implementing TreeReader are tree formats,
// and TreeWriter or schema.FormatExporter make a format exportable.
type AdapterRegistry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewAdapterRegistry creates an empty adapter registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{
		entries: make(map[string]registration),
	}
}

// Register adds an adapter by its Name(). Duplicate names return an error.
func (r *AdapterRegistry) Register(adapter schema.FormatAdapter) error {
	if adapter == nil {
		return errors.New("orchestrator: adapter is required")
	}
	name := normalizeAdapterName(adapter.Name())
	if name == "" {
		return errors.New("orchestrator: adapter name is required")
	}

	info := FormatInfo{Name: name, Kind: FormatKindSchema}
	if _, ok := adapter.(TreeReader); ok {
		info.Kind = FormatKindTree
	}
	_, writesTree := adapter.(TreeWriter)
	_, exports := adapter.(schema.FormatExporter)
	info.Export = writesTree || exports

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("orchestrator: adapter %q already registered", name)
	}
	r.entries[name] = registration{adapter: adapter, info: info}
	return nil
}

// Get retrieves an adapter by name.
func (r *AdapterRegistry) Get(name string) (schema.FormatAdapter, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return entry.adapter, nil
}

// Exporter returns the named adapter as a schema exporter. Tree formats are
// written through TreeWriter instead and are rejected here.
func (r *AdapterRegistry) Exporter(name string) (schema.FormatExporter, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	exporter, ok := entry.adapter.(schema.FormatExporter)
	if !ok {
		return nil, fmt.Errorf("orchestrator: adapter %q cannot export (export formats: %s)", entry.info.Name, strings.Join(r.exportNames(), ", "))
	}
	return exporter, nil
}

// List returns the sorted adapter names.
func (r *AdapterRegistry) List() []string {
	formats := r.Formats()
	names := make([]string, len(formats))
	for i, info := range formats {
		names[i] = info.Name
	}
	return names
}

// Formats describes every registered adapter, sorted by name.
func (r *AdapterRegistry) Formats() []FormatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FormatInfo, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Detect returns the adapters that claim the payload. Tree formats rank
// ahead of schema formats; names break ties.
func (r *AdapterRegistry) Detect(src schema.Source, raw []byte) []schema.FormatAdapter {
	matches := r.detect(src, raw)
	out := make([]schema.FormatAdapter, len(matches))
	for i, entry := range matches {
		out[i] = entry.adapter
	}
	return out
}

// DetectOne picks the single adapter for a payload. A tree format that is the
// only tree match wins over schema matches; several matches of the best kind
// are ambiguous.
func (r *AdapterRegistry) DetectOne(src schema.Source, raw []byte) (schema.FormatAdapter, error) {
	matches := r.detect(src, raw)
	if len(matches) == 0 {
		return nil, ErrFormatNotDetected
	}
	best := matches[:1]
	for _, entry := range matches[1:] {
		if entry.info.Kind != matches[0].info.Kind {
			break
		}
		best = append(best, entry)
	}
	if len(best) > 1 {
		names := make([]string, len(best))
		for i, entry := range best {
			names[i] = entry.info.Name
		}
		return nil, fmt.Errorf("orchestrator: multiple adapters matched payload (%s), specify format", strings.Join(names, ", "))
	}
	return best[0].adapter, nil
}

func (r *AdapterRegistry) detect(src schema.Source, raw []byte) []registration {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []registration
	for _, entry := range r.entries {
		if entry.adapter.Detect(src, raw) {
			matches = append(matches, entry)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i].info, matches[j].info
		if a.Kind != b.Kind {
			return a.Kind == FormatKindTree
		}
		return a.Name < b.Name
	})
	return matches
}

func (r *AdapterRegistry) lookup(name string) (registration, error) {
	key := normalizeAdapterName(name)
	if key == "" {
		return registration{}, errors.New("orchestrator: adapter name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return registration{}, fmt.Errorf("orchestrator: adapter %q not found", key)
	}
	return entry, nil
}

func (r *AdapterRegistry) exportNames() []string {
	var names []string
	for _, info := range r.Formats() {
		if info.Export {
			names = append(names, info.Name)
		}
	}
	return names
}

func normalizeAdapterName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
