package schema

import (
	"context"
	"sort"
	"strings"
)

// NormalizeOptions supplies optional hints to adapters during normalization.
type NormalizeOptions struct {
	// StructureID pins normalization to a single structure; adapters may skip
	// the rest of the document.
	StructureID string
	// DefaultStructureID names the structure produced from a document whose
	// root is itself a schema (no named definitions).
	DefaultStructureID string
}

// Structure is a named data structure extracted from a source document.
type Structure struct {
	ID          string
	Title       string
	Description string
	Schema      Schema
	Extensions  map[string]any
}

// Schema is the canonical IR node shared by all adapters. Properties keep
// their document order in PropertyOrder because field trees are ordered.
type Schema struct {
	Ref           string
	Type          string
	Format        string
	Title         string
	Description   string
	Required      []string
	Properties    map[string]Schema
	PropertyOrder []string
	Items         *Schema
	MinItems      *int
	MaxItems      *int
	Extensions    map[string]any `json:"Extensions,omitempty"`
}

// PropertyNames returns property names in document order. Names missing from
// PropertyOrder follow in lexical order so output stays deterministic.
func (s Schema) PropertyNames() []string {
	if len(s.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.Properties))
	for _, name := range s.PropertyOrder {
		if _, ok := s.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	var rest []string
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// IsRequired reports whether name is listed in Required.
func (s Schema) IsRequired(name string) bool {
	for _, candidate := range s.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// SetProperty adds or replaces a property, appending new names to the order.
func (s *Schema) SetProperty(name string, property Schema) {
	if s.Properties == nil {
		s.Properties = make(map[string]Schema)
	}
	if _, exists := s.Properties[name]; !exists {
		s.PropertyOrder = append(s.PropertyOrder, name)
	}
	s.Properties[name] = property
}

// SchemaIR is the normalized structure set produced by adapters.
type SchemaIR struct {
	Structures map[string]Structure
}

// StructureRef provides minimal metadata about an available structure.
type StructureRef struct {
	ID          string
	Title       string
	Description string
}

// NewSchemaIR constructs an empty schema IR container.
func NewSchemaIR() SchemaIR {
	return SchemaIR{Structures: make(map[string]Structure)}
}

// Add registers a structure under its ID.
func (ir *SchemaIR) Add(structure Structure) {
	if ir.Structures == nil {
		ir.Structures = make(map[string]Structure)
	}
	ir.Structures[structure.ID] = structure
}

// Structure looks up a structure by id.
func (ir SchemaIR) Structure(id string) (Structure, bool) {
	if ir.Structures == nil {
		return Structure{}, false
	}
	structure, ok := ir.Structures[id]
	return structure, ok
}

// StructureRefs returns the available structures sorted by id.
func (ir SchemaIR) StructureRefs() []StructureRef {
	if len(ir.Structures) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ir.Structures))
	for id := range ir.Structures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	refs := make([]StructureRef, 0, len(ids))
	for _, id := range ids {
		structure := ir.Structures[id]
		refID := structure.ID
		if strings.TrimSpace(refID) == "" {
			refID = id
		}
		refs = append(refs, StructureRef{
			ID:          refID,
			Title:       strings.TrimSpace(structure.Title),
			Description: structure.Description,
		})
	}
	return refs
}

// FormatAdapter normalizes source documents into the canonical IR.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Load(ctx context.Context, src Source) (Document, error)
	Normalize(ctx context.Context, doc Document, opts NormalizeOptions) (SchemaIR, error)
}

// Encoding selects the textual syntax exporters emit.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// ExportOptions configures FormatExporter output.
type ExportOptions struct {
	Encoding Encoding
	// Title labels the exported document where the format has a slot for it.
	Title string
	// Version is written where the format carries a document version.
	Version string
}

// FormatExporter writes structures back into a format's representation.
type FormatExporter interface {
	Export(ctx context.Context, ir SchemaIR, opts ExportOptions) ([]byte, error)
}

// Extension keys written and read by the bundled adapters.
const (
	// ExtensionOrder lists property names in order for formats whose object
	// model is unordered.
	ExtensionOrder = "x-fieldtree-order"
	// ExtensionItemType records the primitive item type of an array whose
	// items carry no properties.
	ExtensionItemType = "x-fieldtree-item-type"
)
