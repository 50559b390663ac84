package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/integrixs/fieldtree/pkg/schema"
)

const DefaultAdapterName = "jsonschema"

// DefaultRootID names the root structure when neither NormalizeOptions nor
// the document title supply one.
const DefaultRootID = "root"

// Adapter wraps JSON Schema parsing and normalization behind the schema
// adapter interface.
type Adapter struct {
	loader schema.Loader
}

var (
	_ schema.FormatAdapter  = (*Adapter)(nil)
	_ schema.FormatExporter = (*Adapter)(nil)
)

// NewAdapter constructs a JSON Schema adapter with the supplied loader.
func NewAdapter(loader schema.Loader) *Adapter {
	return &Adapter{loader: loader}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be JSON Schema.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	payload, err := parseDocument(raw)
	if err != nil {
		return false
	}
	if payload.has("openapi") || payload.has("swagger") {
		return false
	}
	for _, key := range []string{"$schema", "$id", "$defs", "definitions", "properties", "type", "items"} {
		if payload.has(key) {
			return true
		}
	}
	return false
}

// Load fetches the raw JSON Schema document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("jsonschema adapter: loader is nil")
	}
	return a.loader.Load(ctx, src)
}

// Normalize converts the document into structures: one per $defs or
// definitions entry, plus the root when it describes a value itself.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if err := ctx.Err(); err != nil {
		return schema.SchemaIR{}, err
	}
	payload, err := parseDocument(doc.Raw())
	if err != nil {
		return schema.SchemaIR{}, err
	}
	if err := validateDialect(payload); err != nil {
		return schema.SchemaIR{}, err
	}

	n := newNormalizer(payload)
	ir := schema.NewSchemaIR()

	for _, container := range []string{"$defs", "definitions"} {
		raw, ok := payload.get(container)
		if !ok {
			continue
		}
		defs, ok := raw.(*object)
		if !ok {
			return schema.SchemaIR{}, fmt.Errorf("jsonschema: %s must be an object", container)
		}
		for _, id := range defs.keys {
			if opts.StructureID != "" && opts.StructureID != id {
				continue
			}
			converted, err := n.schemaFrom(defs.values[id], joinPath("#", container, id), 1)
			if err != nil {
				return schema.SchemaIR{}, err
			}
			ir.Add(structureFrom(id, converted))
		}
	}

	if describesValue(payload) {
		id := rootID(payload, opts)
		if opts.StructureID == "" || opts.StructureID == id {
			converted, err := n.schemaFrom(payload, "#", 1)
			if err != nil {
				return schema.SchemaIR{}, err
			}
			ir.Add(structureFrom(id, converted))
		}
	}

	if opts.StructureID != "" {
		if _, ok := ir.Structure(opts.StructureID); !ok {
			return schema.SchemaIR{}, fmt.Errorf("jsonschema adapter: structure %q not found", opts.StructureID)
		}
	}
	if len(ir.Structures) == 0 {
		return schema.SchemaIR{}, errors.New("jsonschema adapter: document defines no structures")
	}
	return ir, nil
}

func structureFrom(id string, s schema.Schema) schema.Structure {
	return schema.Structure{
		ID:          id,
		Title:       s.Title,
		Description: s.Description,
		Schema:      s,
		Extensions:  s.Extensions,
	}
}

func describesValue(payload *object) bool {
	for _, key := range []string{"type", "properties", "items", "$ref"} {
		if payload.has(key) {
			return true
		}
	}
	return false
}

func rootID(payload *object, opts schema.NormalizeOptions) string {
	if id := strings.TrimSpace(opts.DefaultStructureID); id != "" {
		return id
	}
	if title := strings.TrimSpace(payload.str("title")); title != "" {
		return title
	}
	return DefaultRootID
}

var supportedDialects = map[string]struct{}{
	"https://json-schema.org/draft/2020-12/schema": {},
	"https://json-schema.org/draft/2019-09/schema": {},
	"http://json-schema.org/draft-07/schema":       {},
	"http://json-schema.org/draft-06/schema":       {},
	"http://json-schema.org/draft-04/schema":       {},
}

// validateDialect accepts documents without $schema and the common drafts.
func validateDialect(payload *object) error {
	value := strings.TrimSpace(payload.str("$schema"))
	if value == "" {
		return nil
	}
	normalized := strings.TrimSuffix(value, "#")
	normalized = strings.Replace(normalized, "https://json-schema.org/draft-0", "http://json-schema.org/draft-0", 1)
	normalized = strings.Replace(normalized, "http://json-schema.org/draft/", "https://json-schema.org/draft/", 1)
	if _, ok := supportedDialects[normalized]; !ok {
		return fmt.Errorf("jsonschema: unsupported $schema %q", value)
	}
	return nil
}
