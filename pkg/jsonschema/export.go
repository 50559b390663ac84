package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/integrixs/fieldtree/pkg/schema"
)

// DialectURI is written to the $schema keyword of exported documents.
const DialectURI = "https://json-schema.org/draft/2020-12/schema"

// Export writes the IR as a JSON Schema document. A single structure becomes
// the root schema; several structures are written under $defs.
func (a *Adapter) Export(ctx context.Context, ir schema.SchemaIR, opts schema.ExportOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ir.Structures) == 0 {
		return nil, errors.New("jsonschema exporter: no structures to export")
	}

	root := newObject()
	root.set("$schema", DialectURI)

	ids := sortedKeys(ir.Structures)
	if len(ids) == 1 {
		structure := ir.Structures[ids[0]]
		title := firstNonEmpty(opts.Title, structure.Title, structure.ID, ids[0])
		root.set("title", title)
		body := schemaObject(structure.Schema)
		for _, key := range body.keys {
			if key == "title" {
				continue
			}
			root.set(key, body.values[key])
		}
	} else {
		if opts.Title != "" {
			root.set("title", opts.Title)
		}
		defs := newObject()
		for _, id := range ids {
			defs.set(id, schemaObject(ir.Structures[id].Schema))
		}
		root.set("$defs", defs)
	}

	return encode(root, opts.Encoding)
}

func schemaObject(s schema.Schema) *object {
	out := newObject()
	if s.Ref != "" {
		out.set("$ref", s.Ref)
	}
	if s.Type != "" {
		out.set("type", s.Type)
	}
	if s.Format != "" {
		out.set("format", s.Format)
	}
	if s.Title != "" {
		out.set("title", s.Title)
	}
	if s.Description != "" {
		out.set("description", s.Description)
	}
	if names := s.PropertyNames(); len(names) > 0 {
		props := newObject()
		for _, name := range names {
			props.set(name, schemaObject(s.Properties[name]))
		}
		out.set("properties", props)
	}
	if len(s.Required) > 0 {
		out.set("required", append([]string(nil), s.Required...))
	}
	if s.Items != nil {
		out.set("items", schemaObject(*s.Items))
	}
	if s.MinItems != nil {
		out.set("minItems", *s.MinItems)
	}
	if s.MaxItems != nil {
		out.set("maxItems", *s.MaxItems)
	}
	for _, key := range sortedKeys(s.Extensions) {
		out.set(key, s.Extensions[key])
	}
	return out
}

func encode(root *object, encoding schema.Encoding) ([]byte, error) {
	switch encoding {
	case "", schema.EncodingJSON:
		compact, err := json.Marshal(root)
		if err != nil {
			return nil, fmt.Errorf("jsonschema exporter: encode json: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, compact, "", "  "); err != nil {
			return nil, fmt.Errorf("jsonschema exporter: indent json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case schema.EncodingYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("jsonschema exporter: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("jsonschema exporter: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("jsonschema exporter: unknown encoding %q", encoding)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
