package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	pkgopenapi "github.com/integrixs/fieldtree/pkg/openapi"
	"github.com/integrixs/fieldtree/pkg/schema"
)

const (
	// Version is the OpenAPI version written by the Writer.
	Version = "3.0.3"

	defaultTitle       = "fieldtree export"
	defaultInfoVersion = "1.0.0"
)

// Writer implements pkgopenapi.Writer using kin-openapi document types.
type Writer struct{}

var _ pkgopenapi.Writer = (*Writer)(nil)

// New constructs a Writer.
func New() pkgopenapi.Writer {
	return &Writer{}
}

// Write renders every structure as a component schema. Property order is
// recorded in x-fieldtree-order because OpenAPI objects are unordered once
// decoded.
func (w *Writer) Write(ctx context.Context, ir schema.SchemaIR, opts schema.ExportOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ir.Structures) == 0 {
		return nil, errors.New("openapi writer: no structures to export")
	}

	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	version := opts.Version
	if version == "" {
		version = defaultInfoVersion
	}

	doc := &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: make(openapi3.Schemas, len(ir.Structures))},
	}
	for id, structure := range ir.Structures {
		converted := toKin(structure.Schema)
		if converted.Title == "" {
			converted.Title = structure.Title
		}
		if converted.Description == "" {
			converted.Description = structure.Description
		}
		doc.Components.Schemas[id] = openapi3.NewSchemaRef("", converted)
	}

	switch opts.Encoding {
	case "", schema.EncodingJSON:
		compact, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("openapi writer: encode json: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, compact, "", "  "); err != nil {
			return nil, fmt.Errorf("openapi writer: indent json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case schema.EncodingYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("openapi writer: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("openapi writer: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("openapi writer: unknown encoding %q", opts.Encoding)
	}
}

func toKin(s schema.Schema) *openapi3.Schema {
	out := &openapi3.Schema{
		Title:       s.Title,
		Format:      s.Format,
		Description: s.Description,
	}
	if s.Type != "" {
		out.Type = &openapi3.Types{s.Type}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if len(s.Extensions) > 0 {
		out.Extensions = make(map[string]any, len(s.Extensions)+1)
		for key, value := range s.Extensions {
			out.Extensions[key] = value
		}
	}
	if names := s.PropertyNames(); len(names) > 0 {
		out.Properties = make(openapi3.Schemas, len(names))
		for _, name := range names {
			out.Properties[name] = schemaRef(s.Properties[name])
		}
		if out.Extensions == nil {
			out.Extensions = make(map[string]any, 1)
		}
		out.Extensions[schema.ExtensionOrder] = names
	}
	if s.Items != nil {
		out.Items = schemaRef(*s.Items)
	}
	if s.MinItems != nil && *s.MinItems > 0 {
		out.MinItems = uint64(*s.MinItems)
	}
	if s.MaxItems != nil {
		value := uint64(*s.MaxItems)
		out.MaxItems = &value
	}
	return out
}

// schemaRef keeps unresolved refs as $ref pointers and inlines everything
// else.
func schemaRef(s schema.Schema) *openapi3.SchemaRef {
	if s.Ref != "" && s.Type == "" && len(s.Properties) == 0 {
		return openapi3.NewSchemaRef(s.Ref, nil)
	}
	return openapi3.NewSchemaRef("", toKin(s))
}
