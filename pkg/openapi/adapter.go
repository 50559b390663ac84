package openapi

import (
	"bytes"
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/integrixs/fieldtree/pkg/schema"
)

const DefaultAdapterName = "openapi"

// Adapter wraps the loader/parser/writer flow behind the schema adapter
// interfaces.
type Adapter struct {
	loader schema.Loader
	parser Parser
	writer Writer
}

var (
	_ schema.FormatAdapter  = (*Adapter)(nil)
	_ schema.FormatExporter = (*Adapter)(nil)
)

// NewAdapter constructs an OpenAPI adapter. writer may be nil for read-only
// use.
func NewAdapter(loader schema.Loader, parser Parser, writer Writer) *Adapter {
	return &Adapter{
		loader: loader,
		parser: parser,
		writer: writer,
	}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload declares an openapi or swagger
// version at its top level.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectOpenAPI(raw)
}

// Load fetches the raw OpenAPI document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("openapi adapter: loader is nil")
	}
	return a.loader.Load(ctx, src)
}

// Normalize converts component schemas into the canonical schema IR.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if a == nil || a.parser == nil {
		return schema.SchemaIR{}, errors.New("openapi adapter: parser is nil")
	}
	return a.parser.Structures(ctx, doc, opts)
}

// Export writes the IR as an OpenAPI document.
func (a *Adapter) Export(ctx context.Context, ir schema.SchemaIR, opts schema.ExportOptions) ([]byte, error) {
	if a == nil || a.writer == nil {
		return nil, errors.New("openapi adapter: writer is nil")
	}
	return a.writer.Write(ctx, ir, opts)
}

func detectOpenAPI(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return false
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch root.Content[i].Value {
		case "openapi", "swagger":
			return true
		}
	}
	return false
}
