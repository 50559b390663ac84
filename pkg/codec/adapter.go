package codec

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// ErrTreeFormat is returned by Normalize: native documents hold a field tree,
// not a schema IR, and are read through ReadTree.
var ErrTreeFormat = errors.New("codec: native documents are read with ReadTree")

// Adapter exposes the native format to the orchestrator registry.
type Adapter struct {
	loader schema.Loader
}

// NewAdapter constructs the native adapter with the supplied loader.
func NewAdapter(loader schema.Loader) *Adapter {
	return &Adapter{loader: loader}
}

// Name returns the registry identifier.
func (a *Adapter) Name() string {
	return FormatName
}

// Detect reports whether raw looks like a native tree: a mapping whose
// "fields" key holds a sequence, or a sequence of mappings with a "name" key.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
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
	switch root.Kind {
	case yaml.MappingNode:
		fields := mappingValue(root, "fields")
		if fields == nil || fields.Kind != yaml.SequenceNode {
			return false
		}
		for _, marker := range []string{"openapi", "swagger", "$schema", "properties"} {
			if mappingValue(root, marker) != nil {
				return false
			}
		}
		return true
	case yaml.SequenceNode:
		if len(root.Content) == 0 {
			return false
		}
		first := root.Content[0]
		return first.Kind == yaml.MappingNode && mappingValue(first, "name") != nil
	default:
		return false
	}
}

// Load fetches the raw native document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("codec adapter: loader is nil")
	}
	return a.loader.Load(ctx, src)
}

// Normalize always fails with ErrTreeFormat.
func (a *Adapter) Normalize(context.Context, schema.Document, schema.NormalizeOptions) (schema.SchemaIR, error) {
	return schema.SchemaIR{}, ErrTreeFormat
}

// ReadTree decodes the document into its id and root sequence. A document
// without an id is named after its location.
func (a *Adapter) ReadTree(_ context.Context, doc schema.Document) (string, []model.Field, error) {
	decoded, err := DecodeAs(doc.Raw(), doc.Encoding())
	if err != nil {
		return "", nil, err
	}
	id := decoded.ID
	if id == "" {
		id = idFromLocation(doc.Location())
	}
	return id, decoded.Fields, nil
}

// WriteTree encodes fields as a native document.
func (a *Adapter) WriteTree(_ context.Context, id string, fields []model.Field, opts schema.ExportOptions) ([]byte, error) {
	return Encode(Document{ID: id, Title: opts.Title, Fields: fields}, opts.Encoding)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func idFromLocation(location string) string {
	base := location
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
