package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// FormatName is the registry name of the native format.
const FormatName = "native"

var (
	// ErrEmptyDocument reports blank input.
	ErrEmptyDocument = errors.New("codec: document is empty")
	// ErrUnknownEncoding reports an encoding other than json or yaml.
	ErrUnknownEncoding = errors.New("codec: unknown encoding")
)

// Document is the native representation of a field tree.
type Document struct {
	ID     string        `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string        `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []model.Field `json:"fields" yaml:"fields"`
}

// wireField mirrors model.Field with optional cardinality so missing values
// fall back to the model defaults instead of zero.
type wireField struct {
	Name          string          `json:"name" yaml:"name"`
	Type          model.FieldType `json:"type" yaml:"type"`
	Required      bool            `json:"required" yaml:"required"`
	Description   string          `json:"description" yaml:"description"`
	IsComplexType bool            `json:"isComplexType" yaml:"isComplexType"`
	MinOccurs     *int            `json:"minOccurs" yaml:"minOccurs"`
	MaxOccurs     *model.Occurs   `json:"maxOccurs" yaml:"maxOccurs"`
	Children      []wireField     `json:"children" yaml:"children"`
}

type wireDocument struct {
	ID     string      `json:"id" yaml:"id"`
	Title  string      `json:"title" yaml:"title"`
	Fields []wireField `json:"fields" yaml:"fields"`
}

func (w wireField) field() model.Field {
	out := model.NewField()
	out.Name = w.Name
	if w.Type != "" {
		out.Type = w.Type
	}
	out.Required = w.Required
	out.Description = w.Description
	out.IsComplexType = w.IsComplexType
	if w.MinOccurs != nil {
		out.MinOccurs = *w.MinOccurs
	}
	if w.MaxOccurs != nil {
		out.MaxOccurs = *w.MaxOccurs
	}
	out.Children = fieldsFromWire(w.Children)
	return out
}

func fieldsFromWire(in []wireField) []model.Field {
	out := make([]model.Field, 0, len(in))
	for _, w := range in {
		out = append(out, w.field())
	}
	return out
}

// Encode writes doc using the requested encoding. An empty encoding means JSON.
func Encode(doc Document, encoding schema.Encoding) ([]byte, error) {
	if doc.Fields == nil {
		doc.Fields = []model.Field{}
	}
	switch encoding {
	case "", schema.EncodingJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: encode json: %w", err)
		}
		return append(out, '\n'), nil
	case schema.EncodingYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoding, encoding)
	}
}

// Decode reads a native document, sniffing JSON or YAML from the payload. A
// bare top-level sequence is accepted as the field list of an anonymous
// document.
func Decode(raw []byte) (Document, error) {
	return DecodeAs(raw, "")
}

// DecodeAs reads a native document in the given encoding; a blank encoding
// sniffs the payload. YAML decoding accepts JSON input.
func DecodeAs(raw []byte, encoding schema.Encoding) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Document{}, ErrEmptyDocument
	}
	if encoding == "" {
		encoding = schema.DetectEncoding(trimmed)
	}

	var wire wireDocument
	switch encoding {
	case schema.EncodingJSON:
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &wire.Fields); err != nil {
				return Document{}, fmt.Errorf("codec: decode json: %w", err)
			}
			break
		}
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return Document{}, fmt.Errorf("codec: decode json: %w", err)
		}
	case schema.EncodingYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return Document{}, fmt.Errorf("codec: decode yaml: %w", err)
		}
		root := &node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		var err error
		if root.Kind == yaml.SequenceNode {
			err = root.Decode(&wire.Fields)
		} else {
			err = root.Decode(&wire)
		}
		if err != nil {
			return Document{}, fmt.Errorf("codec: decode yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w %q", ErrUnknownEncoding, encoding)
	}

	return Document{
		ID:     wire.ID,
		Title:  wire.Title,
		Fields: fieldsFromWire(wire.Fields),
	}, nil
}

// EncodingForPath picks YAML for .yaml/.yml paths and JSON otherwise.
func EncodingForPath(path string) schema.Encoding {
	if schema.EncodingHint(path) == schema.EncodingYAML {
		return schema.EncodingYAML
	}
	return schema.EncodingJSON
}
