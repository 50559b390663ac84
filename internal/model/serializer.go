package model

import (
	"errors"
	"fmt"

	pkgmodel "github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

var (
	// ErrUnnamedField reports a field that cannot become a property.
	ErrUnnamedField = errors.New("model serializer: field has no name")
	// ErrDuplicateField reports two siblings sharing a name.
	ErrDuplicateField = errors.New("model serializer: duplicate sibling name")
)

// Serializer converts field trees back into structures.
type Serializer struct {
	opts Options
}

var _ pkgmodel.Serializer = (*Serializer)(nil)

// NewSerializer creates a Serializer with the supplied options.
func NewSerializer(options Options) *Serializer {
	return &Serializer{opts: options.withDefaults()}
}

// Serialize wraps the root sequence in an object schema named id.
func (s *Serializer) Serialize(id string, fields []pkgmodel.Field) (schema.Structure, error) {
	root, err := s.objectSchema(fields, nil)
	if err != nil {
		return schema.Structure{}, err
	}
	return schema.Structure{ID: id, Schema: root}, nil
}

func (s *Serializer) objectSchema(fields []pkgmodel.Field, parent pkgmodel.Path) (schema.Schema, error) {
	if len(parent) >= s.opts.MaxDepth {
		return schema.Schema{}, ErrMaxDepth
	}
	out := schema.Schema{Type: "object"}
	for i, field := range fields {
		path := parent.Child(i)
		if field.Name == "" {
			return schema.Schema{}, fmt.Errorf("%w at %s", ErrUnnamedField, path)
		}
		if _, exists := out.Properties[field.Name]; exists {
			return schema.Schema{}, fmt.Errorf("%w %q at %s", ErrDuplicateField, field.Name, path)
		}
		property, err := s.fieldSchema(field, path)
		if err != nil {
			return schema.Schema{}, err
		}
		out.SetProperty(field.Name, property)
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out, nil
}

func (s *Serializer) fieldSchema(field pkgmodel.Field, path pkgmodel.Path) (schema.Schema, error) {
	switch {
	case field.Type == pkgmodel.FieldTypeArray || field.MaxOccurs.Many():
		out := schema.Schema{Type: "array", Description: field.Description}
		if field.MinOccurs > 0 {
			minItems := field.MinOccurs
			out.MinItems = &minItems
		}
		if !field.MaxOccurs.IsUnbounded() {
			maxItems := int(field.MaxOccurs)
			out.MaxItems = &maxItems
		}
		items, err := s.itemSchema(field, path)
		if err != nil {
			return schema.Schema{}, err
		}
		out.Items = &items
		if items.Type != "object" && items.Type != "array" {
			out.Extensions = map[string]any{schema.ExtensionItemType: items.Type}
		}
		return out, nil
	case field.Type == pkgmodel.FieldTypeObject || field.IsComplexType || field.HasChildren():
		out, err := s.objectSchema(field.Children, path)
		if err != nil {
			return schema.Schema{}, err
		}
		out.Description = field.Description
		return out, nil
	default:
		kind := field.Type
		if kind == "" {
			kind = pkgmodel.FieldTypeString
		}
		return schema.Schema{Type: string(kind), Description: field.Description}, nil
	}
}

// itemSchema mirrors the Builder. A single child named <name>Item is a nested
// array item, or the primitive item type when the array is not complex. Other
// children are the item object's properties.
func (s *Serializer) itemSchema(field pkgmodel.Field, path pkgmodel.Path) (schema.Schema, error) {
	if len(field.Children) == 1 && field.Children[0].Name == field.Name+"Item" {
		only := field.Children[0]
		switch {
		case only.Type == pkgmodel.FieldTypeArray || only.MaxOccurs.Many():
			return s.fieldSchema(only, path.Child(0))
		case !field.IsComplexType && !only.IsComplexType && !only.HasChildren() && !only.Type.Composite():
			return s.fieldSchema(only, path.Child(0))
		}
	}
	if field.HasChildren() || field.IsComplexType {
		return s.objectSchema(field.Children, path)
	}
	return schema.Schema{Type: string(pkgmodel.FieldTypeString)}, nil
}
