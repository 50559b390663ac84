package model

import (
	"errors"
	"fmt"
	"strings"

	pkgmodel "github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// ErrMaxDepth reports a schema nested deeper than Options.MaxDepth.
var ErrMaxDepth = errors.New("model builder: maximum nesting depth exceeded")

// Builder converts normalized structures into field trees.
type Builder struct {
	opts Options
}

var _ pkgmodel.Builder = (*Builder)(nil)

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	return &Builder{opts: options.withDefaults()}
}

// Build transforms a structure into its root sequence. Object roots yield one
// field per property; any other root yields a single field named after the
// structure.
func (b *Builder) Build(structure schema.Structure) ([]pkgmodel.Field, error) {
	root := structure.Schema
	if kindOf(root) == kindObject {
		return b.fieldsFromProperties(root, 1)
	}
	if structure.ID == "" {
		return nil, fmt.Errorf("model builder: structure without id has a non-object root")
	}
	field, err := b.fieldFromSchema(structure.ID, root, true, 1)
	if err != nil {
		return nil, err
	}
	return []pkgmodel.Field{field}, nil
}

type schemaKind int

const (
	kindScalar schemaKind = iota
	kindObject
	kindArray
	kindRef
)

func kindOf(s schema.Schema) schemaKind {
	switch {
	case s.Ref != "" && s.Type == "" && len(s.Properties) == 0:
		return kindRef
	case s.Type == "object":
		return kindObject
	case s.Type == "array":
		return kindArray
	case s.Type == "" && len(s.Properties) > 0:
		return kindObject
	case s.Type == "" && s.Items != nil:
		return kindArray
	default:
		return kindScalar
	}
}

func (b *Builder) fieldsFromProperties(s schema.Schema, depth int) ([]pkgmodel.Field, error) {
	if depth > b.opts.MaxDepth {
		return nil, ErrMaxDepth
	}
	names := s.PropertyNames()
	fields := make([]pkgmodel.Field, 0, len(names))
	for _, name := range names {
		field, err := b.fieldFromSchema(name, s.Properties[name], s.IsRequired(name), depth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (b *Builder) fieldFromSchema(name string, s schema.Schema, required bool, depth int) (pkgmodel.Field, error) {
	field := pkgmodel.Field{
		Name:        name,
		Required:    required,
		Description: b.opts.Sanitize(s.Description),
		MinOccurs:   requiredOccurs(required),
		MaxOccurs:   1,
		Children:    []pkgmodel.Field{},
	}

	switch kindOf(s) {
	case kindRef:
		// Unresolved reference: keep the slot as an empty complex node.
		field.Type = pkgmodel.FieldTypeObject
		field.IsComplexType = true
	case kindObject:
		children, err := b.fieldsFromProperties(s, depth+1)
		if err != nil {
			return pkgmodel.Field{}, err
		}
		field.Type = pkgmodel.FieldTypeObject
		field.IsComplexType = true
		field.Children = children
	case kindArray:
		field.Type = pkgmodel.FieldTypeArray
		field.MaxOccurs = pkgmodel.Unbounded
		if s.MinItems != nil {
			field.MinOccurs = *s.MinItems
		}
		if s.MaxItems != nil {
			field.MaxOccurs = pkgmodel.Occurs(*s.MaxItems)
		}
		if s.Items == nil {
			if itemType := extensionItemType(s); itemType != "" {
				field.Children = b.scalarItem(name, schema.Schema{Type: itemType})
			}
			break
		}
		items := *s.Items
		switch kindOf(items) {
		case kindScalar:
			field.Children = b.scalarItem(name, items)
		case kindObject:
			children, err := b.fieldsFromProperties(items, depth+1)
			if err != nil {
				return pkgmodel.Field{}, err
			}
			field.IsComplexType = true
			field.Children = children
		case kindArray, kindRef:
			if depth+1 > b.opts.MaxDepth {
				return pkgmodel.Field{}, ErrMaxDepth
			}
			item, err := b.fieldFromSchema(name+"Item", items, true, depth+1)
			if err != nil {
				return pkgmodel.Field{}, err
			}
			field.IsComplexType = true
			field.Children = []pkgmodel.Field{item}
		}
	default:
		field.Type = scalarType(s.Type)
	}
	return field, nil
}

// scalarItem keeps a non-string primitive item type as a single <name>Item
// child. String items leave the array childless.
func (b *Builder) scalarItem(name string, items schema.Schema) []pkgmodel.Field {
	itemType := scalarType(items.Type)
	if itemType == pkgmodel.FieldTypeString {
		return []pkgmodel.Field{}
	}
	return []pkgmodel.Field{{
		Name:        name + "Item",
		Type:        itemType,
		Required:    true,
		Description: b.opts.Sanitize(items.Description),
		MinOccurs:   1,
		MaxOccurs:   1,
		Children:    []pkgmodel.Field{},
	}}
}

func extensionItemType(s schema.Schema) string {
	value, _ := s.Extensions[schema.ExtensionItemType].(string)
	return strings.TrimSpace(value)
}

func requiredOccurs(required bool) int {
	if required {
		return 1
	}
	return 0
}

func scalarType(schemaType string) pkgmodel.FieldType {
	switch schemaType {
	case "integer":
		return pkgmodel.FieldTypeInteger
	case "number":
		return pkgmodel.FieldTypeNumber
	case "boolean":
		return pkgmodel.FieldTypeBoolean
	default:
		return pkgmodel.FieldTypeString
	}
}
