package model

// FieldType tags how a field value is represented and rendered.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

var knownFieldTypes = []FieldType{
	FieldTypeString,
	FieldTypeInteger,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeObject,
	FieldTypeArray,
}

// FieldTypes lists the built-in type tags in display order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), knownFieldTypes...)
}

// Known reports whether t is one of the built-in tags. Unknown tags are still
// carried through every operation unchanged.
func (t FieldType) Known() bool {
	for _, candidate := range knownFieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Composite reports whether the tag describes a container (object or array).
func (t FieldType) Composite() bool {
	return t == FieldTypeObject || t == FieldTypeArray
}

// Field is a single node of the schema tree. Children are owned exclusively by
// their parent; no two parents ever share a child slot.
type Field struct {
	Name          string    `json:"name" yaml:"name"`
	Type          FieldType `json:"type" yaml:"type"`
	Required      bool      `json:"required" yaml:"required"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	IsComplexType bool      `json:"isComplexType" yaml:"isComplexType"`
	MinOccurs     int       `json:"minOccurs" yaml:"minOccurs"`
	MaxOccurs     Occurs    `json:"maxOccurs" yaml:"maxOccurs"`
	Children      []Field   `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewField returns the default field appended by the add operations.
func NewField() Field {
	return Field{
		Name:      "",
		Type:      FieldTypeString,
		Required:  false,
		MinOccurs: 0,
		MaxOccurs: 1,
		Children:  []Field{},
	}
}

// HasChildren reports whether the field owns at least one child.
func (f Field) HasChildren() bool {
	return len(f.Children) > 0
}

// Clone returns a deep copy of the field and its subtree.
func (f Field) Clone() Field {
	cloned := f
	if f.Children != nil {
		cloned.Children = Clone(f.Children)
	}
	return cloned
}

// Clone deep copies a root sequence. A nil input stays nil and an empty slice
// stays empty so callers comparing trees structurally see no difference.
func Clone(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}
