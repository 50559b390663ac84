package model

import "github.com/integrixs/fieldtree/pkg/schema"

// Builder converts a normalized schema structure into a root sequence.
type Builder interface {
	Build(structure schema.Structure) ([]Field, error)
}

// Serializer converts a root sequence back into a schema structure that
// format exporters can write.
type Serializer interface {
	Serialize(id string, fields []Field) (schema.Structure, error)
}
