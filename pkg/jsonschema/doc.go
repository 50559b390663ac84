// Package jsonschema adapts JSON Schema documents (JSON or YAML) to the
// schema IR and writes structures back as JSON Schema. Property order is
// preserved in both directions.
package jsonschema
