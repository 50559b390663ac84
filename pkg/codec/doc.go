// Package codec reads and writes the native field tree format: a document
// holding an ordered "fields" sequence, encoded as JSON or YAML.
package codec
