package schema

import (
	"bytes"
	"errors"
)

// Document wraps the raw payload, its origin and the encoding the origin
// declared for it.
type Document struct {
	source   Source
	raw      []byte
	encoding Encoding
}

// NewDocument validates the inputs and declares the encoding the source
// location implies, if any.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone, encoding: EncodingHint(src.Location())}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// WithEncoding returns a copy declaring enc, e.g. from an HTTP Content-Type.
// A blank enc keeps the current declaration.
func (d Document) WithEncoding(enc Encoding) Document {
	if enc != "" {
		d.encoding = enc
	}
	return d
}

// Encoding returns the declared encoding. Without one it sniffs the payload.
func (d Document) Encoding() Encoding {
	if d.encoding != "" {
		return d.encoding
	}
	return DetectEncoding(d.raw)
}

// DetectEncoding reports EncodingJSON for payloads starting with '{' or '['
// and EncodingYAML otherwise.
func DetectEncoding(raw []byte) Encoding {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return EncodingJSON
	}
	return EncodingYAML
}
