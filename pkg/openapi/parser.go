package openapi

import (
	"context"

	"github.com/integrixs/fieldtree/pkg/schema"
)

// Parser extracts structures from an OpenAPI document.
type Parser interface {
	Structures(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error)
}

// ParserOptions exposes toggles for parsing.
type ParserOptions struct {
	// ValidateDocument runs kin-openapi validation before extraction.
	ValidateDocument bool

	// IncludeRequestBodies adds inline request body schemas as structures
	// named "<operationId>Request".
	IncludeRequestBodies bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ValidateDocument = enabled
	}
}

// WithRequestBodies toggles extraction of inline request bodies.
func WithRequestBodies(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.IncludeRequestBodies = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ValidateDocument:     false,
		IncludeRequestBodies: true,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// Writer renders structures as an OpenAPI document.
type Writer interface {
	Write(ctx context.Context, ir schema.SchemaIR, opts schema.ExportOptions) ([]byte, error)
}

// Construction helpers live in the top-level fieldtree package to avoid import cycles.
