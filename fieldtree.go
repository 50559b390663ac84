// Package fieldtree is the entry point for loading, editing and exporting
// hierarchical field trees. It wires the internal implementations behind the
// public interfaces of the pkg/ packages.
package fieldtree

import (
	"fmt"

	internalLoader "github.com/integrixs/fieldtree/internal/loader"
	internalModel "github.com/integrixs/fieldtree/internal/model"
	internalParser "github.com/integrixs/fieldtree/internal/openapi/parser"
	internalWriter "github.com/integrixs/fieldtree/internal/openapi/writer"
	"github.com/integrixs/fieldtree/pkg/editor"
	"github.com/integrixs/fieldtree/pkg/model"
	pkgopenapi "github.com/integrixs/fieldtree/pkg/openapi"
	"github.com/integrixs/fieldtree/pkg/orchestrator"
	"github.com/integrixs/fieldtree/pkg/render"
	"github.com/integrixs/fieldtree/pkg/render/outline"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// Field aliases model.Field for callers that only import the root package.
type Field = model.Field

// Path aliases model.Path.
type Path = model.Path

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalLoader.New(schema.NewLoaderOptions(options...))
}

// NewParser constructs an OpenAPI parser backed by kin-openapi.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}

// NewWriter constructs the OpenAPI 3 document writer.
func NewWriter() pkgopenapi.Writer {
	return internalWriter.New()
}

// BuilderOptions aliases the builder configuration (description sanitizer,
// depth limit).
type BuilderOptions = internalModel.Options

// NewBuilder constructs the IR to field tree builder.
func NewBuilder(options BuilderOptions) model.Builder {
	return internalModel.New(options)
}

// NewSerializer constructs the field tree to IR serializer.
func NewSerializer(options BuilderOptions) model.Serializer {
	return internalModel.NewSerializer(options)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewSession starts an editing session over fields.
func NewSession(fields []Field, options ...editor.Option) *editor.Session {
	return editor.New(append([]editor.Option{editor.WithFields(fields)}, options...)...)
}

// NewRenderers returns a registry holding the outline and markdown renderers.
func NewRenderers() (*render.Registry, error) {
	registry := render.NewRegistry()
	text, err := outline.New()
	if err != nil {
		return nil, fmt.Errorf("fieldtree: outline renderer: %w", err)
	}
	markdown, err := outline.NewMarkdown()
	if err != nil {
		return nil, fmt.Errorf("fieldtree: markdown renderer: %w", err)
	}
	for _, renderer := range []render.Renderer{text, markdown} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
