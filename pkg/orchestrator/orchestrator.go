package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	internalLoader "github.com/integrixs/fieldtree/internal/loader"
	internalModel "github.com/integrixs/fieldtree/internal/model"
	internalParser "github.com/integrixs/fieldtree/internal/openapi/parser"
	internalWriter "github.com/integrixs/fieldtree/internal/openapi/writer"
	"github.com/integrixs/fieldtree/pkg/codec"
	"github.com/integrixs/fieldtree/pkg/jsonschema"
	"github.com/integrixs/fieldtree/pkg/model"
	pkgopenapi "github.com/integrixs/fieldtree/pkg/openapi"
	"github.com/integrixs/fieldtree/pkg/schema"
)

const defaultExportFormat = codec.FormatName

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the loader used for detection and by the default
// adapters.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithBuilder injects a custom structure → tree builder.
func WithBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithSerializer injects a custom tree → structure serializer.
func WithSerializer(serializer model.Serializer) Option {
	return func(o *Orchestrator) {
		o.serializer = serializer
	}
}

// WithAdapterRegistry replaces the registry. The default adapters are not
// registered into a supplied registry.
func WithAdapterRegistry(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultAdapter names the adapter used when detection finds nothing.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithTransformer registers a Transformer that runs after building and
// before decorators.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators applied to every loaded tree.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger overrides the logger; defaults to the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates loading schema documents into field trees and
// exporting trees back out. It applies sensible defaults (file/HTTP loader,
// openapi, jsonschema and native adapters) while remaining open to
// dependency injection for advanced callers.
type Orchestrator struct {
	loader          schema.Loader
	builder         model.Builder
	serializer      model.Serializer
	registry        *AdapterRegistry
	defaultAdapter  string
	transformer     Transformer
	decorators      []model.Decorator
	logger          logrus.FieldLogger
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a schema document and the structure to build from it.
type Request struct {
	// Source identifies where the document lives. Optional when Document is
	// supplied.
	Source schema.Source

	// Document bypasses the loader when the caller already holds the payload.
	Document *schema.Document

	// Format names the adapter; empty means detect.
	Format string

	// StructureID selects the structure to build. May be empty when the
	// document holds exactly one.
	StructureID string

	// DefaultStructureID names a document-root structure for formats that
	// have no name slot at the root.
	DefaultStructureID string
}

// Result is a loaded field tree.
type Result struct {
	Format      string
	StructureID string
	Title       string
	Location    string
	Fields      []model.Field
}

// Load resolves the adapter, reads the document and builds the field tree
// of the requested structure.
func (o *Orchestrator) Load(ctx context.Context, req Request) (Result, error) {
	if err := o.ready(ctx); err != nil {
		return Result{}, err
	}

	adapter, doc, err := o.resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}
	log := o.logger.WithFields(logrus.Fields{
		"format":   adapter.Name(),
		"location": doc.Location(),
	})

	result := Result{Format: adapter.Name(), Location: doc.Location()}

	if reader, ok := adapter.(TreeReader); ok {
		id, fields, err := reader.ReadTree(ctx, doc)
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: read tree: %w", err)
		}
		if req.StructureID != "" && req.StructureID != id {
			return Result{}, fmt.Errorf("orchestrator: structure %q not found (available: %s)", req.StructureID, id)
		}
		result.StructureID = id
		result.Fields = fields
	} else {
		ir, err := adapter.Normalize(ctx, doc, schema.NormalizeOptions{
			StructureID:        req.StructureID,
			DefaultStructureID: req.DefaultStructureID,
		})
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: normalize document: %w", err)
		}
		structure, err := pickStructure(ir, req.StructureID)
		if err != nil {
			return Result{}, err
		}
		fields, err := o.builder.Build(structure)
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: build field tree: %w", err)
		}
		result.StructureID = structure.ID
		result.Title = structure.Title
		result.Fields = fields
	}

	if result.Fields, err = o.applyTransformer(ctx, result.Fields); err != nil {
		return Result{}, err
	}
	if result.Fields, err = o.applyDecorators(result.Fields); err != nil {
		return Result{}, err
	}

	log.WithFields(logrus.Fields{
		"structure": result.StructureID,
		"fields":    model.Count(result.Fields),
	}).Debug("loaded field tree")
	return result, nil
}

// Structures lists the structures a document offers.
func (o *Orchestrator) Structures(ctx context.Context, req Request) ([]schema.StructureRef, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	adapter, doc, err := o.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if reader, ok := adapter.(TreeReader); ok {
		id, _, err := reader.ReadTree(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read tree: %w", err)
		}
		return []schema.StructureRef{{ID: id}}, nil
	}
	ir, err := adapter.Normalize(ctx, doc, schema.NormalizeOptions{DefaultStructureID: req.DefaultStructureID})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: normalize document: %w", err)
	}
	return ir.StructureRefs(), nil
}

// ExportRequest describes a field tree to write out.
type ExportRequest struct {
	// ID names the structure in the exported document.
	ID     string
	Fields []model.Field
	// Format names the target adapter; empty means the native format.
	Format  string
	Options schema.ExportOptions
}

// Export writes a field tree through the named format. Tree formats receive
// the tree verbatim; schema formats receive the serialized structure.
func (o *Orchestrator) Export(ctx context.Context, req ExportRequest) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, errors.New("orchestrator: export id is required")
	}
	format := strings.TrimSpace(req.Format)
	if format == "" {
		format = defaultExportFormat
	}
	adapter, err := o.registry.Get(format)
	if err != nil {
		return nil, err
	}
	log := o.logger.WithFields(logrus.Fields{"format": adapter.Name(), "structure": id})

	if writer, ok := adapter.(TreeWriter); ok {
		out, err := writer.WriteTree(ctx, id, req.Fields, req.Options)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: write tree: %w", err)
		}
		log.Debug("exported field tree")
		return out, nil
	}

	exporter, err := o.registry.Exporter(format)
	if err != nil {
		return nil, err
	}
	structure, err := o.serializer.Serialize(id, req.Fields)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: serialize field tree: %w", err)
	}
	if structure.Title == "" {
		structure.Title = req.Options.Title
	}
	ir := schema.NewSchemaIR()
	ir.Add(structure)
	out, err := exporter.Export(ctx, ir, req.Options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: export: %w", err)
	}
	log.Debug("exported field tree")
	return out, nil
}

// Formats lists the registered adapter names.
func (o *Orchestrator) Formats() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func pickStructure(ir schema.SchemaIR, id string) (schema.Structure, error) {
	if id != "" {
		structure, ok := ir.Structure(id)
		if !ok {
			return schema.Structure{}, fmt.Errorf("orchestrator: structure %q not found (available: %s)", id, formatStructureRefs(ir.StructureRefs()))
		}
		return structure, nil
	}
	if len(ir.Structures) != 1 {
		return schema.Structure{}, fmt.Errorf("orchestrator: structure id is required (available: %s)", formatStructureRefs(ir.StructureRefs()))
	}
	for _, structure := range ir.Structures {
		return structure, nil
	}
	return schema.Structure{}, errors.New("orchestrator: document holds no structures")
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) applyDecorators(fields []model.Field) ([]model.Field, error) {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		decorated, err := decorator.Decorate(fields)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: decorate field tree: %w", err)
		}
		fields = decorated
	}
	return fields, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, fields []model.Field) ([]model.Field, error) {
	if o.transformer == nil {
		return fields, nil
	}
	out, err := o.transformer.Transform(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: transform field tree: %w", err)
	}
	return out, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = internalLoader.New(schema.NewLoaderOptions())
	}
	if o.builder == nil {
		o.builder = internalModel.New(internalModel.Options{})
	}
	if o.serializer == nil {
		o.serializer = internalModel.NewSerializer(internalModel.Options{})
	}
	if o.registry == nil {
		o.registry = NewAdapterRegistry()
		adapters := []schema.FormatAdapter{
			pkgopenapi.NewAdapter(o.loader, internalParser.New(pkgopenapi.NewParserOptions()), internalWriter.New()),
			jsonschema.NewAdapter(o.loader),
			codec.NewAdapter(o.loader),
		}
		for _, adapter := range adapters {
			if err := o.registry.Register(adapter); err != nil {
				o.initialiseErr = fmt.Errorf("orchestrator: register default adapters: %w", err)
				break
			}
		}
	}

	o.defaultsApplied = true
}
