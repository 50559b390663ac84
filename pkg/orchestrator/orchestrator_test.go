package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	logtest "github.com/sirupsen/logrus/hooks/test"

	internalLoader "github.com/integrixs/fieldtree/internal/loader"
	"github.com/integrixs/fieldtree/pkg/codec"
	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

const customerSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Customer",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "description": "Full <b>name</b>"},
    "emails": {"type": "array", "items": {"type": "string"}},
    "address": {
      "type": "object",
      "properties": {"street": {"type": "string"}, "city": {"type": "string"}}
    }
  }
}`

const ordersOpenAPI = `
openapi: 3.0.3
info: {title: Orders, version: 1.0.0}
paths: {}
components:
  schemas:
    Order:
      type: object
      properties:
        id: {type: string}
        total: {type: number}
    Line:
      type: object
      properties:
        sku: {type: string}
`

func document(t *testing.T, name, raw string) *schema.Document {
	t.Helper()
	doc := schema.MustNewDocument(schema.SourceFromFile(name), []byte(raw))
	return &doc
}

func names(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Name)
	}
	return out
}

func quiet() Option {
	logger, _ := logtest.NewNullLogger()
	return WithLogger(logger)
}

func TestOrchestrator_LoadDetectsJSONSchema(t *testing.T) {
	o := New(quiet())
	result, err := o.Load(context.Background(), Request{Document: document(t, "customer.json", customerSchema)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Format != "jsonschema" || result.StructureID != "Customer" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if diff := cmp.Diff([]string{"name", "emails", "address"}, names(result.Fields)); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if result.Fields[0].Description != "Full name" {
		t.Fatalf("description not sanitized: %q", result.Fields[0].Description)
	}
	if !result.Fields[1].MaxOccurs.IsUnbounded() || result.Fields[1].Type != model.FieldTypeArray {
		t.Fatalf("unexpected emails field: %+v", result.Fields[1])
	}
}

func TestOrchestrator_LoadOpenAPIRequiresStructure(t *testing.T) {
	o := New(quiet())
	_, err := o.Load(context.Background(), Request{Document: document(t, "orders.yaml", ordersOpenAPI)})
	if err == nil || !strings.Contains(err.Error(), "Line, Order") {
		t.Fatalf("expected structure listing error, got %v", err)
	}

	result, err := o.Load(context.Background(), Request{Document: document(t, "orders.yaml", ordersOpenAPI), StructureID: "Order"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "total"}, names(result.Fields)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_Structures(t *testing.T) {
	o := New(quiet())
	refs, err := o.Structures(context.Background(), Request{Document: document(t, "orders.yaml", ordersOpenAPI)})
	if err != nil {
		t.Fatalf("structures: %v", err)
	}
	if diff := cmp.Diff([]schema.StructureRef{{ID: "Line"}, {ID: "Order"}}, refs); diff != "" {
		t.Fatalf("structures mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_LoadFromSource(t *testing.T) {
	fsys := fstest.MapFS{"schemas/customer.json": {Data: []byte(customerSchema)}}
	loader := internalLoader.New(schema.NewLoaderOptions(schema.WithFileSystem(fsys)))
	o := New(quiet(), WithLoader(loader))

	result, err := o.Load(context.Background(), Request{Source: schema.SourceFromFS("schemas/customer.json")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Location != "schemas/customer.json" || len(result.Fields) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestOrchestrator_NativeRoundTrip(t *testing.T) {
	o := New(quiet())
	fields := []model.Field{
		{Name: "id", Type: model.FieldTypeString, MinOccurs: 1, MaxOccurs: 1, Required: true},
		{Name: "notes", Type: model.FieldTypeString, MaxOccurs: 3},
	}
	out, err := o.Export(context.Background(), ExportRequest{ID: "Ticket", Fields: fields, Options: schema.ExportOptions{Encoding: schema.EncodingYAML}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	result, err := o.Load(context.Background(), Request{Document: document(t, "ticket.yaml", string(out))})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Format != codec.FormatName || result.StructureID != "Ticket" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if diff := cmp.Diff(fields, result.Fields, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	_, err = o.Load(context.Background(), Request{Document: document(t, "ticket.yaml", string(out)), StructureID: "Other"})
	if err == nil {
		t.Fatalf("expected error for mismatched structure id")
	}
}

func TestOrchestrator_ExportSchemaFormats(t *testing.T) {
	o := New(quiet())
	loaded, err := o.Load(context.Background(), Request{Document: document(t, "customer.json", customerSchema)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, format := range []string{"openapi", "jsonschema"} {
		t.Run(format, func(t *testing.T) {
			out, err := o.Export(context.Background(), ExportRequest{ID: "Customer", Fields: loaded.Fields, Format: format})
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			again, err := o.Load(context.Background(), Request{Document: document(t, "out.json", string(out)), StructureID: "Customer"})
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if again.Format != format {
				t.Fatalf("detected %q, want %q", again.Format, format)
			}
			if diff := cmp.Diff(loaded.Fields, again.Fields, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrchestrator_ExportErrors(t *testing.T) {
	o := New(quiet())
	if _, err := o.Export(context.Background(), ExportRequest{Fields: nil}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := o.Export(context.Background(), ExportRequest{ID: "X", Format: "xml"}); err == nil {
		t.Fatalf("expected unknown format error")
	}
	_, err := o.Export(context.Background(), ExportRequest{ID: "X", Format: "openapi", Fields: []model.Field{{Name: ""}}})
	if err == nil || !strings.Contains(err.Error(), "serialize") {
		t.Fatalf("expected serialize error, got %v", err)
	}
}

type stubAdapter struct {
	name   string
	detect bool
}

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Detect(schema.Source, []byte) bool { return s.detect }

func (s stubAdapter) Load(context.Context, schema.Source) (schema.Document, error) {
	return schema.Document{}, errors.New("stub: load")
}
func (s stubAdapter) Normalize(context.Context, schema.Document, schema.NormalizeOptions) (schema.SchemaIR, error) {
	ir := schema.NewSchemaIR()
	structure := schema.Structure{ID: s.name, Schema: schema.Schema{Type: "object"}}
	structure.Schema.SetProperty("value", schema.Schema{Type: "integer"})
	ir.Add(structure)
	return ir, nil
}

func TestOrchestrator_Detection(t *testing.T) {
	registry := registryOf(t, stubAdapter{name: "a", detect: true}, stubAdapter{name: "b", detect: true})
	o := New(quiet(), WithAdapterRegistry(registry))

	_, err := o.Load(context.Background(), Request{Document: document(t, "x.txt", "anything")})
	if err == nil || !strings.Contains(err.Error(), "multiple adapters matched payload (a, b)") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}

	result, err := o.Load(context.Background(), Request{Document: document(t, "x.txt", "anything"), Format: "B"})
	if err != nil {
		t.Fatalf("load with format: %v", err)
	}
	if result.StructureID != "b" {
		t.Fatalf("expected adapter b, got %+v", result)
	}

	none := registryOf(t, stubAdapter{name: "quiet"})
	_, err = New(quiet(), WithAdapterRegistry(none)).Load(context.Background(), Request{Document: document(t, "x.txt", "anything")})
	if err == nil || !strings.Contains(err.Error(), "unable to detect") {
		t.Fatalf("expected detection error, got %v", err)
	}

	result, err = New(quiet(), WithAdapterRegistry(none), WithDefaultAdapter("quiet")).Load(context.Background(), Request{Document: document(t, "x.txt", "anything")})
	if err != nil || result.StructureID != "quiet" {
		t.Fatalf("expected default adapter, got %+v, %v", result, err)
	}
}

func TestOrchestrator_TransformerAndDecorators(t *testing.T) {
	var calls []string
	transformer := TransformerFunc(func(_ context.Context, fields []model.Field) ([]model.Field, error) {
		calls = append(calls, "transform")
		return fields, nil
	})
	decorator := model.DecoratorFunc(func(fields []model.Field) ([]model.Field, error) {
		calls = append(calls, "decorate")
		return model.AddRootField(fields), nil
	})
	o := New(quiet(), WithTransformer(transformer), WithDecorators(decorator))
	result, err := o.Load(context.Background(), Request{Document: document(t, "customer.json", customerSchema)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"transform", "decorate"}, calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	if len(result.Fields) != 4 {
		t.Fatalf("decorator output ignored: %d fields", len(result.Fields))
	}

	failing := model.DecoratorFunc(func([]model.Field) ([]model.Field, error) { return nil, errors.New("boom") })
	_, err = New(quiet(), WithDecorators(failing)).Load(context.Background(), Request{Document: document(t, "customer.json", customerSchema)})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestOrchestrator_ContextAndInputs(t *testing.T) {
	o := New(quiet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Load(ctx, Request{Document: document(t, "customer.json", customerSchema)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := o.Load(context.Background(), Request{}); err == nil {
		t.Fatalf("expected missing source error")
	}
	if diff := cmp.Diff([]string{"jsonschema", "native", "openapi"}, o.Formats()); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
}
