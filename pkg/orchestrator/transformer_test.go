package orchestrator

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/integrixs/fieldtree/pkg/model"
)

func presetTree() []model.Field {
	return []model.Field{
		{Name: "customer", Type: model.FieldTypeObject, IsComplexType: true, MaxOccurs: 1, Children: []model.Field{
			{Name: "name", Type: model.FieldTypeString, MaxOccurs: 1},
			{Name: "phone", Type: model.FieldTypeString, MaxOccurs: 1},
		}},
	}
}

func TestPresetTransformer(t *testing.T) {
	preset, err := NewPresetTransformer([]byte(`
fields:
  customer.name:
    rename: fullName
    required: true
  customer.phone:
    maxOccurs: unbounded
    description: Contact numbers
`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	input := presetTree()
	out, err := preset.Transform(context.Background(), input)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	name := out[0].Children[0]
	if name.Name != "fullName" || !name.Required {
		t.Fatalf("unexpected name field: %+v", name)
	}
	phone := out[0].Children[1]
	if phone.Type != model.FieldTypeArray || !phone.MaxOccurs.IsUnbounded() || phone.Description != "Contact numbers" {
		t.Fatalf("unexpected phone field: %+v", phone)
	}
	if input[0].Children[0].Name != "name" {
		t.Fatalf("input tree mutated")
	}
}

func TestPresetTransformer_EscapedDots(t *testing.T) {
	tree := []model.Field{
		{Name: "geo.lat", Type: model.FieldTypeString, MaxOccurs: 1},
		{Name: "geo", Type: model.FieldTypeObject, IsComplexType: true, MaxOccurs: 1, Children: []model.Field{
			{Name: "lat", Type: model.FieldTypeString, MaxOccurs: 1},
		}},
	}
	preset, err := NewPresetTransformer([]byte(`
fields:
  'geo\.lat':
    type: number
  geo.lat:
    description: Nested latitude
`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	out, err := preset.Transform(context.Background(), tree)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0].Type != model.FieldTypeNumber || out[0].Description != "" {
		t.Fatalf("escaped key must patch the dotted field only: %+v", out[0])
	}
	nested := out[1].Children[0]
	if nested.Type != model.FieldTypeString || nested.Description != "Nested latitude" {
		t.Fatalf("plain key must patch the nested field: %+v", nested)
	}
}

func TestPresetTransformer_JSONAndFS(t *testing.T) {
	fsys := fstest.MapFS{"preset.json": {Data: []byte(`{"fields":{"customer":{"description":"Buyer"}}}`)}}
	preset, err := NewPresetTransformerFromFS(fsys, "preset.json")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	out, err := preset.Transform(context.Background(), presetTree())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0].Description != "Buyer" {
		t.Fatalf("description not applied: %+v", out[0])
	}
}

func TestPresetTransformer_Errors(t *testing.T) {
	if _, err := NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := NewPresetTransformerFromFS(nil, "x"); err == nil {
		t.Fatalf("expected nil fs error")
	}
	preset, err := NewPresetTransformer([]byte("fields:\n  customer.email:\n    required: true\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	_, err = preset.Transform(context.Background(), presetTree())
	if err == nil || !strings.Contains(err.Error(), `"customer.email" not found`) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
