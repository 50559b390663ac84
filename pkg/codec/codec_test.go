package codec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/schema"
)

func sampleDocument() Document {
	return Document{
		ID:    "Order",
		Title: "Purchase order",
		Fields: []model.Field{
			{Name: "id", Type: model.FieldTypeString, Required: true, MinOccurs: 1, MaxOccurs: 1},
			{Name: "lines", Type: model.FieldTypeArray, IsComplexType: true, MaxOccurs: model.Unbounded, Children: []model.Field{
				{Name: "sku", Type: model.FieldTypeString, MaxOccurs: 1, Description: "stock keeping unit"},
			}},
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, encoding := range []schema.Encoding{schema.EncodingJSON, schema.EncodingYAML} {
		t.Run(string(encoding), func(t *testing.T) {
			raw, err := Encode(sampleDocument(), encoding)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !strings.Contains(string(raw), "unbounded") {
				t.Fatalf("expected unbounded marker in output:\n%s", raw)
			}
			got, err := Decode(raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(sampleDocument(), got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Defaults(t *testing.T) {
	got, err := Decode([]byte(`{"fields":[{"name":"a"},{"name":"b","type":"integer","maxOccurs":"*"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []model.Field{
		{Name: "a", Type: model.FieldTypeString, MaxOccurs: 1},
		{Name: "b", Type: model.FieldTypeInteger, MaxOccurs: model.Unbounded},
	}
	if diff := cmp.Diff(want, got.Fields, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_BareSequence(t *testing.T) {
	cases := map[string]string{
		"json": `[{"name":"a","maxOccurs":3}]`,
		"yaml": "- name: a\n  maxOccurs: 3\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Fields) != 1 || got.Fields[0].MaxOccurs != 3 {
				t.Fatalf("unexpected fields: %+v", got.Fields)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte("  ")); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := Decode([]byte(`{"fields": [`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
	if _, err := Encode(sampleDocument(), "toml"); !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestDecodeAs_DeclaredEncoding(t *testing.T) {
	got, err := DecodeAs([]byte(`{"id":"flow","fields":[{"name":"a"}]}`), schema.EncodingYAML)
	if err != nil {
		t.Fatalf("yaml accepts json input: %v", err)
	}
	if got.ID != "flow" || len(got.Fields) != 1 {
		t.Fatalf("unexpected document %+v", got)
	}

	if _, err := DecodeAs([]byte("fields:\n  - name: a\n"), schema.EncodingJSON); err == nil {
		t.Fatal("expected json decode error for yaml payload")
	}
	if _, err := DecodeAs([]byte("fields: []"), "toml"); !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestEncodingForPath(t *testing.T) {
	cases := map[string]schema.Encoding{
		"tree.json":    schema.EncodingJSON,
		"tree.YAML":    schema.EncodingYAML,
		"dir/tree.yml": schema.EncodingYAML,
		"no-extension": schema.EncodingJSON,
	}
	for path, want := range cases {
		if got := EncodingForPath(path); got != want {
			t.Errorf("EncodingForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestAdapter_Detect(t *testing.T) {
	adapter := NewAdapter(nil)
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"native json", `{"fields":[]}`, true},
		{"native yaml", "id: x\nfields:\n  - name: a\n", true},
		{"bare sequence", `[{"name":"a"}]`, true},
		{"openapi", `{"openapi":"3.0.3","fields":[]}`, false},
		{"json schema", `{"$schema":"https://json-schema.org/draft/2020-12/schema","properties":{}}`, false},
		{"scalar", `hello`, false},
		{"empty", ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.Detect(nil, []byte(tc.raw)); got != tc.want {
				t.Fatalf("Detect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdapter_ReadWriteTree(t *testing.T) {
	adapter := NewAdapter(nil)
	raw, err := adapter.WriteTree(context.Background(), "", sampleDocument().Fields, schema.ExportOptions{Encoding: schema.EncodingYAML})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	doc := schema.MustNewDocument(schema.SourceFromFile("/tmp/orders.yaml"), raw)
	id, fields, err := adapter.ReadTree(context.Background(), doc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if id != "orders" {
		t.Fatalf("expected id from location, got %q", id)
	}
	if diff := cmp.Diff(sampleDocument().Fields, fields, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if _, err := adapter.Normalize(context.Background(), doc, schema.NormalizeOptions{}); !errors.Is(err, ErrTreeFormat) {
		t.Fatalf("expected ErrTreeFormat, got %v", err)
	}
}
