package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchemaPropertyNames(t *testing.T) {
	s := Schema{}
	s.SetProperty("zeta", Schema{Type: "string"})
	s.SetProperty("alpha", Schema{Type: "integer"})
	s.SetProperty("zeta", Schema{Type: "boolean"})
	s.Properties["beta"] = Schema{}
	s.Properties["aardvark"] = Schema{}
	s.PropertyOrder = append(s.PropertyOrder, "ghost", "alpha")

	want := []string{"zeta", "alpha", "aardvark", "beta"}
	if diff := cmp.Diff(want, s.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}
	if s.Properties["zeta"].Type != "boolean" {
		t.Fatalf("expected SetProperty to replace zeta, got %q", s.Properties["zeta"].Type)
	}
	if names := (Schema{}).PropertyNames(); names != nil {
		t.Fatalf("expected nil names for empty schema, got %v", names)
	}
}

func TestSchemaIsRequired(t *testing.T) {
	s := Schema{Required: []string{"id"}}
	if !s.IsRequired("id") || s.IsRequired("name") {
		t.Fatalf("unexpected IsRequired results for %v", s.Required)
	}
}

func TestSchemaIRStructureRefs(t *testing.T) {
	ir := NewSchemaIR()
	ir.Add(Structure{ID: "Order", Title: "Order"})
	ir.Add(Structure{ID: "Line", Title: "Order line", Description: "One line"})

	want := []StructureRef{
		{ID: "Line", Title: "Order line", Description: "One line"},
		{ID: "Order", Title: "Order"},
	}
	if diff := cmp.Diff(want, ir.StructureRefs()); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
	if _, ok := ir.Structure("Missing"); ok {
		t.Fatal("expected missing structure lookup to fail")
	}
	if refs := (SchemaIR{}).StructureRefs(); refs != nil {
		t.Fatalf("expected nil refs, got %v", refs)
	}
}

func TestDetectEncoding(t *testing.T) {
	tests := map[string]Encoding{
		`{"a":1}`:          EncodingJSON,
		"  \n[1, 2]":       EncodingJSON,
		"openapi: 3.0.3\n": EncodingYAML,
		"":                 EncodingYAML,
	}
	for raw, want := range tests {
		if got := DetectEncoding([]byte(raw)); got != want {
			t.Errorf("DetectEncoding(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		raw      string
		kind     SourceKind
		location string
	}{
		{raw: "schemas/./order.json", kind: SourceKindFile, location: "schemas/order.json"},
		{raw: " https://example.com/order.json ", kind: SourceKindURL, location: "https://example.com/order.json"},
		{raw: "http://example.com/a.yaml", kind: SourceKindURL, location: "http://example.com/a.yaml"},
		{raw: "file:///tmp/schemas/order.yaml", kind: SourceKindFile, location: "/tmp/schemas/order.yaml"},
		{raw: "file://localhost/tmp/a.json", kind: SourceKindFile, location: "/tmp/a.json"},
	}
	for _, tt := range tests {
		src := ParseSource(tt.raw)
		if src == nil {
			t.Fatalf("ParseSource(%q) returned nil", tt.raw)
		}
		if src.Kind() != tt.kind || src.Location() != tt.location {
			t.Errorf("ParseSource(%q) = %s %q, want %s %q", tt.raw, src.Kind(), src.Location(), tt.kind, tt.location)
		}
	}
	for _, raw := range []string{"   ", "file://remote-host/a.json", "file://"} {
		if src := ParseSource(raw); src != nil {
			t.Fatalf("expected nil source for %q, got %v", raw, src)
		}
	}
}

func TestEncodingHint(t *testing.T) {
	tests := map[string]Encoding{
		"order.json":                            EncodingJSON,
		"schemas/order.YML":                     EncodingYAML,
		"https://example.com/api.yaml?ref=main": EncodingYAML,
		"https://example.com/schema":            "",
		"notes.txt":                             "",
	}
	for location, want := range tests {
		if got := EncodingHint(location); got != want {
			t.Errorf("EncodingHint(%q) = %q, want %q", location, got, want)
		}
	}
}

func TestDocument_DeclaredEncoding(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("order.yaml"), []byte(`{"type":"object"}`))
	if doc.Encoding() != EncodingYAML {
		t.Fatalf("extension should declare yaml, got %q", doc.Encoding())
	}

	sniffed := MustNewDocument(SourceFromURL("https://example.com/schema"), []byte(`{"type":"object"}`))
	if sniffed.Encoding() != EncodingJSON {
		t.Fatalf("expected sniffed json, got %q", sniffed.Encoding())
	}
	if got := sniffed.WithEncoding(EncodingYAML).Encoding(); got != EncodingYAML {
		t.Fatalf("WithEncoding ignored: %q", got)
	}
	if got := doc.WithEncoding("").Encoding(); got != EncodingYAML {
		t.Fatalf("blank WithEncoding must keep the declaration, got %q", got)
	}
}

func TestNewDocument(t *testing.T) {
	if _, err := NewDocument(nil, []byte("{}")); err == nil {
		t.Fatal("expected error for nil source")
	}
	if _, err := NewDocument(SourceFromFile("a.json"), []byte("  ")); err == nil {
		t.Fatal("expected error for blank payload")
	}

	raw := []byte(`{"type":"object"}`)
	doc, err := NewDocument(SourceFromFS("a.json"), raw)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	raw[0] = 'x'
	if string(doc.Raw()) != `{"type":"object"}` {
		t.Fatalf("document should own its payload, got %q", doc.Raw())
	}
	if doc.Location() != "a.json" || doc.Encoding() != EncodingJSON {
		t.Fatalf("unexpected document metadata: %q %q", doc.Location(), doc.Encoding())
	}
}
