package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/integrixs/fieldtree/pkg/model"
)

func TestWalk_PreOrder(t *testing.T) {
	var visited []string
	err := model.Walk(sampleTree(), func(path model.Path, field model.Field) error {
		visited = append(visited, path.String()+"="+field.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"0=id", "1=customer", "1.0=name", "1.1=address", "1.1.0=street", "1.1.1=city", "2=tags"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_SkipChildrenAndStop(t *testing.T) {
	var visited []string
	_ = model.Walk(sampleTree(), func(path model.Path, field model.Field) error {
		visited = append(visited, field.Name)
		if field.Name == "address" {
			return model.SkipChildren
		}
		return nil
	})
	if diff := cmp.Diff([]string{"id", "customer", "name", "address", "tags"}, visited); diff != "" {
		t.Fatalf("skip mismatch (-want +got):\n%s", diff)
	}

	stop := errors.New("stop")
	err := model.Walk(sampleTree(), func(path model.Path, field model.Field) error {
		if field.Name == "street" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestCountAndFindByName(t *testing.T) {
	tree := sampleTree()
	if got := model.Count(tree); got != 7 {
		t.Fatalf("expected 7 fields, got %d", got)
	}

	path, ok := model.FindByName(tree, "customer.address.city")
	if !ok || !path.Equal(model.Path{1, 1, 1}) {
		t.Fatalf("expected 1.1.1, got %v (found=%v)", path, ok)
	}
	if _, ok := model.FindByName(tree, "customer.city"); ok {
		t.Fatalf("unexpected match for customer.city")
	}
}

func TestFindByName_DottedNames(t *testing.T) {
	tree := []model.Field{
		{Name: "a.b", Type: model.FieldTypeString, MaxOccurs: 1},
		{Name: "a", Type: model.FieldTypeObject, IsComplexType: true, MaxOccurs: 1, Children: []model.Field{
			{Name: "b", Type: model.FieldTypeString, MaxOccurs: 1},
			{Name: `c\`, Type: model.FieldTypeString, MaxOccurs: 1},
		}},
	}

	tests := []struct {
		name string
		want model.Path
	}{
		{name: "a.b", want: model.Path{1, 0}},
		{name: `a\.b`, want: model.Path{0}},
		{name: model.QualifiedName("a.b"), want: model.Path{0}},
		{name: model.QualifiedName("a", "b"), want: model.Path{1, 0}},
		{name: model.QualifiedName("a", `c\`), want: model.Path{1, 1}},
	}
	for _, tt := range tests {
		path, ok := model.FindByName(tree, tt.name)
		if !ok || !path.Equal(tt.want) {
			t.Errorf("FindByName(%q) = %v (found=%v), want %v", tt.name, path, ok, tt.want)
		}
	}
	if got := model.QualifiedName("a", `c\`); got != `a.c\\` {
		t.Fatalf("unexpected qualified name %q", got)
	}
	if _, ok := model.FindByName(tree, `a.c\`); ok {
		t.Fatal("an unescaped backslash must not match")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tree := sampleTree()
	cloned := model.Clone(tree)
	cloned[1].Children[1].Children[0].Name = "changed"

	if tree[1].Children[1].Children[0].Name != "street" {
		t.Fatalf("clone shares children with the source")
	}
	if model.Clone(nil) != nil {
		t.Fatalf("clone of nil must stay nil")
	}
}
