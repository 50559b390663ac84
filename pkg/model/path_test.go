package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/integrixs/fieldtree/pkg/model"
)

func TestParsePath(t *testing.T) {
	cases := map[string]model.Path{
		"0":       {0},
		"1.0.3":   {1, 0, 3},
		" 2/1 ":   {2, 1},
		"10.20.0": {10, 20, 0},
	}
	for raw, want := range cases {
		got, err := model.ParsePath(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("parse %q mismatch (-want +got):\n%s", raw, diff)
		}
	}

	for _, raw := range []string{"", "a", "1.-2", "1..x", "."} {
		if _, err := model.ParsePath(raw); !errors.Is(err, model.ErrInvalidPath) {
			t.Fatalf("parse %q: expected ErrInvalidPath, got %v", raw, err)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	path := model.Path{1, 2, 3}

	if path.String() != "1.2.3" {
		t.Fatalf("unexpected string %q", path.String())
	}
	if diff := cmp.Diff(model.Path{1, 2}, path.Parent()); diff != "" {
		t.Fatalf("parent mismatch (-want +got):\n%s", diff)
	}
	if path.Last() != 3 || path.Depth() != 2 {
		t.Fatalf("unexpected last/depth %d/%d", path.Last(), path.Depth())
	}
	if model.Path([]int{4}).Parent() != nil {
		t.Fatalf("root-level path must have no parent")
	}

	child := path.Parent().Child(9)
	if !child.Equal(model.Path{1, 2, 9}) {
		t.Fatalf("unexpected child %s", child)
	}
	if path[2] != 3 {
		t.Fatalf("Child must not write into the receiver's backing array")
	}
}

func TestResolve(t *testing.T) {
	tree := sampleTree()

	field, err := model.Resolve(tree, model.Path{1, 1, 1})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if field.Name != "city" {
		t.Fatalf("expected city, got %q", field.Name)
	}

	for _, path := range []model.Path{{3}, {0, 0}, {1, 2}, {1, 1, 1, 0}} {
		if _, err := model.Resolve(tree, path); !errors.Is(err, model.ErrPathNotFound) {
			t.Fatalf("resolve %s: expected ErrPathNotFound, got %v", path, err)
		}
		if model.Exists(tree, path) {
			t.Fatalf("%s must not exist", path)
		}
	}
	if _, err := model.Resolve(nil, model.Path{0}); !errors.Is(err, model.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound on empty tree, got %v", err)
	}
}
