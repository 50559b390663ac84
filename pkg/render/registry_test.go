package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/render"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, []model.Field, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	for _, name := range []string{"outline", "Markdown"} {
		if err := registry.Register(stubRenderer{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if err := registry.Register(stubRenderer{name: " OUTLINE"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatal("expected error for unnamed renderer")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatal("expected error for nil renderer")
	}

	if diff := cmp.Diff([]string{"markdown", "outline"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	got, err := registry.Get("MARKDOWN")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name() != "Markdown" {
		t.Fatalf("unexpected renderer %q", got.Name())
	}
	_, err = registry.Get("html")
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: markdown, outline") {
		t.Fatalf("error should list renderers: %v", err)
	}
}

func TestRegistry_Default(t *testing.T) {
	registry := render.NewRegistry()
	if _, err := registry.Get(""); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("empty registry has no default, got %v", err)
	}

	for _, name := range []string{"outline", "markdown"} {
		if err := registry.Register(stubRenderer{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	got, err := registry.Get(" ")
	if err != nil || got.Name() != "outline" {
		t.Fatalf("expected the first registered renderer, got %v, %v", got, err)
	}

	if err := registry.SetDefault("Markdown"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	got, err = registry.Get("")
	if err != nil || got.Name() != "markdown" {
		t.Fatalf("expected markdown default, got %v, %v", got, err)
	}
	if err := registry.SetDefault("html"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestRenderOptions_IssuesByPath(t *testing.T) {
	opts := render.RenderOptions{Issues: []model.Issue{
		{Path: model.Path{0}, Code: "a"},
		{Path: model.Path{0, 1}, Code: "b"},
		{Path: model.Path{0}, Code: "c"},
	}}
	grouped := opts.IssuesByPath()
	if len(grouped["0"]) != 2 || len(grouped["0.1"]) != 1 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
	if (render.RenderOptions{}).IssuesByPath() != nil {
		t.Fatal("expected nil map without issues")
	}
}
