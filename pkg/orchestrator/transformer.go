package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/integrixs/fieldtree/pkg/model"
)

// Transformer rewrites a freshly built tree before decorators run.
type Transformer interface {
	Transform(ctx context.Context, fields []model.Field) ([]model.Field, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, fields []model.Field) ([]model.Field, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, fields []model.Field) ([]model.Field, error) {
	if fn == nil {
		return fields, nil
	}
	return fn(ctx, fields)
}

// PresetTransformer applies declarative per-field patches loaded from a JSON
// or YAML document. Fields are addressed by dotted name paths:
//
//	fields:
//	  customer.address.city:
//	    rename: town
//	    description: Postal town
//	    required: true
//	    maxOccurs: unbounded
//
// A dot inside a single field name is written as `\.`, following
// model.FindByName.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Fields map[string]fieldPatch `yaml:"fields"`
}

type fieldPatch struct {
	Rename      string          `yaml:"rename"`
	Description *string         `yaml:"description"`
	Type        model.FieldType `yaml:"type"`
	Required    *bool           `yaml:"required"`
	MinOccurs   *int            `yaml:"minOccurs"`
	MaxOccurs   *model.Occurs   `yaml:"maxOccurs"`
}

func (p fieldPatch) update() model.FieldUpdate {
	var update model.FieldUpdate
	if name := strings.TrimSpace(p.Rename); name != "" {
		update = update.SetName(name)
	}
	if p.Description != nil {
		update = update.SetDescription(*p.Description)
	}
	if p.Type != "" {
		update = update.SetType(p.Type)
	}
	if p.Required != nil {
		update = update.SetRequired(*p.Required)
	}
	if p.MinOccurs != nil {
		update = update.SetMinOccurs(*p.MinOccurs)
	}
	if p.MaxOccurs != nil {
		update = update.SetMaxOccurs(*p.MaxOccurs)
	}
	return update
}

// NewPresetTransformer constructs a transformer from raw JSON or YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches in lexical path order through
// model.UpdateFieldAtPath, so the type inference policy applies to
// cardinality patches. A path that names no field fails the transform.
func (t *PresetTransformer) Transform(ctx context.Context, fields []model.Field) ([]model.Field, error) {
	names := make([]string, 0, len(t.document.Fields))
	for name := range t.document.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	// Resolve every path against the input tree first so renames earlier in
	// the list cannot hide later targets.
	paths := make(map[string]model.Path, len(names))
	for _, name := range names {
		path, ok := model.FindByName(fields, name)
		if !ok {
			return nil, fmt.Errorf("preset transformer: field %q not found", name)
		}
		paths[name] = path
	}

	out := fields
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		update := t.document.Fields[name].update()
		if update.Empty() {
			continue
		}
		next, err := model.UpdateFieldAtPath(out, paths[name], update)
		if err != nil {
			return nil, fmt.Errorf("preset transformer: %s: %w", name, err)
		}
		out = next
	}
	return out, nil
}
