// Package outline renders field trees as indented text or markdown tables
// through pongo2 templates.
package outline

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/render"
)

const (
	// Name is the registry name of the plain-text renderer.
	Name = "outline"
	// MarkdownName is the registry name of the markdown table renderer.
	MarkdownName = "markdown"

	defaultIndent = "  "
)

//go:embed templates/*.tpl
var embedded embed.FS

// Option configures a Renderer before construction.
type Option func(*config)

type config struct {
	name        string
	contentType string
	indent      string
	content     string
	file        string
	templates   fs.FS
}

// WithName overrides the name reported to render.Registry.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithContentType overrides the reported content type.
func WithContentType(contentType string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(contentType); trimmed != "" {
			cfg.contentType = trimmed
		}
	}
}

// WithIndent sets the string repeated once per nesting level.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// WithTemplate renders with an inline pongo2 template instead of the embedded
// one. The template receives title, descriptions and rows.
func WithTemplate(content string) Option {
	return func(cfg *config) {
		cfg.content = content
		cfg.file = ""
	}
}

// WithTemplateFS loads the named template from fsys. Templates in fsys can
// include or extend the embedded ones by name.
func WithTemplateFS(fsys fs.FS, name string) Option {
	return func(cfg *config) {
		cfg.templates = fsys
		cfg.file = strings.TrimSpace(name)
		cfg.content = ""
	}
}

// Row is one flattened field as seen by templates.
type Row struct {
	Path        string
	Depth       int
	Indent      string
	Name        string
	Type        string
	MinOccurs   int
	MaxOccurs   string
	Required    bool
	Complex     bool
	Description string
	Children    int
	Issues      []string
}

// Renderer implements render.Renderer on top of a pongo2 template set.
type Renderer struct {
	name        string
	contentType string
	indent      string
	tmpl        *pongo2.Template
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the plain-text outline renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		name:        Name,
		contentType: "text/plain; charset=utf-8",
		indent:      defaultIndent,
		file:        "outline.tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return newRenderer(cfg)
}

// NewMarkdown builds the markdown table renderer. Options apply after the
// markdown defaults.
func NewMarkdown(options ...Option) (*Renderer, error) {
	base := []Option{
		WithName(MarkdownName),
		WithContentType("text/markdown; charset=utf-8"),
		WithIndent("&nbsp;&nbsp;"),
		func(cfg *config) { cfg.file = "markdown.tpl" },
	}
	return New(append(base, options...)...)
}

func newRenderer(cfg *config) (*Renderer, error) {
	registerDefaultFilters()

	loaders := []pongo2.TemplateLoader{}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	loaders = append(loaders, pongo2.NewFSLoader(TemplatesFS()))
	set := pongo2.NewSet("fieldtree-"+cfg.name, loaders...)

	var (
		tmpl *pongo2.Template
		err  error
	)
	switch {
	case cfg.content != "":
		tmpl, err = set.FromString(cfg.content)
		if err != nil {
			return nil, fmt.Errorf("outline: parse template string: %w", err)
		}
	case cfg.file != "":
		tmpl, err = set.FromFile(cfg.file)
		if err != nil {
			return nil, fmt.Errorf("outline: load template %q: %w", cfg.file, err)
		}
	default:
		return nil, errors.New("outline: template is required")
	}

	return &Renderer{
		name:        cfg.name,
		contentType: cfg.contentType,
		indent:      cfg.indent,
		tmpl:        tmpl,
	}, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string { return r.name }

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string { return r.contentType }

// Render flattens fields and executes the template. Output always ends with a
// single newline unless it is empty.
func (r *Renderer) Render(ctx context.Context, fields []model.Field, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.tmpl == nil {
		return nil, errors.New("outline: renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	view := pongo2.Context{
		"title":        strings.TrimSpace(options.Title),
		"descriptions": options.Descriptions,
		"rows":         Rows(fields, r.indent, options),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteWriter(view, &buf); err != nil {
		return nil, fmt.Errorf("outline: execute template: %w", err)
	}

	out := bytes.TrimRight(buf.Bytes(), "\n")
	if len(out) == 0 {
		return []byte{}, nil
	}
	return append(out, '\n'), nil
}

// Rows flattens the tree in walk order, annotating rows with the issues in
// options whose path matches.
func Rows(fields []model.Field, indent string, options render.RenderOptions) []Row {
	issues := options.IssuesByPath()
	rows := make([]Row, 0, model.Count(fields))
	_ = model.Walk(fields, func(path model.Path, field model.Field) error {
		key := path.String()
		row := Row{
			Path:        key,
			Depth:       path.Depth(),
			Indent:      strings.Repeat(indent, path.Depth()),
			Name:        field.Name,
			Type:        string(field.Type),
			MinOccurs:   field.MinOccurs,
			MaxOccurs:   field.MaxOccurs.String(),
			Required:    field.Required,
			Complex:     field.IsComplexType,
			Description: strings.TrimSpace(field.Description),
			Children:    len(field.Children),
		}
		for _, issue := range issues[key] {
			row.Issues = append(row.Issues, fmt.Sprintf("%s %s: %s", issue.Severity, issue.Code, issue.Message))
		}
		rows = append(rows, row)
		return nil
	})
	return rows
}

// pongo2 keeps filters in a package-level map without locking.
var filtersOnce sync.Once

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("occurs") {
			_ = pongo2.RegisterFilter("occurs", filterOccurs)
		}
		if !pongo2.FilterExists("mdcell") {
			_ = pongo2.RegisterFilter("mdcell", filterMarkdownCell)
		}
	})
}

// filterOccurs joins minOccurs (input) and maxOccurs (param) as "min..max".
func filterOccurs(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	upper := "1"
	if param != nil && param.String() != "" {
		upper = param.String()
	}
	return pongo2.AsValue(in.String() + ".." + upper), nil
}

func filterMarkdownCell(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	cell := strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ").Replace(in.String())
	return pongo2.AsValue(strings.TrimSpace(cell)), nil
}

// TemplatesFS exposes the embedded templates so callers can copy or extend
// them through WithTemplateFS.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}
