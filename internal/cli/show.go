package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/orchestrator"
	"github.com/integrixs/fieldtree/pkg/render"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// sourceFlags select what to load from a schema document.
type sourceFlags struct {
	format    string
	structure string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.format, "format", "", "Source format (openapi, jsonschema, native); detected when empty")
	cmd.Flags().StringVar(&s.structure, "structure", "", "Structure to load when the document holds several")
}

func (s sourceFlags) request(source string) orchestrator.Request {
	return orchestrator.Request{
		Source:      schema.ParseSource(source),
		Format:      strings.TrimSpace(s.format),
		StructureID: strings.TrimSpace(s.structure),
	}
}

type showCommand struct {
	app          *app
	source       sourceFlags
	renderer     string
	descriptions bool
	lint         bool
}

func newShow(a *app) *cobra.Command {
	s := &showCommand{app: a}
	cmd := &cobra.Command{
		Use:   "show SOURCE",
		Short: "Print the field tree of a tree file or schema document",
		Args:  cobra.ExactArgs(1),
		RunE:  s.Run,
	}
	s.source.register(cmd)
	cmd.Flags().StringVarP(&s.renderer, "renderer", "r", "", "Renderer (outline, markdown); defaults to the configured renderer")
	cmd.Flags().BoolVarP(&s.descriptions, "descriptions", "d", false, "Include field descriptions")
	cmd.Flags().BoolVar(&s.lint, "lint", false, "Annotate fields with lint issues")
	return cmd
}

func (s *showCommand) Run(cmd *cobra.Command, args []string) error {
	result, err := s.app.orchestrator().Load(cmd.Context(), s.source.request(args[0]))
	if err != nil {
		return err
	}

	renderer, err := s.app.renderer(s.renderer)
	if err != nil {
		return err
	}

	options := render.RenderOptions{Title: result.StructureID, Descriptions: s.descriptions}
	if s.lint {
		options.Issues = model.Lint(result.Fields)
	}
	out, err := renderer.Render(cmd.Context(), result.Fields, options)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

type lintCommand struct {
	app    *app
	source sourceFlags
}

func newLint(a *app) *cobra.Command {
	l := &lintCommand{app: a}
	cmd := &cobra.Command{
		Use:   "lint SOURCE",
		Short: "Report naming and cardinality problems; fails on error severity issues",
		Args:  cobra.ExactArgs(1),
		RunE:  l.Run,
	}
	l.source.register(cmd)
	return cmd
}

func (l *lintCommand) Run(cmd *cobra.Command, args []string) error {
	result, err := l.app.orchestrator().Load(cmd.Context(), l.source.request(args[0]))
	if err != nil {
		return err
	}
	issues := model.Lint(result.Fields)
	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		_, err := fmt.Fprintln(out, "no issues")
		return err
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintln(out, issue.String()); err != nil {
			return err
		}
	}
	if model.HasErrors(issues) {
		return fmt.Errorf("%w: %d issue(s) in %s", ErrLintFailed, len(issues), args[0])
	}
	return nil
}

type structuresCommand struct {
	app    *app
	format string
}

func newStructures(a *app) *cobra.Command {
	s := &structuresCommand{app: a}
	cmd := &cobra.Command{
		Use:   "structures SOURCE",
		Short: "List the structures a schema document defines",
		Args:  cobra.ExactArgs(1),
		RunE:  s.Run,
	}
	cmd.Flags().StringVar(&s.format, "format", "", "Source format; detected when empty")
	return cmd
}

func (s *structuresCommand) Run(cmd *cobra.Command, args []string) error {
	refs, err := s.app.orchestrator().Structures(cmd.Context(), orchestrator.Request{
		Source: schema.ParseSource(args[0]),
		Format: strings.TrimSpace(s.format),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, ref := range refs {
		line := ref.ID
		if ref.Title != "" && ref.Title != ref.ID {
			line += "\t" + ref.Title
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
