package cli

import (
	"github.com/spf13/cobra"

	"github.com/integrixs/fieldtree/pkg/editor"
	"github.com/integrixs/fieldtree/pkg/prompt"
)

func newEdit(a *app) *cobra.Command {
	var renderer string
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Edit a tree file interactively; creates FILE when missing",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "", "Renderer used to print the tree between edits")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		file := args[0]
		doc, err := readOrCreateTree(file)
		if err != nil {
			return err
		}

		view, err := a.renderer(renderer)
		if err != nil {
			return err
		}

		session := editor.New(
			editor.WithFields(doc.Fields),
			editor.WithHistoryLimit(a.cfg.HistoryLimit),
			editor.WithLogger(a.logger()),
		)
		ed, err := prompt.NewEditor(session, a.ctx.Driver(a.ctx),
			prompt.WithRenderer(view),
			prompt.WithTitle(doc.ID),
			prompt.WithEditorLogger(a.logger()),
		)
		if err != nil {
			return err
		}

		saved, err := ed.Run(cmd.Context())
		if err != nil {
			return err
		}
		if !saved {
			a.logger().WithField("file", file).Info("fieldtree: changes discarded")
			return nil
		}
		doc.Fields = session.Fields()
		if err := writeTree(file, doc); err != nil {
			return err
		}
		session.MarkSaved()
		a.logger().WithField("file", file).Info("fieldtree: tree saved")
		return nil
	}
	return cmd
}
