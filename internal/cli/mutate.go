package cli

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/integrixs/fieldtree/pkg/codec"
	"github.com/integrixs/fieldtree/pkg/model"
)

// mutation applies one tree operation to a native tree file and writes the
// result back in place.
type mutation func(doc *codec.Document) (model.Path, error)

func (a *app) mutate(cmd *cobra.Command, file, op string, create bool, fn mutation) error {
	read := readTree
	if create {
		read = readOrCreateTree
	}
	doc, err := read(file)
	if err != nil {
		return err
	}
	path, err := fn(&doc)
	if err != nil {
		return err
	}
	if err := writeTree(file, doc); err != nil {
		return err
	}

	a.logger().WithFields(logrus.Fields{
		"op":     op,
		"file":   file,
		"fields": model.Count(doc.Fields),
	}).Info("fieldtree: tree updated")
	if path != nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path.String())
	}
	return err
}

// fieldFlags are the attribute flags shared by add, add-child and update.
type fieldFlags struct {
	name        string
	fieldType   string
	required    bool
	description string
	minOccurs   int
	maxOccurs   string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Field name")
	flags.StringVar(&f.fieldType, "type", "", "Field type (string, integer, number, boolean, object, array)")
	flags.BoolVar(&f.required, "required", false, "Mark the field as required")
	flags.StringVar(&f.description, "description", "", "Field description")
	flags.IntVar(&f.minOccurs, "min-occurs", 0, "Minimum occurrences")
	flags.StringVar(&f.maxOccurs, "max-occurs", "", `Maximum occurrences, a positive count or "unbounded"`)
}

// update collects the flags the user actually set.
func (f *fieldFlags) update(cmd *cobra.Command) (model.FieldUpdate, error) {
	var update model.FieldUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		update = update.SetName(f.name)
	}
	if flags.Changed("type") {
		update = update.SetType(model.FieldType(f.fieldType))
	}
	if flags.Changed("required") {
		update = update.SetRequired(f.required)
	}
	if flags.Changed("description") {
		update = update.SetDescription(f.description)
	}
	if flags.Changed("min-occurs") {
		update = update.SetMinOccurs(f.minOccurs)
	}
	if flags.Changed("max-occurs") {
		occurs, err := model.ParseOccurs(f.maxOccurs)
		if err != nil {
			return model.FieldUpdate{}, err
		}
		update = update.SetMaxOccurs(occurs)
	}
	return update, nil
}

func applyUpdate(fields []model.Field, path model.Path, update model.FieldUpdate) ([]model.Field, error) {
	if update.Empty() {
		return fields, nil
	}
	return model.UpdateFieldAtPath(fields, path, update)
}

func newAdd(a *app) *cobra.Command {
	var flags fieldFlags
	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Append a root field; creates FILE when missing and prints the new path",
		Args:  cobra.ExactArgs(1),
	}
	flags.register(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		update, err := flags.update(cmd)
		if err != nil {
			return err
		}
		return a.mutate(cmd, args[0], "add", true, func(doc *codec.Document) (model.Path, error) {
			fields := model.AddRootField(doc.Fields)
			path := model.Path{len(fields) - 1}
			fields, err := applyUpdate(fields, path, update)
			if err != nil {
				return nil, err
			}
			doc.Fields = fields
			return path, nil
		})
	}
	return cmd
}

func newAddChild(a *app) *cobra.Command {
	var (
		flags   fieldFlags
		promote bool
	)
	cmd := &cobra.Command{
		Use:   "add-child FILE PATH",
		Short: "Append a child to the field at PATH and print the new path",
		Args:  cobra.ExactArgs(2),
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&promote, "promote", false, "Mark a scalar parent as a complex type")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		parent, err := model.ParsePath(args[1])
		if err != nil {
			return err
		}
		update, err := flags.update(cmd)
		if err != nil {
			return err
		}
		return a.mutate(cmd, args[0], "add-child", false, func(doc *codec.Document) (model.Path, error) {
			add := model.AddChildField
			if promote {
				add = model.AddChildFieldPromoting
			}
			fields, err := add(doc.Fields, parent)
			if err != nil {
				return nil, err
			}
			node, err := model.Resolve(fields, parent)
			if err != nil {
				return nil, err
			}
			path := parent.Child(len(node.Children) - 1)
			if fields, err = applyUpdate(fields, path, update); err != nil {
				return nil, err
			}
			doc.Fields = fields
			return path, nil
		})
	}
	return cmd
}

func newUpdate(a *app) *cobra.Command {
	var flags fieldFlags
	cmd := &cobra.Command{
		Use:   "update FILE PATH",
		Short: "Change attributes of the field at PATH",
		Long: `Change attributes of the field at PATH. Setting --max-occurs above 1 or to
"unbounded" turns the field into an array; setting it back to 1 on an array
turns it into a string.`,
		Args: cobra.ExactArgs(2),
	}
	flags.register(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		path, err := model.ParsePath(args[1])
		if err != nil {
			return err
		}
		update, err := flags.update(cmd)
		if err != nil {
			return err
		}
		if update.Empty() {
			return ErrNothingToUpdate
		}
		return a.mutate(cmd, args[0], "update", false, func(doc *codec.Document) (model.Path, error) {
			fields, err := model.UpdateFieldAtPath(doc.Fields, path, update)
			if err != nil {
				return nil, err
			}
			doc.Fields = fields
			return nil, nil
		})
	}
	return cmd
}

func newRemove(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove FILE PATH",
		Aliases: []string{"rm"},
		Short:   "Remove the field at PATH and its subtree",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := model.ParsePath(args[1])
			if err != nil {
				return err
			}
			return a.mutate(cmd, args[0], "remove", false, func(doc *codec.Document) (model.Path, error) {
				fields, err := model.RemoveFieldAtPath(doc.Fields, path)
				if err != nil {
					return nil, err
				}
				doc.Fields = fields
				return nil, nil
			})
		},
	}
}

func newMove(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move FILE PATH INDEX",
		Short: "Move the field at PATH to position INDEX among its siblings",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := model.ParsePath(args[1])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[2], err)
			}
			return a.mutate(cmd, args[0], "move", false, func(doc *codec.Document) (model.Path, error) {
				fields, err := model.MoveFieldAtPath(doc.Fields, path, to)
				if err != nil {
					return nil, err
				}
				doc.Fields = fields
				moved := path.Clone()
				moved[len(moved)-1] = to
				return moved, nil
			})
		},
	}
}

func newDuplicate(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate FILE PATH",
		Short: "Insert a copy of the field at PATH right after it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := model.ParsePath(args[1])
			if err != nil {
				return err
			}
			return a.mutate(cmd, args[0], "duplicate", false, func(doc *codec.Document) (model.Path, error) {
				fields, err := model.DuplicateFieldAtPath(doc.Fields, path)
				if err != nil {
					return nil, err
				}
				doc.Fields = fields
				copied := path.Clone()
				copied[len(copied)-1]++
				return copied, nil
			})
		},
	}
}
