package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/integrixs/fieldtree/pkg/codec"
	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/orchestrator"
	"github.com/integrixs/fieldtree/pkg/schema"
)

type importCommand struct {
	app    *app
	source sourceFlags
	output string
	preset string
}

func newImport(a *app) *cobra.Command {
	i := &importCommand{app: a}
	cmd := &cobra.Command{
		Use:   "import SOURCE",
		Short: "Build a native tree file from a structure of a schema document",
		Example: `
# Import an OpenAPI component schema
fieldtree import api.yaml --structure Order -o order.yaml

# Apply a preset of renames and cardinality changes while importing
fieldtree import customer.schema.json --preset customer.preset.yaml -o customer.json`,
		Args: cobra.ExactArgs(1),
		RunE: i.Run,
	}
	i.source.register(cmd)
	cmd.Flags().StringVarP(&i.output, "output", "o", "", "Tree file to write (stdout when empty)")
	cmd.Flags().StringVar(&i.preset, "preset", "", "YAML or JSON preset applied to the loaded tree")
	return cmd
}

func (i *importCommand) Run(cmd *cobra.Command, args []string) error {
	var options []orchestrator.Option
	if i.preset != "" {
		data, err := os.ReadFile(i.preset)
		if err != nil {
			return fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithTransformer(transformer))
	}

	result, err := i.app.orchestrator(options...).Load(cmd.Context(), i.source.request(args[0]))
	if err != nil {
		return err
	}
	doc := codec.Document{ID: result.StructureID, Title: result.Title, Fields: result.Fields}

	if i.output == "" {
		out, err := codec.Encode(doc, schema.EncodingJSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := writeTree(i.output, doc); err != nil {
		return err
	}
	i.app.logger().WithFields(logrus.Fields{
		"source":    result.Location,
		"format":    result.Format,
		"structure": result.StructureID,
		"fields":    model.Count(result.Fields),
		"file":      i.output,
	}).Info("fieldtree: imported structure")
	return nil
}

type exportCommand struct {
	app     *app
	format  string
	yaml    bool
	output  string
	title   string
	version string
}

func newExport(a *app) *cobra.Command {
	e := &exportCommand{app: a}
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a tree file as an OpenAPI, JSON Schema or native document",
		Args:  cobra.ExactArgs(1),
		RunE:  e.Run,
	}
	cmd.Flags().StringVar(&e.format, "format", "", "Target format (openapi, jsonschema, native); defaults to the configured format")
	cmd.Flags().BoolVar(&e.yaml, "yaml", false, "Emit YAML instead of JSON")
	cmd.Flags().StringVarP(&e.output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&e.title, "title", "", "Document title; defaults to the tree title")
	cmd.Flags().StringVar(&e.version, "version", "", "Document version for formats that carry one")
	return cmd
}

func (e *exportCommand) Run(cmd *cobra.Command, args []string) error {
	doc, err := readTree(args[0])
	if err != nil {
		return err
	}

	format := strings.TrimSpace(e.format)
	if format == "" {
		format = e.app.cfg.ExportFormat
	}
	options := schema.ExportOptions{
		Encoding: schema.EncodingJSON,
		Title:    doc.Title,
		Version:  e.version,
	}
	if e.yaml || (e.output != "" && !cmd.Flags().Changed("yaml") && codec.EncodingForPath(e.output) == schema.EncodingYAML) {
		options.Encoding = schema.EncodingYAML
	}
	if e.title != "" {
		options.Title = e.title
	}

	out, err := e.app.orchestrator().Export(cmd.Context(), orchestrator.ExportRequest{
		ID:      doc.ID,
		Fields:  doc.Fields,
		Format:  format,
		Options: options,
	})
	if err != nil {
		return err
	}

	if e.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := writeFile(e.output, out); err != nil {
		return err
	}
	e.app.logger().WithFields(logrus.Fields{"format": format, "file": e.output}).Info("fieldtree: exported tree")
	return nil
}
