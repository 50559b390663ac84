// Package cli implements the fieldtree command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/integrixs/fieldtree"
	"github.com/integrixs/fieldtree/internal/config"
	"github.com/integrixs/fieldtree/pkg/orchestrator"
	"github.com/integrixs/fieldtree/pkg/prompt"
	"github.com/integrixs/fieldtree/pkg/render"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// CommandContext carries the process streams and collaborators so commands
// can be exercised in tests without a terminal.
type CommandContext struct {
	StdOut io.Writer
	StdErr io.Writer
	StdIn  io.Reader
	// Logger receives command logs; defaults to the logrus standard logger.
	Logger *logrus.Logger
	// Getenv reads environment overrides; defaults to os.Getenv.
	Getenv func(string) string
	// Driver builds the prompt driver used by edit; defaults to survey.
	Driver func(c CommandContext) prompt.Driver
}

func (c CommandContext) withDefaults() CommandContext {
	if c.StdOut == nil {
		c.StdOut = os.Stdout
	}
	if c.StdErr == nil {
		c.StdErr = os.Stderr
	}
	if c.StdIn == nil {
		c.StdIn = os.Stdin
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	if c.Driver == nil {
		c.Driver = func(c CommandContext) prompt.Driver {
			return prompt.NewSurveyDriver(c.StdOut)
		}
	}
	return c
}

// app holds the state shared by every subcommand of one invocation.
type app struct {
	ctx        CommandContext
	configPath string
	logLevel   string
	allowHTTP  bool
	timeout    time.Duration
	cfg        config.Config
}

// New builds the root command.
func New(c CommandContext) *cobra.Command {
	a := &app{ctx: c.withDefaults(), cfg: config.Default()}

	root := &cobra.Command{
		Use:   "fieldtree",
		Short: "Edit hierarchical field trees of integration data structures",
		Example: `
# Import a JSON Schema definition into a native tree file
fieldtree import customer.schema.json --structure Customer -o customer.json

# Show and edit it
fieldtree show customer.json
fieldtree update customer.json 0.1 --max-occurs unbounded`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	}
	root.SetOut(a.ctx.StdOut)
	root.SetErr(a.ctx.StdErr)
	root.SetIn(a.ctx.StdIn)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $FIELDTREE_CONFIG_FILE or $XDG_CONFIG_HOME/fieldtree/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&a.allowHTTP, "allow-http", false, "Allow loading schema documents over HTTP")
	flags.DurationVar(&a.timeout, "http-timeout", 0, "Timeout for HTTP schema loads")

	root.AddCommand(
		newShow(a),
		newLint(a),
		newStructures(a),
		newAdd(a),
		newAddChild(a),
		newUpdate(a),
		newRemove(a),
		newMove(a),
		newDuplicate(a),
		newImport(a),
		newExport(a),
		newEdit(a),
	)
	return root
}

// setup resolves config file, environment and flags, in that order, and
// configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, a.ctx.Getenv)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.TrimSpace(a.logLevel)
	}
	if flags.Changed("allow-http") {
		cfg.AllowHTTP = a.allowHTTP
	}
	if flags.Changed("http-timeout") {
		cfg.HTTPTimeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.ctx.Logger.SetOutput(a.ctx.StdErr)
	if err := cfg.Configure(a.ctx.Logger); err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.Filename() != "" {
		a.ctx.Logger.WithField("file", cfg.Filename()).Debug("fieldtree: config loaded")
	}
	return nil
}

func (a *app) logger() logrus.FieldLogger {
	return a.ctx.Logger
}

func (a *app) orchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	var loaderOptions []schema.LoaderOption
	if a.cfg.AllowHTTP {
		loaderOptions = append(loaderOptions, schema.WithHTTPFallback(a.cfg.HTTPTimeout))
	}
	base := []orchestrator.Option{
		orchestrator.WithLoader(fieldtree.NewLoader(loaderOptions...)),
		orchestrator.WithLogger(a.logger()),
	}
	return fieldtree.NewOrchestrator(append(base, options...)...)
}

// renderer resolves a --renderer value; blank picks the configured renderer.
func (a *app) renderer(name string) (render.Renderer, error) {
	renderers, err := fieldtree.NewRenderers()
	if err != nil {
		return nil, err
	}
	if configured := strings.TrimSpace(a.cfg.Renderer); configured != "" {
		if err := renderers.SetDefault(configured); err != nil {
			return nil, fmt.Errorf("config renderer: %w", err)
		}
	}
	return renderers.Get(name)
}
