package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-condexpr/pkg/catalog"
	"github.com/goliatone/go-condexpr/pkg/prompt"
)

// Option customises the command tree.
type Option func(*app)

// WithOutput redirects command output and log output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithDriver injects the prompt driver used by the interactive command.
func WithDriver(driver prompt.Driver) Option {
	return func(a *app) {
		a.driver = driver
	}
}

type app struct {
	out    io.Writer
	errOut io.Writer
	driver prompt.Driver

	catalogDir string
	logLevel   string
	noColor    bool

	logger  log.Logger
	catalog *catalog.Catalog
}

// NewRootCommand builds the condexpr command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "condexpr",
		Short:         "compile and evaluate boolean condition expressions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.catalogDir, "catalog", "", "directory holding JSON/YAML condition catalogs")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newEvalCommand(a))
	root.AddCommand(newExplainCommand(a))
	root.AddCommand(newInteractiveCommand(a))
	return root
}

func (a *app) setup() error {
	logger, err := newLogger(a.errOut, a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.catalogDir == "" {
		a.catalog = catalog.New()
		return nil
	}
	c, err := catalog.LoadFS(os.DirFS(a.catalogDir))
	if err != nil {
		return fmt.Errorf("cli: load catalog: %w", err)
	}
	a.catalog = c
	level.Info(a.logger).Log("msg", "catalog loaded", "dir", a.catalogDir, "conditions", len(c.Names()))
	return nil
}

func newLogger(w io.Writer, name string) (log.Logger, error) {
	var allow level.Option
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn", "":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("cli: unknown log level %q", name)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, allow), nil
}

func (a *app) colorize(value bool) string {
	c := color.New(color.FgRed)
	if value {
		c = color.New(color.FgGreen)
	}
	if a.noColor {
		c.DisableColor()
	}
	return c.Sprint(value)
}
