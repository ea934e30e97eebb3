package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/commands"
	"github.com/kyleking/sqlitegui/internal/config"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/formatter"
	"github.com/kyleking/sqlitegui/internal/logging"
	"github.com/kyleking/sqlitegui/internal/queries"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/workspace"
)

// app is everything a command action needs: the loaded configuration, an open session
// and where to write
type app struct {
	cfg       *config.Config
	session   *workspace.Session
	registry  *commands.Registry
	store     *queries.Store
	formatter *formatter.Formatter
	format    formatter.OutputFormat
	logger    *logging.Logger
	out       io.Writer
	errOut    io.Writer
}

// statusListener reports session notifications to the logger and, when verbose, to
// the error stream as status-bar lines
type statusListener struct {
	formatter *formatter.Formatter
	logger    *logging.Logger
	w         io.Writer
	verbose   bool
}

func (l *statusListener) OnConnectionStatusChanged(label string) {
	l.logger.WithField("label", label).Debug("Connection status changed")

	if l.verbose {
		fmt.Fprintln(l.w, l.formatter.ConnectedLabel(label))
	}
}

func (l *statusListener) OnLastQueryStats(rowsAffected int64, elapsed time.Duration) {
	l.logger.WithFields(map[string]interface{}{
		"rows_affected": rowsAffected,
		"elapsed":       elapsed,
	}).Debug("Statement finished")

	if l.verbose {
		fmt.Fprintln(l.w, l.formatter.LastQuery(rowsAffected, elapsed))
	}
}

// flagOverrides collects the global flags that were given a value
func flagOverrides(cmd *cli.Command) map[string]interface{} {
	overrides := map[string]interface{}{}

	for flag, key := range map[string]string{
		"db":          "db-path",
		"driver":      "driver",
		"log-level":   "log-level",
		"queries-dir": "queries-dir",
	} {
		if v := cmd.String(flag); v != "" {
			overrides[key] = v
		}
	}

	if cmd.Bool("verbose") {
		overrides["verbose"] = true
	}

	if cmd.Bool("debug") {
		overrides["debug"] = true
		overrides["log-level"] = "debug"
	}

	return overrides
}

// loadConfig loads configuration from file, environment and the command's flags and
// initializes the global logger from it
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadConfigWithOverrides(flagOverrides(cmd))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration")
	}

	cfg.ExpandAllPaths()

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to initialize logger")
	}

	return cfg, nil
}

func writers(cmd *cli.Command) (io.Writer, io.Writer) {
	var out, errOut io.Writer = os.Stdout, os.Stderr

	if root := cmd.Root(); root != nil {
		if root.Writer != nil {
			out = root.Writer
		}

		if root.ErrWriter != nil {
			errOut = root.ErrWriter
		}
	}

	return out, errOut
}

// initializeApp loads configuration and opens path, or the configured database when
// path is empty. The caller must Close the app.
func initializeApp(ctx context.Context, cmd *cli.Command, path string) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	out, errOut := writers(cmd)

	return openApp(ctx, cfg, path, out, errOut, cmd.String("format"))
}

func openApp(ctx context.Context, cfg *config.Config, path string, out, errOut io.Writer, format string) (*app, error) {
	outputFormat, err := formatter.ParseOutputFormat(format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeValidation, "invalid --format")
	}

	logger := logging.GetLogger()

	f := formatter.NewFormatter()
	listener := &statusListener{formatter: f, logger: logger, w: errOut, verbose: cfg.Debug.Verbose}

	session := workspace.New(storage.Open, listener, logger, workspace.Options{
		Driver:       storage.Driver(cfg.Database.Driver),
		QueryTimeout: cfg.QueryTimeout(),
	})

	if path == "" {
		path = cfg.Database.Path
	}

	if err := session.Open(ctx, path); err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		session:   session,
		registry:  commands.NewRegistry(session),
		store:     newStore(cfg),
		formatter: f,
		format:    outputFormat,
		logger:    logger,
		out:       out,
		errOut:    errOut,
	}, nil
}

func newStore(cfg *config.Config) *queries.Store {
	return queries.NewStore(cfg.Queries.Directory)
}

// Close closes the session, discarding anything not committed. The global logger
// stays open until Execute returns.
func (a *app) Close() error {
	return a.session.Close()
}

// finish commits pending writes when commit is set and otherwise warns that they will
// be discarded
func (a *app) finish(ctx context.Context, commit bool) error {
	if !a.session.Status().Pending {
		return nil
	}

	if commit {
		return a.session.Save(ctx)
	}

	fmt.Fprintln(a.errOut, "Changes were not committed; rerun with --commit to keep them.")

	return nil
}
