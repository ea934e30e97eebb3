package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/logging"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "database file to open (default: transient in-memory database)",
		},
		&cli.StringFlag{
			Name:  "driver",
			Usage: "database driver: auto, sqlite3 or duckdb",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "queries-dir",
			Usage: "directory holding saved queries",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "result format: table or plain",
			Value: "table",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "print connection status and statement statistics to stderr",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
}

// NewRootCommand builds the sqlitegui command tree
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "sqlitegui",
		Usage: "Browse SQLite and DuckDB databases and build queries without writing SQL",
		Description: `sqlitegui opens a database file, lists its tables and fields, and builds SELECT
and UPDATE statements from selected tables, fields and joins. With no database argument a
transient in-memory database is opened. Writes are kept in a transaction and only saved
with --commit.`,
		ArgsUsage: "[database]",
		Flags:     globalFlags(),
		Action:    runRoot,
		Commands: []*cli.Command{
			TablesCommand(),
			FieldsCommand(),
			ExecCommand(),
			SelectCommand(),
			UpdateCommand(),
			QueriesCommand(),
			ConfigCommand(),
		},
	}
}

// Execute runs the command line and reports any error on stderr
func Execute() error {
	ctx := context.Background()

	err := NewRootCommand().Run(ctx, os.Args)
	if err != nil {
		printError(os.Stderr, err)
	}

	_ = logging.GetLogger().Close()

	return err
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	for _, suggestion := range errors.GetSuggestions(err) {
		fmt.Fprintf(w, "  Suggestion: %s\n", suggestion)
	}
}

// runRoot opens the database named by the only argument and prints its status and tables
func runRoot(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() > 1 {
		return errors.Newf(errors.ErrTypeValidation, "expected at most 1 database argument, got %d", args.Len())
	}

	a, err := initializeApp(ctx, cmd, args.First())
	if err != nil {
		return err
	}
	defer a.Close()

	return runOverview(ctx, a)
}

func runOverview(ctx context.Context, a *app) error {
	tables, err := a.session.TableList(ctx)
	if err != nil {
		return err
	}

	st := a.session.Status()

	fmt.Fprintln(a.out, a.formatter.WindowTitle(st.Label))
	fmt.Fprintln(a.out, a.formatter.ConnectedLabel(st.Label))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Tables:")
	fmt.Fprintln(a.out, a.formatter.FormatList(tables))

	ids := a.registry.Commands()
	names := make([]string, len(ids))

	for i, id := range ids {
		names[i] = string(id)
	}

	fmt.Fprintf(a.out, "\nCommands: %s\n", strings.Join(names, ", "))

	return nil
}
