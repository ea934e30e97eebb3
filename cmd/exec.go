package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/storage"
)

func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:  "exec",
		Usage: "Execute one SQL statement",
		Description: `Execute a single SQL statement and print its result. Values given with --arg are
bound to ? placeholders in order. Writes are discarded unless --commit is given.`,
		ArgsUsage: " <sql>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "arg",
				Usage: "value bound to the next ? placeholder (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "commit",
				Usage: "commit writes before exiting",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not show a progress spinner",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("expected exactly 1 argument, got %d", args.Len())
			}

			a, err := initializeApp(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer a.Close()

			return runExec(ctx, a, execOptions{
				query:  args.First(),
				args:   cmd.StringSlice("arg"),
				commit: cmd.Bool("commit"),
				quiet:  cmd.Bool("quiet"),
			})
		},
	}
}

type execOptions struct {
	query  string
	args   []string
	commit bool
	quiet  bool
}

func runExec(ctx context.Context, a *app, opts execOptions) error {
	if strings.TrimSpace(opts.query) == "" {
		return fmt.Errorf("statement is empty")
	}

	bound := make([]any, len(opts.args))
	for i, v := range opts.args {
		bound[i] = parseValue(v)
	}

	var s *spinner.Spinner
	if !opts.quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.errOut))
		s.Suffix = " Running statement..."
		s.Start()
	}

	result, err := a.session.Execute(ctx, opts.query, bound...)

	if s != nil {
		s.Stop()
	}

	if err != nil {
		return err
	}

	printResult(a, result)

	return a.finish(ctx, opts.commit)
}

// printResult prints a row-returning result or the affected-row count of a write
func printResult(a *app, result *storage.QueryResult) {
	fmt.Fprintln(a.out, a.formatter.FormatResult(result, a.format))
}
