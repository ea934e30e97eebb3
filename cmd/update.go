package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/commands"
	"github.com/kyleking/sqlitegui/internal/compiler"
	"github.com/kyleking/sqlitegui/internal/errors"
)

func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Build and run an UPDATE of one table",
		Description: `Build an UPDATE statement from --set and --where assignments written as field=value.
Rows are matched by equality on every --where field; without --where every row is updated.
Values are bound as integers or floats when they parse as one, NULL binds a null, anything
else binds as text. The update is discarded unless --commit is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table",
				Aliases:  []string{"t"},
				Usage:    "table to update",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "field=value to assign (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "where",
				Usage: "field=value rows must match (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the statement and its arguments without running it",
			},
			&cli.BoolFlag{
				Name:  "commit",
				Usage: "commit the update before exiting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("unexpected arguments: %s", strings.Join(cmd.Args().Slice(), " "))
			}

			a, err := initializeApp(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer a.Close()

			return runUpdate(ctx, a, updateOptions{
				table:  cmd.String("table"),
				set:    cmd.StringSlice("set"),
				where:  cmd.StringSlice("where"),
				dryRun: cmd.Bool("dry-run"),
				commit: cmd.Bool("commit"),
			})
		},
	}
}

type updateOptions struct {
	table  string
	set    []string
	where  []string
	dryRun bool
	commit bool
}

func runUpdate(ctx context.Context, a *app, opts updateOptions) error {
	set, err := parseAssignments(opts.set)
	if err != nil {
		return err
	}

	where, err := parseAssignments(opts.where)
	if err != nil {
		return err
	}

	screen, err := a.registry.Dispatch(ctx, commands.Update, commands.OpenContext{Table: opts.table})
	if err != nil {
		return err
	}

	if a.cfg.Debug.Verbose {
		fmt.Fprintln(a.errOut, screen.HelpText())
	}

	update, ok := screen.(*commands.UpdateScreen)
	if !ok {
		return errors.Newf(errors.ErrTypeInternal, "unexpected screen %s for UPDATE", screen.Name())
	}

	query, args, err := update.Compile(ctx, set, where)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, query)

	if len(args) > 0 {
		fmt.Fprintf(a.out, "Arguments: %s\n", formatArgs(args))
	}

	if opts.dryRun {
		return nil
	}

	result, err := update.Run(ctx, set, where)
	if err != nil {
		return err
	}

	printResult(a, result)

	return a.finish(ctx, opts.commit)
}

func parseAssignments(raw []string) ([]compiler.Assignment, error) {
	assignments := make([]compiler.Assignment, 0, len(raw))

	for _, r := range raw {
		field, value, ok := strings.Cut(r, "=")
		field = strings.TrimSpace(field)

		if !ok || field == "" {
			return nil, errors.Newf(errors.ErrTypeValidation, "invalid assignment %q", r).
				WithSuggestion("Write assignments as field=value")
		}

		assignments = append(assignments, compiler.Assignment{Field: field, Value: parseValue(value)})
	}

	return assignments, nil
}

// parseValue converts a command-line value to the type it will be bound as
func parseValue(s string) any {
	if strings.EqualFold(s, "NULL") {
		return nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))

	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			parts[i] = "NULL"
		case string:
			parts[i] = strconv.Quote(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}

	return strings.Join(parts, ", ")
}
