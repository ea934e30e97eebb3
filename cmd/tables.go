package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
)

func TablesCommand() *cli.Command {
	return &cli.Command{
		Name:        "tables",
		Usage:       "List the tables of the database",
		Description: `List the user tables of the database ordered by name. Internal sqlite_ tables are omitted.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := initializeApp(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer a.Close()

			return runTables(ctx, a)
		},
	}
}

func runTables(ctx context.Context, a *app) error {
	tables, err := a.session.TableList(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.formatter.FormatList(tables))

	return nil
}

func FieldsCommand() *cli.Command {
	return &cli.Command{
		Name:        "fields",
		Usage:       "List the fields of one table or of every table",
		Description: `List field names of the given table, or table.field for every table when no table is given.
With --others, list table.field for every field outside the given table: the fields a join
condition can match against.`,
		ArgsUsage: " [table]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "others",
				Usage: "list the fields of every other table",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() > 1 {
				return fmt.Errorf("expected at most 1 argument, got %d", args.Len())
			}

			a, err := initializeApp(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Bool("others") {
				return runOtherFields(ctx, a, args.First())
			}

			return runFields(ctx, a, args.First())
		},
	}
}

func runFields(ctx context.Context, a *app, table string) error {
	if table == "" {
		refs, err := a.session.Fields(ctx)
		if err != nil {
			return err
		}

		printRefs(a, refs)

		return nil
	}

	fields, err := a.session.FieldList(ctx, table)
	if err != nil {
		return err
	}

	if len(fields) == 0 {
		return errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", table).
			WithSuggestion("Run 'sqlitegui tables' to list the tables")
	}

	fmt.Fprintln(a.out, a.formatter.FormatList(fields))

	return nil
}

func runOtherFields(ctx context.Context, a *app, table string) error {
	if table == "" {
		return errors.New(errors.ErrTypeValidation, "--others needs a table")
	}

	refs, err := a.session.OtherFields(ctx, table)
	if err != nil {
		return err
	}

	printRefs(a, refs)

	return nil
}

func printRefs(a *app, refs []catalog.FieldRef) {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.String()
	}

	fmt.Fprintln(a.out, a.formatter.FormatList(names))
}
