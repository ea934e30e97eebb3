package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/commands"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
)

func selectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "FROM table (default: the first selected table)",
		},
		&cli.StringSliceFlag{
			Name:    "table",
			Aliases: []string{"t"},
			Usage:   "table to select (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "field",
			Aliases: []string{"f"},
			Usage:   "field to project as table.field (repeatable; selects its table)",
		},
		&cli.StringSliceFlag{
			Name:    "join",
			Aliases: []string{"j"},
			Usage:   `join as "target:TYPE:left OP right", e.g. "orders:INNER:customers.id = orders.customer_id"`,
		},
	}
}

func SelectCommand() *cli.Command {
	return &cli.Command{
		Name:  "select",
		Usage: "Build a SELECT from tables, fields and joins",
		Description: `Build a SELECT statement without writing SQL. Every selected table other than the
FROM table needs a --join giving its type and a condition against a field of the FROM table.
The statement is printed; --run also executes it and --save stores it as a saved query.`,
		Flags: append(selectFlags(),
			&cli.BoolFlag{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "execute the statement and print its rows",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "save the query under this name",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("unexpected arguments: %s", strings.Join(cmd.Args().Slice(), " "))
			}

			a, err := initializeApp(ctx, cmd, "")
			if err != nil {
				return err
			}
			defer a.Close()

			return runSelect(ctx, a, selectOptionsFromFlags(cmd), cmd.Bool("run"), cmd.String("save"))
		},
	}
}

type selectOptions struct {
	from   string
	tables []string
	fields []string
	joins  []string
}

func selectOptionsFromFlags(cmd *cli.Command) selectOptions {
	return selectOptions{
		from:   cmd.String("from"),
		tables: cmd.StringSlice("table"),
		fields: cmd.StringSlice("field"),
		joins:  cmd.StringSlice("join"),
	}
}

func runSelect(ctx context.Context, a *app, opts selectOptions, run bool, saveAs string) error {
	query, err := buildSelect(ctx, a, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, query)

	if saveAs != "" {
		def := a.session.CaptureDefinition(saveAs)
		if err := a.store.Save(def); err != nil {
			return err
		}

		fmt.Fprintf(a.errOut, "Saved query %s\n", saveAs)
	}

	if !run {
		return nil
	}

	result, err := a.session.RunCurrentQuery(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	printResult(a, result)

	return nil
}

// buildSelect applies opts to the session's query and returns the compiled SELECT
func buildSelect(ctx context.Context, a *app, opts selectOptions) (string, error) {
	refs := make([]catalog.FieldRef, 0, len(opts.fields))
	for _, f := range opts.fields {
		ref, err := catalog.ParseFieldRef(f)
		if err != nil {
			return "", err
		}

		refs = append(refs, ref)
	}

	// Toggling twice deselects, so each table is toggled exactly once
	var tables []string
	for _, t := range opts.tables {
		if !slices.Contains(tables, t) {
			tables = append(tables, t)
		}
	}

	for _, ref := range refs {
		if !slices.Contains(tables, ref.Table) {
			tables = append(tables, ref.Table)
		}
	}

	if len(tables) == 0 {
		return "", errors.New(errors.ErrTypeEmptySelection, "no tables selected").
			WithSuggestion("Select tables with --table or fields with --field table.field")
	}

	for _, t := range tables {
		if _, err := a.session.ToggleTable(ctx, t); err != nil {
			return "", err
		}
	}

	for _, ref := range refs {
		if _, err := a.session.ToggleField(ctx, ref.Table, ref.Field); err != nil {
			return "", err
		}
	}

	from := opts.from
	if from == "" {
		from = tables[0]
	}

	screen, err := a.registry.Dispatch(ctx, commands.Select, commands.OpenContext{Table: from})
	if err != nil {
		return "", err
	}

	if a.cfg.Debug.Verbose {
		fmt.Fprintln(a.errOut, screen.HelpText())
	}

	for _, value := range opts.joins {
		if err := applyJoinFlag(ctx, a, value); err != nil {
			return "", err
		}
	}

	if a.cfg.Debug.Verbose {
		if js, err := a.session.JoinViewModel(ctx, from); err == nil {
			fmt.Fprintln(a.errOut, a.formatter.FormatJoins(from, js))
		}
	}

	return a.session.CompileCurrentQuery(ctx)
}

// parseJoinFlag parses "target:TYPE:left OP right". The condition may be omitted to set
// only the join type.
func parseJoinFlag(value string) (joins.Join, error) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 {
		return joins.Join{}, errors.Newf(errors.ErrTypeValidation, "invalid join %q", value).
			WithSuggestion(`Use "target:TYPE:left OP right", e.g. "orders:INNER:customers.id = orders.customer_id"`)
	}

	j := joins.Join{Target: strings.TrimSpace(parts[0])}

	jt, err := joins.ParseJoinType(parts[1])
	if err != nil {
		return joins.Join{}, err
	}

	j.Type = jt

	if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
		return j, nil
	}

	cond := parts[2]

	i := strings.IndexAny(cond, "<>=")
	if i < 0 {
		return joins.Join{}, errors.Newf(errors.ErrTypeValidation, "join condition %q has no operator (expected <, > or =)", cond)
	}

	if j.Operator, err = joins.ParseOperator(cond[i : i+1]); err != nil {
		return joins.Join{}, err
	}

	if j.Left, err = catalog.ParseFieldRef(strings.TrimSpace(cond[:i])); err != nil {
		return joins.Join{}, err
	}

	if j.Right, err = catalog.ParseFieldRef(strings.TrimSpace(cond[i+1:])); err != nil {
		return joins.Join{}, err
	}

	return j, nil
}

func applyJoinFlag(ctx context.Context, a *app, value string) error {
	j, err := parseJoinFlag(value)
	if err != nil {
		return err
	}

	if err := a.session.SetJoinType(j.Target, j.Type); err != nil {
		return err
	}

	if j.Operator == joins.NoOperator {
		return nil
	}

	return a.session.SetMatch(ctx, j.Target, j.Left, j.Operator, j.Right)
}
