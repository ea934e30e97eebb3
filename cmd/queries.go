package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/logging"
)

func QueriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "queries",
		Usage: "Manage saved queries",
		Description: `Saved queries record the selected tables, fields and joins of a SELECT as YAML files
in the queries directory so they can be re-run later against the same database.`,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved queries",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					out, _ := writers(cmd)

					var names []string

					err = logging.LoggerMiddleware("list queries", func() error {
						var listErr error
						names, listErr = newStore(cfg).List()

						return listErr
					})
					if err != nil {
						return err
					}

					if len(names) == 0 {
						fmt.Fprintf(out, "No saved queries in %s\n", cfg.Queries.Directory)
						return nil
					}

					for _, name := range names {
						fmt.Fprintln(out, name)
					}

					return nil
				},
			},
			{
				Name:      "save",
				Usage:     "Build a SELECT and save it",
				ArgsUsage: " <name>",
				Flags:     selectFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := queryName(cmd)
					if err != nil {
						return err
					}

					a, err := initializeApp(ctx, cmd, "")
					if err != nil {
						return err
					}
					defer a.Close()

					return runSelect(ctx, a, selectOptionsFromFlags(cmd), false, name)
				},
			},
			{
				Name:      "show",
				Usage:     "Print a saved query",
				ArgsUsage: " <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := queryName(cmd)
					if err != nil {
						return err
					}

					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					out, _ := writers(cmd)

					def, err := newStore(cfg).Load(name)
					if err != nil {
						return err
					}

					data, err := yaml.Marshal(def)
					if err != nil {
						return errors.Wrap(err, errors.ErrTypeInternal, "failed to encode saved query")
					}

					_, err = out.Write(data)

					return err
				},
			},
			{
				Name:      "run",
				Usage:     "Rebuild a saved query against the database and run it",
				ArgsUsage: " <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := queryName(cmd)
					if err != nil {
						return err
					}

					a, err := initializeApp(ctx, cmd, "")
					if err != nil {
						return err
					}
					defer a.Close()

					return runSavedQuery(ctx, a, name)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved query",
				ArgsUsage: " <name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := queryName(cmd)
					if err != nil {
						return err
					}

					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}

					err = logging.LoggerMiddleware("delete query", func() error {
						return newStore(cfg).Delete(name)
					})
					if err != nil {
						return err
					}

					_, errOut := writers(cmd)
					fmt.Fprintf(errOut, "Deleted query %s\n", name)

					return nil
				},
			},
		},
	}
}

func queryName(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly 1 query name, got %d", cmd.Args().Len())
	}

	return cmd.Args().First(), nil
}

func runSavedQuery(ctx context.Context, a *app, name string) error {
	def, err := a.store.Load(name)
	if err != nil {
		return err
	}

	if err := a.session.ApplyDefinition(ctx, def); err != nil {
		wrapped := errors.Wrapf(err, errors.GetType(err), "saved query %s does not fit this database", name)
		wrapped.Suggestions = errors.GetSuggestions(err)

		return wrapped
	}

	query, err := a.session.CompileCurrentQuery(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, query)
	fmt.Fprintln(a.out)

	result, err := a.session.RunCurrentQuery(ctx)
	if err != nil {
		return err
	}

	printResult(a, result)

	return nil
}
