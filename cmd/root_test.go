package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/errors"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := NewRootCommand()
	root.Writer = &out
	root.ErrWriter = &errOut

	err := root.Run(context.Background(), append([]string{"sqlitegui"}, args...))

	return out.String(), errOut.String(), err
}

func TestRootOverview(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := runCLI(t, "--queries-dir", env.queriesDir, "--log-level", "error", env.path)
	require.NoError(t, err)

	assert.Contains(t, out, "test.db - SQLiteGUI")
	assert.Contains(t, out, "Connected to test.db")
	assert.Contains(t, out, "Tables:\ncustomers\norders")
	assert.Contains(t, out, "Commands: SELECT, UPDATE")
}

func TestRootMemoryDatabase(t *testing.T) {
	newTestEnv(t)

	out, _, err := runCLI(t, "--log-level", "error", "--queries-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "Connected to Unsaved memory database")
}

func TestRootRejectsExtraArguments(t *testing.T) {
	newTestEnv(t)

	_, _, err := runCLI(t, "a.db", "b.db")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestRootMissingDatabase(t *testing.T) {
	newTestEnv(t)

	_, _, err := runCLI(t, "--log-level", "error", "/nonexistent/dir/shop.db")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataSource))
}

func TestTablesSubcommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := runCLI(t, "--db", env.path, "--log-level", "error", "tables")
	require.NoError(t, err)
	assert.Equal(t, "customers\norders\n", out)
}

func TestSelectSubcommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := runCLI(t,
		"--db", env.path, "--log-level", "error", "--format", "plain",
		"select",
		"--from", "customers",
		"--field", "customers.id", "--field", "customers.name", "--field", "orders.total",
		"--join", "orders:INNER:customers.id = orders.customer_id",
		"--run",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT customers.id, customers.name, orders.total FROM customers")
	assert.Contains(t, out, "1\tAda\t25.5")
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := runCLI(t, "--db", env.path, "--format", "csv", "tables")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer

	printError(&buf, errors.New(errors.ErrTypeNotFound, "saved query x not found").
		WithSuggestion("Run 'sqlitegui queries list'"))

	assert.Equal(t, "Error: not_found: saved query x not found\n  Suggestion: Run 'sqlitegui queries list'\n", buf.String())
}
