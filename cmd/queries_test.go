package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/testutil"
)

func TestSaveAndRunQuery(t *testing.T) {
	env := newTestEnv(t)

	a, _, errOut := env.open(t)
	require.NoError(t, runSelect(context.Background(), a, shopSelect(), false, "shop"))
	assert.Contains(t, errOut.String(), "Saved query shop")

	names, err := a.store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, names)

	b, out, _ := env.open(t)
	require.NoError(t, runSavedQuery(context.Background(), b, "shop"))

	assert.Contains(t, out.String(), testutil.ShopQuery+"\n\n")
	assert.Contains(t, out.String(), "2\tBrian\t99.9")
}

func TestRunSavedQueryMissing(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := env.open(t)

	err := runSavedQuery(context.Background(), a, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestRunSavedQueryAgainstOtherSchema(t *testing.T) {
	env := newTestEnv(t)

	a, _, _ := env.open(t)
	require.NoError(t, runSelect(context.Background(), a, shopSelect(), false, "shop"))

	other := testEnv{
		path:       filepath.Join(t.TempDir(), "other.db"),
		queriesDir: env.queriesDir,
	}
	require.NoError(t, os.WriteFile(other.path, nil, 0o644))

	b, _, _ := other.open(t)

	err := runSavedQuery(context.Background(), b, "shop")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnknownIdentifier), err.Error())
	assert.Contains(t, err.Error(), "saved query shop does not fit this database")
}

func TestQueriesSubcommands(t *testing.T) {
	env := newTestEnv(t)

	base := []string{"--db", env.path, "--queries-dir", env.queriesDir, "--log-level", "error"}

	out, _, err := runCLI(t, append(base, "queries", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No saved queries")

	_, errOut, err := runCLI(t, append(base,
		"queries", "save",
		"--from", "customers",
		"--field", "customers.name",
		"shop",
	)...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Saved query shop")

	out, _, err = runCLI(t, append(base, "queries", "list")...)
	require.NoError(t, err)
	assert.Equal(t, "shop\n", out)

	out, _, err = runCLI(t, append(base, "queries", "show", "shop")...)
	require.NoError(t, err)
	assert.Contains(t, out, "name: shop")
	assert.Contains(t, out, "from: customers")

	out, _, err = runCLI(t, append(base, "--format", "plain", "queries", "run", "shop")...)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT customers.name FROM customers")
	assert.Contains(t, out, "Ada")

	_, _, err = runCLI(t, append(base, "queries", "delete", "shop")...)
	require.NoError(t, err)

	_, _, err = runCLI(t, append(base, "queries", "show", "shop")...)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestQueriesRequireName(t *testing.T) {
	newTestEnv(t)

	_, _, err := runCLI(t, "--queries-dir", t.TempDir(), "queries", "show")
	assert.Error(t, err)
}
