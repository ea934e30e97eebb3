package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecQuery(t *testing.T) {
	env := newTestEnv(t)
	a, out, errOut := env.open(t)

	require.NoError(t, runExec(context.Background(), a, execOptions{query: "SELECT COUNT(*) AS n FROM orders", quiet: true}))

	assert.Equal(t, "n\n3\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunExecWithSpinner(t *testing.T) {
	env := newTestEnv(t)
	a, out, _ := env.open(t)

	require.NoError(t, runExec(context.Background(), a, execOptions{query: "SELECT name FROM customers WHERE id = ?", args: []string{"2"}}))
	assert.Equal(t, "name\nBrian\n", out.String())
}

func TestRunExecWriteWithoutCommit(t *testing.T) {
	env := newTestEnv(t)

	a, out, errOut := env.open(t)
	require.NoError(t, runExec(context.Background(), a, execOptions{
		query: "INSERT INTO customers (id, name) VALUES (?, ?)",
		args:  []string{"3", "Cy"},
		quiet: true,
	}))

	assert.Equal(t, "1 row affected\n", out.String())
	assert.Contains(t, errOut.String(), "rerun with --commit")
	assert.True(t, a.session.Status().Pending)
	require.NoError(t, a.Close())

	assert.Equal(t, "2", env.scalar(t, "SELECT COUNT(*) FROM customers"))
}

func TestRunExecWriteWithCommit(t *testing.T) {
	env := newTestEnv(t)

	a, _, errOut := env.open(t)
	require.NoError(t, runExec(context.Background(), a, execOptions{
		query:  "INSERT INTO customers (id, name) VALUES (?, ?)",
		args:   []string{"3", "Cy"},
		commit: true,
		quiet:  true,
	}))

	assert.Empty(t, errOut.String())
	assert.Equal(t, "test.db", a.session.Status().Label)
	require.NoError(t, a.Close())

	assert.Equal(t, "3", env.scalar(t, "SELECT COUNT(*) FROM customers"))
}

func TestRunExecErrors(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := env.open(t)

	assert.Error(t, runExec(context.Background(), a, execOptions{query: "   ", quiet: true}))
	assert.Error(t, runExec(context.Background(), a, execOptions{query: "SELECT * FROM invoices", quiet: true}))
}
