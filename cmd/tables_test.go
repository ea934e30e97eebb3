package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/errors"
)

func TestRunTables(t *testing.T) {
	env := newTestEnv(t)
	a, out, _ := env.open(t)

	require.NoError(t, runTables(context.Background(), a))
	assert.Equal(t, "customers\norders\n", out.String())
}

func TestRunFields(t *testing.T) {
	env := newTestEnv(t)

	t.Run("one table", func(t *testing.T) {
		a, out, _ := env.open(t)

		require.NoError(t, runFields(context.Background(), a, "customers"))
		assert.Equal(t, "id\nname\n", out.String())
	})

	t.Run("every table", func(t *testing.T) {
		a, out, _ := env.open(t)

		require.NoError(t, runFields(context.Background(), a, ""))
		assert.Equal(t, "customers.id\ncustomers.name\norders.customer_id\norders.id\norders.total\n", out.String())
	})

	t.Run("other tables", func(t *testing.T) {
		a, out, _ := env.open(t)

		require.NoError(t, runOtherFields(context.Background(), a, "orders"))
		assert.Equal(t, "customers.id\ncustomers.name\n", out.String())

		assert.Error(t, runOtherFields(context.Background(), a, ""))
	})

	t.Run("unknown table", func(t *testing.T) {
		a, _, _ := env.open(t)

		err := runFields(context.Background(), a, "invoices")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeUnknownIdentifier))
		assert.NotEmpty(t, errors.GetSuggestions(err))
	})
}
