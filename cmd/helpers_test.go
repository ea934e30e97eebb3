package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/config"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/testutil"
)

// testEnv is a shop database and saved-query directory shared by the apps of one test
type testEnv struct {
	path       string
	queriesDir string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	t.Setenv("SQLITEGUI_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	return testEnv{
		path:       storage.CreateTestDatabase(t, testutil.ShopDDL+testutil.ShopSeed),
		queriesDir: filepath.Join(t.TempDir(), "queries"),
	}
}

func (e testEnv) config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Queries.Directory = e.queriesDir

	return cfg
}

// open returns an app over the shop database writing plain results to out
func (e testEnv) open(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	return e.openWith(t, e.config())
}

func (e testEnv) openWith(t *testing.T, cfg *config.Config) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer

	a, err := openApp(context.Background(), cfg, e.path, &out, &errOut, "plain")
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, a.Close())
	})

	return a, &out, &errOut
}

// scalar runs query in a fresh app and returns its plain output without the header
func (e testEnv) scalar(t *testing.T, query string) string {
	t.Helper()

	a, out, _ := e.open(t)
	require.NoError(t, runExec(context.Background(), a, execOptions{query: query, quiet: true}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	return string(lines[1])
}

func shopSelect() selectOptions {
	return selectOptions{
		from:   "customers",
		fields: []string{"customers.id", "customers.name", "orders.total"},
		joins:  []string{"orders:INNER:customers.id = orders.customer_id"},
	}
}
