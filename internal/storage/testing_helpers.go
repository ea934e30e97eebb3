package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// CreateTestDatabase writes a SQLite database file built from ddl into a temporary
// directory and returns its path. The directory is removed when the test ends.
func CreateTestDatabase(t *testing.T, ddl string) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open(string(DriverSQLite), dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if ddl != "" {
		if _, err := db.Exec(ddl); err != nil {
			t.Fatalf("failed to apply test schema: %v", err)
		}
	}

	return dbPath
}

// NewTestDB opens a data source over a fresh database built from ddl.
// The connection is closed automatically when the test ends.
func NewTestDB(t *testing.T, ddl string) DataSource {
	t.Helper()

	ds, err := Open(context.Background(), OpenOptions{Path: CreateTestDatabase(t, ddl)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := ds.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return ds
}
