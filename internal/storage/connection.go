package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/kyleking/sqlitegui/internal/errors"
)

// MemoryPath is the sentinel path of a transient database with no backing file
const MemoryPath = ":memory:"

// Driver names a database/sql driver supported by the data source
type Driver string

const (
	DriverAuto   Driver = "auto"
	DriverSQLite Driver = "sqlite3"
	DriverDuckDB Driver = "duckdb"
)

// DataSource is the boundary to the database engine. Implementations execute one
// statement at a time; writes accumulate in a transaction until Commit.
type DataSource interface {
	Name() string
	Path() string
	Driver() Driver
	Dialect() Dialect
	Execute(ctx context.Context, query string, args ...any) (*QueryResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	InTransaction() bool
	Close() error
}

// OpenOptions configures Open
type OpenOptions struct {
	Path         string
	Driver       Driver
	QueryTimeout time.Duration
}

// Opener opens a data source. Open is the production implementation.
type Opener func(ctx context.Context, opts OpenOptions) (DataSource, error)

// Connection is a DataSource backed by a single database/sql connection
type Connection struct {
	mu      sync.Mutex
	db      *sql.DB
	tx      *sql.Tx
	path    string
	driver  Driver
	dialect Dialect
	timeout time.Duration
	closed  bool
}

var _ DataSource = (*Connection)(nil)

// Open opens the database at opts.Path. An empty path or MemoryPath opens a transient
// database; any other path must name an existing file.
func Open(ctx context.Context, opts OpenOptions) (DataSource, error) {
	path := opts.Path
	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.NewDataSourceError(err, fmt.Sprintf("cannot open database %s", path)).
				WithSuggestion("Check that the file exists and is readable")
		}

		if info.IsDir() {
			return nil, errors.Newf(errors.ErrTypeDataSource, "cannot open database %s: path is a directory", path)
		}
	}

	driver := ResolveDriver(path, opts.Driver)

	db, err := sql.Open(string(driver), dataSourceName(driver, path))
	if err != nil {
		return nil, errors.NewDataSourceError(err, "failed to open database")
	}

	// A single connection keeps :memory: databases alive and serializes statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewDataSourceError(err, fmt.Sprintf("failed to connect to %s", path))
	}

	conn := NewConnection(db, path, driver)
	conn.timeout = opts.QueryTimeout

	return conn, nil
}

// NewConnection wraps an already opened *sql.DB
func NewConnection(db *sql.DB, path string, driver Driver) *Connection {
	return &Connection{
		db:      db,
		path:    path,
		driver:  driver,
		dialect: DialectFor(driver),
	}
}

// ResolveDriver picks the driver for path. DriverAuto selects DuckDB for .duckdb and
// .ddb files and SQLite for everything else.
func ResolveDriver(path string, driver Driver) Driver {
	switch Driver(strings.ToLower(string(driver))) {
	case DriverSQLite:
		return DriverSQLite
	case DriverDuckDB:
		return DriverDuckDB
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".duckdb", ".ddb":
		return DriverDuckDB
	default:
		return DriverSQLite
	}
}

func dataSourceName(driver Driver, path string) string {
	if driver == DriverDuckDB && path == MemoryPath {
		return ""
	}

	return path
}

// Name returns the file name shown to the user, or MemoryPath for a transient database
func (c *Connection) Name() string {
	if c.path == MemoryPath {
		return MemoryPath
	}

	return filepath.Base(c.path)
}

// Path returns the path the connection was opened with
func (c *Connection) Path() string {
	return c.path
}

// Driver returns the database/sql driver in use
func (c *Connection) Driver() Driver {
	return c.driver
}

// Dialect returns the catalog queries for the driver
func (c *Connection) Dialect() Dialect {
	return c.dialect
}

// InTransaction reports whether uncommitted writes may be pending
func (c *Connection) InTransaction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tx != nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Execute runs a single statement with positional args. Reads report RowsAffected as
// NoRowCount; writes open a transaction if none is active.
func (c *Connection) Execute(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New(errors.ErrTypeDataSource, "connection is closed")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()

	var (
		result *QueryResult
		err    error
	)

	switch {
	case !Modifies(query):
		result, err = c.query(ctx, c.active(), query, args)
	case ReturnsRows(query):
		result, err = c.queryWrite(ctx, query, args)
	default:
		result, err = c.exec(ctx, query, args)
	}

	if err != nil {
		return nil, errors.NewDataSourceError(err, "statement failed")
	}

	result.Elapsed = time.Since(start)

	return result, nil
}

func (c *Connection) active() querier {
	if c.tx != nil {
		return c.tx
	}

	return c.db
}

func (c *Connection) query(ctx context.Context, q querier, query string, args []any) (*QueryResult, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{RowsAffected: NoRowCount, Columns: columns}

	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))

		for i := range vals {
			ptrs[i] = &vals[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}

		result.Rows = append(result.Rows, vals)
	}

	return result, rows.Err()
}

func (c *Connection) begin(ctx context.Context) error {
	if c.tx != nil {
		return nil
	}

	// The transaction outlives this statement, so it must not be tied to a per-statement timeout.
	tx, err := c.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	c.tx = tx

	return nil
}

// queryWrite runs a write with a RETURNING clause. Every returned row is one affected row.
func (c *Connection) queryWrite(ctx context.Context, query string, args []any) (*QueryResult, error) {
	if err := c.begin(ctx); err != nil {
		return nil, err
	}

	result, err := c.query(ctx, c.tx, query, args)
	if err != nil {
		return nil, err
	}

	result.RowsAffected = int64(len(result.Rows))

	return result, nil
}

func (c *Connection) exec(ctx context.Context, query string, args []any) (*QueryResult, error) {
	if err := c.begin(ctx); err != nil {
		return nil, err
	}

	res, err := c.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		affected = NoRowCount
	}

	return &QueryResult{RowsAffected: affected}, nil
}

// Commit commits pending writes. Committing with nothing pending is a no-op.
func (c *Connection) Commit(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New(errors.ErrTypeDataSource, "connection is closed")
	}

	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Commit(); err != nil {
		return errors.NewDataSourceError(err, "commit failed")
	}

	return nil
}

// Rollback discards pending writes
func (c *Connection) Rollback(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rollbackLocked()
}

func (c *Connection) rollbackLocked() error {
	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Rollback(); err != nil {
		return errors.NewDataSourceError(err, "rollback failed")
	}

	return nil
}

// Close discards uncommitted writes and closes the database. Close is idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	rbErr := c.rollbackLocked()

	if err := c.db.Close(); err != nil {
		return errors.NewDataSourceError(err, "failed to close database")
	}

	return rbErr
}
