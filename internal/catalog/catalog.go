// Package catalog reads table and field names from the connected database.
//
// The catalog never caches: DDL can run at any time through raw statements, so every
// call asks the data source again.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/storage"
)

// FieldRef identifies a field by its owning table
type FieldRef struct {
	Table string `json:"table" yaml:"table"`
	Field string `json:"field" yaml:"field"`
}

// String renders the reference as table.field
func (f FieldRef) String() string {
	return f.Table + "." + f.Field
}

// IsZero reports whether the reference is unset
func (f FieldRef) IsZero() bool {
	return f.Table == "" && f.Field == ""
}

// ParseFieldRef parses "table.field". The table part ends at the first dot.
func ParseFieldRef(s string) (FieldRef, error) {
	table, field, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || table == "" || field == "" {
		return FieldRef{}, errors.Newf(errors.ErrTypeValidation, "invalid field reference %q (expected table.field)", s)
	}

	return FieldRef{Table: table, Field: field}, nil
}

// Querier is the part of the data source the catalog needs
type Querier interface {
	Dialect() storage.Dialect
	Execute(ctx context.Context, query string, args ...any) (*storage.QueryResult, error)
}

// Catalog is a read-only view of the tables and fields of a data source
type Catalog struct {
	source Querier
}

// New creates a catalog over source
func New(source Querier) *Catalog {
	return &Catalog{source: source}
}

// ListTables returns table names ordered by name
func (c *Catalog) ListTables(ctx context.Context) ([]string, error) {
	res, err := c.source.Execute(ctx, c.source.Dialect().TablesQuery())
	if err != nil {
		return nil, wrap(err, "failed to list tables")
	}

	return res.FirstColumn(), nil
}

// ListFields returns every field ordered by table name then field name
func (c *Catalog) ListFields(ctx context.Context) ([]FieldRef, error) {
	res, err := c.source.Execute(ctx, c.source.Dialect().FieldsQuery())
	if err != nil {
		return nil, wrap(err, "failed to list fields")
	}

	fields := make([]FieldRef, 0, len(res.Rows))
	for _, row := range res.StringRows() {
		if len(row) < 2 {
			return nil, errors.Newf(errors.ErrTypeDataSource, "field listing returned %d columns, expected 2", len(row))
		}

		fields = append(fields, FieldRef{Table: row[0], Field: row[1]})
	}

	return fields, nil
}

// FieldsOf returns the field names of table ordered by name. An unknown table has no fields.
func (c *Catalog) FieldsOf(ctx context.Context, table string) ([]string, error) {
	all, err := c.ListFields(ctx)
	if err != nil {
		return nil, err
	}

	var out []string

	for _, f := range all {
		if f.Table == table {
			out = append(out, f.Field)
		}
	}

	return out, nil
}

// FieldsNotOf returns every field that does not belong to table
func (c *Catalog) FieldsNotOf(ctx context.Context, table string) ([]FieldRef, error) {
	all, err := c.ListFields(ctx)
	if err != nil {
		return nil, err
	}

	var out []FieldRef

	for _, f := range all {
		if f.Table != table {
			out = append(out, f)
		}
	}

	return out, nil
}

// HasTable reports whether table exists
func (c *Catalog) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false, err
	}

	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}

	return false, nil
}

// HasField reports whether ref names an existing field
func (c *Catalog) HasField(ctx context.Context, ref FieldRef) (bool, error) {
	fields, err := c.FieldsOf(ctx, ref.Table)
	if err != nil {
		return false, err
	}

	for _, f := range fields {
		if f == ref.Field {
			return true, nil
		}
	}

	return false, nil
}

// Snapshot reads tables and fields once so a caller validating many identifiers
// sees a single consistent schema
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := c.ListFields(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{tables: make(map[string]bool, len(tables)), fields: make(map[FieldRef]bool, len(fields))}
	for _, t := range tables {
		snap.tables[t] = true
	}

	for _, f := range fields {
		snap.fields[f] = true
	}

	return snap, nil
}

// Snapshot is a point-in-time copy of the schema used for identifier validation
type Snapshot struct {
	tables map[string]bool
	fields map[FieldRef]bool
}

// HasTable reports whether the snapshot contains table
func (s *Snapshot) HasTable(table string) bool {
	return s.tables[table]
}

// HasField reports whether the snapshot contains ref
func (s *Snapshot) HasField(ref FieldRef) bool {
	return s.fields[ref]
}

func wrap(err error, message string) error {
	if errors.IsType(err, errors.ErrTypeDataSource) {
		return fmt.Errorf("%s: %w", message, err)
	}

	return errors.NewDataSourceError(err, message)
}
