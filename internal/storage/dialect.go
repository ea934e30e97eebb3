package storage

// Dialect supplies the catalog queries of one database engine. TablesQuery returns one
// column of table names ordered by name; FieldsQuery returns (table, field) pairs ordered
// by table name then field name.
type Dialect interface {
	TablesQuery() string
	FieldsQuery() string
}

// DialectFor returns the dialect of driver, defaulting to SQLite
func DialectFor(driver Driver) Dialect {
	if driver == DriverDuckDB {
		return duckDBDialect{}
	}

	return sqliteDialect{}
}

type sqliteDialect struct{}

func (sqliteDialect) TablesQuery() string {
	return `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`
}

func (sqliteDialect) FieldsQuery() string {
	return `SELECT m.name AS table_name, p.name AS field_name
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
ORDER BY table_name, field_name`
}

type duckDBDialect struct{}

func (duckDBDialect) TablesQuery() string {
	return `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
ORDER BY table_name`
}

func (duckDBDialect) FieldsQuery() string {
	return `SELECT c.table_name, c.column_name
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema = 'main' AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.column_name`
}
