// Package engine wraps the embedded DuckDB instance: connection setup,
// identifier quoting, and catalog introspection. All other packages talk to
// the analytical table through the querier interface defined here.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver

	"looksee/internal/domain"
)

// Querier is the subset of *sql.DB the services need. Tests substitute a
// counting wrapper to observe how often the engine is actually invoked.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens an in-memory DuckDB database. The table produced by ingestion
// lives only for the process lifetime.
func Open() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return db, nil
}

// QuoteIdent quotes a table or column name for interpolation into SQL.
// Embedded double quotes are doubled per the SQL standard.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal for interpolation into SQL.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ListColumns enumerates the columns of a table from the engine catalog,
// in ordinal position order.
func ListColumns(ctx context.Context, db Querier, table string) ([]domain.Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT column_name, data_type
		 FROM information_schema.columns
		 WHERE table_name = ?
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("catalog query for %q: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []domain.Column
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}
	return cols, nil
}

// LookupColumn returns the catalog entry for one column of a table.
// Column names are always existence-checked here before any interpolation
// into aggregate queries.
func LookupColumn(ctx context.Context, db Querier, table, column string) (domain.Column, error) {
	cols, err := ListColumns(ctx, db, table)
	if err != nil {
		return domain.Column{}, err
	}
	for _, c := range cols {
		if c.Name == column {
			return c, nil
		}
	}
	return domain.Column{}, domain.ErrNotFound("column %q not found in table %q", column, table)
}

// TableExists reports whether the named table is present in the catalog.
func TableExists(ctx context.Context, db Querier, table string) (bool, error) {
	var n int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("table lookup for %q: %w", table, err)
	}
	return n > 0, nil
}

// DropTable drops the named table if present. Absence is not an error.
func DropTable(ctx context.Context, db Querier, table string) error {
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(table))
	if err != nil {
		return fmt.Errorf("drop table %q: %w", table, err)
	}
	return nil
}
