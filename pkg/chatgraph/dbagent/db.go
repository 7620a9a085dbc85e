// Package dbagent implements the database sub-agent: a linear pipeline
// that turns a natural language question into a SQL query, runs it
// under safety guards, and explains the results. It is surfaced to the
// chat agent as the database_query and database_schema tools.
package dbagent

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sqlite database the sub-agent queries.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) a sqlite database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dbagent: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbagent: ping database: %w", err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an already-open database handle. The caller keeps
// ownership of the handle.
func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

// Close releases the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Schema returns a textual description of every user table: columns
// with types and constraints, plus row counts. The description is fed
// to the model as context for SQL generation.
func (d *DB) Schema(ctx context.Context) (string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("dbagent: list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("dbagent: scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("dbagent: list tables: %w", err)
	}

	var b strings.Builder
	b.WriteString("Database Schema:\n\n")

	for _, table := range tables {
		fmt.Fprintf(&b, "Table: %s\n", table)
		if err := d.describeTable(ctx, &b, table); err != nil {
			return "", err
		}

		var count int64
		// Table names come from sqlite_master, not user input.
		if err := d.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", table)).Scan(&count); err != nil {
			return "", fmt.Errorf("dbagent: count rows in %s: %w", table, err)
		}
		fmt.Fprintf(&b, "  Rows: %d\n\n", count)
	}

	return b.String(), nil
}

func (d *DB) describeTable(ctx context.Context, b *strings.Builder, table string) error {
	cols, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return fmt.Errorf("dbagent: describe %s: %w", table, err)
	}
	defer cols.Close()

	for cols.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := cols.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("dbagent: scan column of %s: %w", table, err)
		}
		fmt.Fprintf(b, "  - %s: %s", name, colType)
		if pk != 0 {
			b.WriteString(" (PRIMARY KEY)")
		}
		if notNull != 0 {
			b.WriteString(" (NOT NULL)")
		}
		if dflt.Valid {
			fmt.Fprintf(b, " (DEFAULT: %s)", dflt.String)
		}
		b.WriteString("\n")
	}
	return cols.Err()
}

// Query runs a SQL statement and returns up to maxRows rows as
// column-keyed maps, in result order.
func (d *DB) Query(ctx context.Context, query string, maxRows int) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dbagent: execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dbagent: read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		if maxRows > 0 && len(results) >= maxRows {
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("dbagent: scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dbagent: iterate rows: %w", err)
	}
	return results, nil
}
