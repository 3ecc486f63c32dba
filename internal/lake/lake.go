package lake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	apperrors "covidlab/internal/errors"
)

// Lake is a DuckDB file holding the processed tables for ad-hoc SQL.
type Lake struct {
	log  *slog.Logger
	db   *sql.DB
	path string
}

// Open opens or creates the DuckDB database at path.
func Open(ctx context.Context, path string, log *slog.Logger) (*Lake, error) {
	if path == "" {
		return nil, apperrors.NewConfigError("lake path is required", nil)
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create lake directory", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("failed to connect to "+path, err)
	}

	log.Debug("lake: opened", "path", path)
	return &Lake{log: log, db: db, path: path}, nil
}

// Close closes the database
func (l *Lake) Close() error {
	return l.db.Close()
}

// Path returns the database file
func (l *Lake) Path() string { return l.path }

// Tables lists the tables of the main schema, sorted.
func (l *Lake) Tables(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name`)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list tables", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewStorageError("failed to scan table name", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Count returns the number of rows of a table
func (l *Lake) Count(ctx context.Context, table string) (int, error) {
	var n int
	q := fmt.Sprintf("SELECT count(*) FROM %s", quoteIdent(table))
	if err := l.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, apperrors.NewStorageError("failed to count "+table, err)
	}
	return n, nil
}

// QueryRowContext runs a single-row query, for callers that need ad-hoc SQL.
func (l *Lake) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return l.db.QueryRowContext(ctx, query, args...)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
