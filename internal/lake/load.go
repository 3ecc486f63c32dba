package lake

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "covidlab/internal/errors"
)

// TableConfig describes one lake table.
type TableConfig struct {
	// Name is the table name
	Name string
	// Columns are name:type pairs in order, e.g. "date:DATE", "value:DOUBLE"
	Columns []string
}

func (c TableConfig) columnDefs() ([]string, []string, error) {
	if c.Name == "" {
		return nil, nil, apperrors.NewValidationError("lake: table name cannot be empty")
	}
	if len(c.Columns) == 0 {
		return nil, nil, apperrors.NewValidationError("lake: columns cannot be empty")
	}
	names := make([]string, 0, len(c.Columns))
	defs := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		name, typ, ok := strings.Cut(col, ":")
		if !ok {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("lake: invalid column definition %q: expected format 'name:type'", col))
		}
		name = strings.TrimSpace(name)
		names = append(names, name)
		defs = append(defs, quoteIdent(name)+" "+strings.TrimSpace(typ))
	}
	return names, defs, nil
}

// ReplaceViaCSV replaces a table with count rows. Rows are written by
// writeRow into a temporary CSV that DuckDB loads with COPY inside one
// transaction, so readers see either the old or the new table.
func (l *Lake) ReplaceViaCSV(ctx context.Context, cfg TableConfig, count int, writeRow func(w *csv.Writer, i int) error) error {
	start := time.Now()
	_, defs, err := cfg.columnDefs()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", cfg.Name+"_*.csv")
	if err != nil {
		return apperrors.NewStorageError("lake: failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	w := csv.NewWriter(tmp)
	for i := range count {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("lake: cancelled while writing %s: %w", cfg.Name, err)
		}
		if err := writeRow(w, i); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("lake: failed to write row %d of %s", i, cfg.Name), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewStorageError("lake: failed to flush CSV", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("lake: failed to close CSV", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("lake: failed to begin transaction for "+cfg.Name, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.log.Error("lake: failed to rollback transaction", "table", cfg.Name, "error", err)
		}
	}()

	table := quoteIdent(cfg.Name)
	createSQL := fmt.Sprintf("CREATE OR REPLACE TABLE %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return apperrors.NewStorageError("lake: failed to create "+cfg.Name, err)
	}
	if count > 0 {
		copySQL := fmt.Sprintf("COPY %s FROM %s (FORMAT CSV, HEADER false)", table, quoteLiteral(tmp.Name()))
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return apperrors.NewStorageError("lake: failed to COPY into "+cfg.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("lake: failed to commit "+cfg.Name, err)
	}

	l.log.Debug("lake: table replaced",
		"table", cfg.Name,
		"rows", count,
		"duration", time.Since(start).String())
	return nil
}
