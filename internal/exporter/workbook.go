package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "covidlab/internal/errors"
)

const defaultSheet = "Sheet1"

// WorkbookExporter writes processed tables into one xlsx workbook, one
// sheet per table, in the order given.
type WorkbookExporter struct {
	path string
}

// NewWorkbookExporter creates an exporter writing to path
func NewWorkbookExporter(path string) *WorkbookExporter {
	return &WorkbookExporter{path: path}
}

// Export writes the workbook. Like CSVWriter it saves to a temporary file
// first and renames it into place.
func (w *WorkbookExporter) Export(tables []Table) error {
	if len(tables) == 0 {
		return apperrors.NewValidationError("workbook: no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for n, t := range tables {
		sheet := t.Sheet()
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return apperrors.NewStorageError("workbook: failed to add sheet "+sheet, err)
		}
		if n == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return apperrors.NewStorageError("workbook: failed to remove default sheet", err)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return apperrors.NewStorageError("workbook: failed to create directory", err)
	}
	tmp := w.path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError("workbook: failed to save "+w.path, err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError("workbook: failed to publish "+w.path, err)
	}

	slog.Info("Wrote workbook",
		slog.String("file_path", w.path),
		slog.Int("sheets", len(tables)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, t Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return apperrors.NewStorageError("workbook: failed to stream sheet "+sheet, err)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewStorageError("workbook: failed to write header of "+sheet, err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("workbook: row %d of %s", i, sheet), err)
		}
		if err := sw.SetRow(cell, sheetRow(row)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("workbook: failed to write row %d of %s", i, sheet), err)
		}
	}
	return sw.Flush()
}

// sheetRow keeps numbers numeric; missing and infinite values are blank cells.
func sheetRow(row []any) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				out[i] = nil
			} else {
				out[i] = x
			}
		case int:
			out[i] = x
		default:
			out[i] = formatCell(v)
		}
	}
	return out
}
