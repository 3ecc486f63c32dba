// Package exporter writes the processed tables.
//
// This package contains two writers:
//
// CSVWriter: writes a Table into the processed directory through a
// temporary file that is renamed into place on success. Floats use their
// shortest exact form and missing values are empty cells.
//
// WorkbookExporter: writes a set of tables into a single xlsx workbook,
// one sheet per table, for analysts who work in spreadsheets.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths)
//	path, err := w.WriteTable(exporter.TimeSeries(config.ConfirmedCasesFile, confirmed))
//
//	wb := exporter.NewWorkbookExporter(paths.WorkbookFile)
//	err = wb.Export(tables)
package exporter
