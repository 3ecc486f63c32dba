package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
)

// CSVWriter writes processed tables into the processed directory.
// Files are written to a temporary sibling and renamed into place, so a
// failed write never leaves a partial table behind.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteTable writes t to its file name and returns the full path.
func (w *CSVWriter) WriteTable(t Table) (string, error) {
	sw, err := w.CreateStreamWriter(t.Name, t.Header)
	if err != nil {
		return "", err
	}
	for i, row := range t.Rows {
		if err := sw.WriteRecord(formatRow(row)); err != nil {
			sw.Abort()
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write record %d of %s", i, t.Name), err)
		}
	}
	if err := sw.Commit(); err != nil {
		return "", err
	}

	slog.Info("Wrote table",
		slog.String("file_path", sw.path),
		slog.Int("record_count", len(t.Rows)))
	return sw.path, nil
}

// StreamWriter writes one CSV file row by row into a temporary file.
// Commit publishes it under its final name; Abort discards it.
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory "+dir, err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create temporary file for "+fullPath, err)
	}

	s := &StreamWriter{path: fullPath, file: file, writer: csv.NewWriter(file)}
	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError("failed to write headers", err)
		}
	}
	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Commit flushes the stream and renames it into place.
func (s *StreamWriter) Commit() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return apperrors.NewStorageError("failed to flush "+s.path, err)
	}
	if err := s.file.Close(); err != nil {
		os.Remove(s.file.Name())
		return apperrors.NewStorageError("failed to close "+s.path, err)
	}
	if err := os.Rename(s.file.Name(), s.path); err != nil {
		os.Remove(s.file.Name())
		return apperrors.NewStorageError("failed to publish "+s.path, err)
	}
	return nil
}

// Abort discards the temporary file. The destination is left untouched.
func (s *StreamWriter) Abort() {
	s.file.Close()
	os.Remove(s.file.Name())
}

// Path returns the destination path
func (s *StreamWriter) Path() string { return s.path }

// resolvePath keeps absolute paths and places relative ones in the processed dir
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.ProcessedPath(filePath)
}
