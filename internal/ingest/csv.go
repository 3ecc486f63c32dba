package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "covidlab/internal/errors"
)

// csvFile is an open CSV file positioned after its header row.
type csvFile struct {
	path   string
	f      *os.File
	r      *csv.Reader
	header []string
}

func openCSV(path string) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		f.Close()
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: empty file", path), nil)
	}
	if err != nil {
		f.Close()
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: failed reading header", path), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &csvFile{path: path, f: f, r: r, header: header}, nil
}

func (c *csvFile) Close() error {
	return c.f.Close()
}

// source is the file name used in error messages
func (c *csvFile) source() string {
	return filepath.Base(c.path)
}

// index returns the position of every named column, failing with a schema
// error on the first one that is absent.
func (c *csvFile) index(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for n, name := range names {
		found := false
		for i, h := range c.header {
			if h == name {
				out[n] = i
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.NewSchemaError(c.source(), name)
		}
	}
	return out, nil
}

// each calls fn for every data row. line is the 1-based file line.
func (c *csvFile) each(fn func(line int, rec []string) error) error {
	line := 1
	for {
		rec, err := c.r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return apperrors.NewParsingError(fmt.Sprintf("%s: line %d", c.source(), line), err)
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// parseValue parses a numeric cell. Empty cells are missing (NaN).
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func (c *csvFile) valueError(line int, column, value string, err error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("%s: line %d: column %q: bad value %q", c.source(), line, column, value), err)
}
