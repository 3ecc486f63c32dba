package lake

import (
	"context"
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"covidlab/internal/config"
	"covidlab/pkg/contracts/domain"
)

// TableName derives the lake table name from a processed file name.
func TableName(file string) string {
	return strings.TrimSuffix(file, ".csv")
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type cell struct {
	row, col int
}

// presentCells lists the non-missing cells column by column.
func presentCells(c *domain.Columns, rows int) []cell {
	var out []cell
	for j, country := range c.Countries {
		values := c.Values[country]
		for i := 0; i < rows; i++ {
			if !math.IsNaN(values[i]) {
				out = append(out, cell{row: i, col: j})
			}
		}
	}
	return out
}

// WriteSeries stores a time series in tidy form (date, country, value).
// Missing cells are not stored. It returns the number of rows written.
func (l *Lake) WriteSeries(ctx context.Context, name string, t *domain.TimeSeriesTable) (int, error) {
	cells := presentCells(&t.Columns, t.Len())
	cfg := TableConfig{Name: name, Columns: []string{"date:DATE", "country:VARCHAR", "value:DOUBLE"}}
	err := l.ReplaceViaCSV(ctx, cfg, len(cells), func(w *csv.Writer, i int) error {
		c := cells[i]
		country := t.Countries[c.col]
		return w.Write([]string{
			t.Dates[c.row].Format(config.DateLayout),
			country,
			formatValue(t.Values[country][c.row]),
		})
	})
	return len(cells), err
}

// WriteRelativeDays stores the days-since-threshold table as (day, country, value).
func (l *Lake) WriteRelativeDays(ctx context.Context, name string, t *domain.RelativeDayTable) (int, error) {
	cells := presentCells(&t.Columns, t.Len())
	cfg := TableConfig{Name: name, Columns: []string{"day:INTEGER", "country:VARCHAR", "value:DOUBLE"}}
	err := l.ReplaceViaCSV(ctx, cfg, len(cells), func(w *csv.Writer, i int) error {
		c := cells[i]
		country := t.Countries[c.col]
		return w.Write([]string{strconv.Itoa(c.row), country, formatValue(t.Values[country][c.row])})
	})
	return len(cells), err
}

// WriteCountryStats stores the latest snapshot; null metrics stay NULL.
func (l *Lake) WriteCountryStats(ctx context.Context, stats []domain.CountryStat) (int, error) {
	cols := []string{"country:VARCHAR"}
	for _, m := range domain.CaseMetrics {
		cols = append(cols, strings.ToLower(m)+":DOUBLE")
	}
	cfg := TableConfig{Name: TableName(config.CountryStatsFile), Columns: cols}
	err := l.ReplaceViaCSV(ctx, cfg, len(stats), func(w *csv.Writer, i int) error {
		s := stats[i]
		rec := []string{s.Country}
		for _, m := range domain.CaseMetrics {
			rec = append(rec, formatValue(s.Metric(m).Float()))
		}
		return w.Write(rec)
	})
	return len(stats), err
}

// WriteCountryContinents stores the coordinate and continent join.
func (l *Lake) WriteCountryContinents(ctx context.Context, rows []domain.CountryContinent) (int, error) {
	cfg := TableConfig{
		Name: TableName(config.CountryToContinentFile),
		Columns: []string{"country:VARCHAR", "lat:DOUBLE", "long:DOUBLE",
			"continent:VARCHAR", "country_code:VARCHAR"},
	}
	err := l.ReplaceViaCSV(ctx, cfg, len(rows), func(w *csv.Writer, i int) error {
		r := rows[i]
		return w.Write([]string{r.Country, formatValue(r.Latitude), formatValue(r.Longitude), r.Continent, r.Code})
	})
	return len(rows), err
}

// WriteCombined stores the socioeconomic dataset with its column names as is.
func (l *Lake) WriteCombined(ctx context.Context, ds *domain.CombinedDataset) (int, error) {
	cols := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		typ := "DOUBLE"
		if c == domain.ColCountry || c == domain.ColContinent {
			typ = "VARCHAR"
		}
		cols[i] = c + ":" + typ
	}
	cfg := TableConfig{Name: TableName(config.CombinedFile), Columns: cols}
	err := l.ReplaceViaCSV(ctx, cfg, len(ds.Rows), func(w *csv.Writer, i int) error {
		r := ds.Rows[i]
		rec := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			switch c {
			case domain.ColCountry:
				rec[j] = r.Country
			case domain.ColContinent:
				rec[j] = r.Continent
			default:
				v, ok := r.Values[c]
				if !ok {
					v = domain.Missing()
				}
				rec[j] = formatValue(v)
			}
		}
		return w.Write(rec)
	})
	return len(ds.Rows), err
}
