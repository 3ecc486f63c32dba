package ingest

import (
	"fmt"
	"strings"
	"time"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// ReadTimeSeries reads a processed Date-first table such as confirmed_cases.csv.
func ReadTimeSeries(path string) (*domain.TimeSeriesTable, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(domain.ColDate)
	if err != nil {
		return nil, err
	}
	dateCol := idx[0]
	countryCols, err := c.countryColumns(dateCol)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	cols := make(map[int][]float64, len(countryCols))
	err = c.each(func(line int, rec []string) error {
		d, err := time.Parse(config.DateLayout, strings.TrimSpace(rec[dateCol]))
		if err != nil {
			return c.valueError(line, domain.ColDate, rec[dateCol], err)
		}
		dates = append(dates, d)
		for _, i := range countryCols {
			v, err := parseValue(rec[i])
			if err != nil {
				return c.valueError(line, c.header[i], rec[i], err)
			}
			cols[i] = append(cols[i], v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := domain.NewTimeSeriesTable(dates)
	for _, i := range countryCols {
		v := cols[i]
		if v == nil {
			v = []float64{}
		}
		table.SetColumn(c.header[i], v)
	}
	if err := table.Validate(); err != nil {
		return nil, apperrors.NewParsingError(c.source(), err)
	}
	return table, nil
}

// ReadRelativeDays reads confirmed_cases_since_t0.csv, where every column is
// a country and row i is day i since the threshold.
func ReadRelativeDays(path string) (*domain.RelativeDayTable, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	countryCols, err := c.countryColumns(-1)
	if err != nil {
		return nil, err
	}

	rows := 0
	cols := make(map[int][]float64, len(countryCols))
	err = c.each(func(line int, rec []string) error {
		rows++
		for _, i := range countryCols {
			v, err := parseValue(rec[i])
			if err != nil {
				return c.valueError(line, c.header[i], rec[i], err)
			}
			cols[i] = append(cols[i], v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := domain.NewRelativeDayTable(rows)
	for _, i := range countryCols {
		v := cols[i]
		if v == nil {
			v = []float64{}
		}
		table.SetColumn(c.header[i], v)
	}
	return table, nil
}

// countryColumns returns every column except skip, rejecting duplicate names.
func (c *csvFile) countryColumns(skip int) ([]int, error) {
	seen := make(map[string]bool, len(c.header))
	var out []int
	for i, h := range c.header {
		if i == skip {
			continue
		}
		if h == "" {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: empty column name at %d", c.source(), i), nil)
		}
		if seen[h] {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: duplicate column %q", c.source(), h), nil)
		}
		seen[h] = true
		out = append(out, i)
	}
	return out, nil
}

// ReadCountryRecords reads continents.csv
func ReadCountryRecords(path string) ([]domain.CountryRecord, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(domain.ColContinent, domain.ColCountryCode, domain.ColCountry)
	if err != nil {
		return nil, err
	}

	var out []domain.CountryRecord
	err = c.each(func(_ int, rec []string) error {
		out = append(out, domain.CountryRecord{
			Continent: rec[idx[0]],
			Code:      rec[idx[1]],
			Country:   rec[idx[2]],
		})
		return nil
	})
	return out, err
}

// ReadCoordinates reads coordinates.csv
func ReadCoordinates(path string) ([]domain.Coordinate, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(domain.ColCountry, domain.ColLat, domain.ColLong)
	if err != nil {
		return nil, err
	}

	var out []domain.Coordinate
	err = c.each(func(line int, rec []string) error {
		lat, err := parseValue(rec[idx[1]])
		if err != nil {
			return c.valueError(line, domain.ColLat, rec[idx[1]], err)
		}
		long, err := parseValue(rec[idx[2]])
		if err != nil {
			return c.valueError(line, domain.ColLong, rec[idx[2]], err)
		}
		out = append(out, domain.Coordinate{Country: rec[idx[0]], Latitude: lat, Longitude: long})
		return nil
	})
	return out, err
}

// ReadCountryContinents reads country_to_continent.csv
func ReadCountryContinents(path string) ([]domain.CountryContinent, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(domain.ColCountry, domain.ColLat, domain.ColLong, domain.ColContinent, domain.ColCountryCode)
	if err != nil {
		return nil, err
	}

	var out []domain.CountryContinent
	err = c.each(func(line int, rec []string) error {
		lat, err := parseValue(rec[idx[1]])
		if err != nil {
			return c.valueError(line, domain.ColLat, rec[idx[1]], err)
		}
		long, err := parseValue(rec[idx[2]])
		if err != nil {
			return c.valueError(line, domain.ColLong, rec[idx[2]], err)
		}
		out = append(out, domain.CountryContinent{
			Country:   rec[idx[0]],
			Latitude:  lat,
			Longitude: long,
			Continent: rec[idx[3]],
			Code:      rec[idx[4]],
		})
		return nil
	})
	return out, err
}

// ReadCountryStats reads country_stats.csv. Empty cells are null metrics.
func ReadCountryStats(path string) ([]domain.CountryStat, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(append([]string{domain.ColCountry}, domain.CaseMetrics...)...)
	if err != nil {
		return nil, err
	}

	var out []domain.CountryStat
	err = c.each(func(line int, rec []string) error {
		stat := domain.CountryStat{Country: rec[idx[0]]}
		for n, metric := range domain.CaseMetrics {
			col := idx[n+1]
			v, err := parseValue(rec[col])
			if err != nil {
				return c.valueError(line, metric, rec[col], err)
			}
			stat.SetMetric(metric, domain.Some(v))
		}
		out = append(out, stat)
		return nil
	})
	return out, err
}

// ReadCombined reads world_bank.csv. Every column other than Country and
// Continent is numeric.
func ReadCombined(path string) (*domain.CombinedDataset, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(domain.ColCountry, domain.ColContinent)
	if err != nil {
		return nil, err
	}

	ds := &domain.CombinedDataset{Columns: append([]string(nil), c.header...)}
	err = c.each(func(line int, rec []string) error {
		row := domain.CombinedRow{
			Country:   rec[idx[0]],
			Continent: rec[idx[1]],
			Values:    make(map[string]float64, len(rec)),
		}
		for i, h := range c.header {
			if i == idx[0] || i == idx[1] {
				continue
			}
			v, err := parseValue(rec[i])
			if err != nil {
				return c.valueError(line, h, rec[i], err)
			}
			row.Values[h] = v
		}
		ds.Rows = append(ds.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}
