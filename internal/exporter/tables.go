package exporter

import (
	"covidlab/internal/config"
	"covidlab/pkg/contracts/domain"
)

// Table is a processed table laid out for output. Cells are string,
// float64 (NaN is missing), int or time.Time.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Sheet returns the workbook sheet name, the file name without extension.
func (t Table) Sheet() string {
	name := t.Name
	if n := len(name); n > 4 && name[n-4:] == ".csv" {
		name = name[:n-4]
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// TimeSeries lays out a table as Date followed by one column per country.
func TimeSeries(name string, t *domain.TimeSeriesTable) Table {
	out := Table{Name: name, Header: append([]string{domain.ColDate}, t.Countries...)}
	out.Rows = make([][]any, t.Len())
	for i, d := range t.Dates {
		row := make([]any, 0, len(t.Countries)+1)
		row = append(row, d)
		for _, c := range t.Countries {
			row = append(row, t.Values[c][i])
		}
		out.Rows[i] = row
	}
	return out
}

// RelativeDays lays out the days-since-threshold table, countries only.
func RelativeDays(name string, t *domain.RelativeDayTable) Table {
	out := Table{Name: name, Header: append([]string(nil), t.Countries...)}
	out.Rows = make([][]any, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := make([]any, len(t.Countries))
		for j, c := range t.Countries {
			row[j] = t.Values[c][i]
		}
		out.Rows[i] = row
	}
	return out
}

// Continents lays out the continent records.
func Continents(records []domain.CountryRecord) Table {
	out := Table{
		Name:   config.ContinentsFile,
		Header: []string{domain.ColContinent, domain.ColCountryCode, domain.ColCountry},
	}
	for _, r := range records {
		out.Rows = append(out.Rows, []any{r.Continent, r.Code, r.Country})
	}
	return out
}

// Coordinates lays out the per-country mean coordinates.
func Coordinates(coords []domain.Coordinate) Table {
	out := Table{
		Name:   config.CoordinatesFile,
		Header: []string{domain.ColCountry, domain.ColLat, domain.ColLong},
	}
	for _, c := range coords {
		out.Rows = append(out.Rows, []any{c.Country, c.Latitude, c.Longitude})
	}
	return out
}

// CountryToContinent lays out the coordinate and continent join.
func CountryToContinent(rows []domain.CountryContinent) Table {
	out := Table{
		Name: config.CountryToContinentFile,
		Header: []string{domain.ColCountry, domain.ColLat, domain.ColLong,
			domain.ColContinent, domain.ColCountryCode},
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, []any{r.Country, r.Latitude, r.Longitude, r.Continent, r.Code})
	}
	return out
}

// CountryStats lays out the latest snapshot; null metrics are empty.
func CountryStats(stats []domain.CountryStat) Table {
	out := Table{Name: config.CountryStatsFile, Header: append([]string{domain.ColCountry}, domain.CaseMetrics...)}
	for _, s := range stats {
		row := []any{s.Country}
		for _, m := range domain.CaseMetrics {
			row = append(row, s.Metric(m).Float())
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Combined lays out the socioeconomic dataset in its column order.
func Combined(ds *domain.CombinedDataset) Table {
	out := Table{Name: config.CombinedFile, Header: append([]string(nil), ds.Columns...)}
	for _, r := range ds.Rows {
		row := make([]any, len(ds.Columns))
		for i, c := range ds.Columns {
			switch c {
			case domain.ColCountry:
				row[i] = r.Country
			case domain.ColContinent:
				row[i] = r.Continent
			default:
				v, ok := r.Values[c]
				if !ok {
					v = domain.Missing()
				}
				row[i] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
