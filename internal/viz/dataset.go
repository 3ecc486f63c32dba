package viz

import (
	"fmt"
	"path/filepath"
	"sort"

	"covidlab/internal/config"
	"covidlab/internal/ingest"
	"covidlab/pkg/contracts/domain"
)

// Dataset holds every processed table. It is read-only once loaded.
type Dataset struct {
	Confirmed   *domain.TimeSeriesTable
	Recovered   *domain.TimeSeriesTable
	Dead        *domain.TimeSeriesTable
	Active      *domain.TimeSeriesTable
	DailyChange *domain.TimeSeriesTable
	Mortality   *domain.TimeSeriesTable
	SinceT0     *domain.RelativeDayTable

	Coordinates        []domain.Coordinate
	Continents         []domain.CountryRecord
	CountryToContinent []domain.CountryContinent
	Stats              []domain.CountryStat
	Combined           *domain.CombinedDataset
}

// Load reads the processed tables from dir.
func Load(dir string) (*Dataset, error) {
	path := func(name string) string { return filepath.Join(dir, name) }
	ds := &Dataset{}

	series := []struct {
		dst  **domain.TimeSeriesTable
		file string
	}{
		{&ds.Confirmed, config.ConfirmedCasesFile},
		{&ds.Recovered, config.RecoveredCasesFile},
		{&ds.Dead, config.DeadCasesFile},
		{&ds.Active, config.ActiveCasesFile},
		{&ds.DailyChange, config.DailyChangeFile},
		{&ds.Mortality, config.MortalityRateFile},
	}
	for _, s := range series {
		t, err := ingest.ReadTimeSeries(path(s.file))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.file, err)
		}
		*s.dst = t
	}

	var err error
	if ds.SinceT0, err = ingest.ReadRelativeDays(path(config.SinceThresholdFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.SinceThresholdFile, err)
	}
	if ds.Coordinates, err = ingest.ReadCoordinates(path(config.CoordinatesFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.CoordinatesFile, err)
	}
	if ds.Continents, err = ingest.ReadCountryRecords(path(config.ContinentsFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.ContinentsFile, err)
	}
	if ds.CountryToContinent, err = ingest.ReadCountryContinents(path(config.CountryToContinentFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.CountryToContinentFile, err)
	}
	if ds.Stats, err = ingest.ReadCountryStats(path(config.CountryStatsFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.CountryStatsFile, err)
	}
	if ds.Combined, err = ingest.ReadCombined(path(config.CombinedFile)); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.CombinedFile, err)
	}
	return ds, nil
}

// Countries lists the countries with coordinates, sorted.
func (d *Dataset) Countries() []string {
	out := make([]string, 0, len(d.Coordinates))
	for _, c := range d.Coordinates {
		out = append(out, c.Country)
	}
	return uniqueSorted(out)
}

// ContinentNames lists the continents of the continents table, sorted.
func (d *Dataset) ContinentNames() []string {
	out := make([]string, 0, len(d.Continents))
	for _, r := range d.Continents {
		out = append(out, r.Continent)
	}
	return uniqueSorted(out)
}

func uniqueSorted(s []string) []string {
	sort.Strings(s)
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
