package geo

import (
	"log/slog"
	"sort"
	"strings"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// CanonicalName returns the part of a datahub country name before the
// first ", " ("Korea, Republic of" becomes "Korea").
func CanonicalName(name string) string {
	if i := strings.Index(name, ", "); i >= 0 {
		return name[:i]
	}
	return name
}

// Continents builds one (Continent, Code, Country) record per country.
// The first code-table row wins for duplicate canonical names; the continent
// aliases are applied after deduplication and excluded continents dropped.
func Continents(codes []domain.CountryCode, ref config.Reference) []domain.CountryRecord {
	seen := make(map[string]bool, len(codes))
	out := make([]domain.CountryRecord, 0, len(codes))
	for _, c := range codes {
		name := CanonicalName(c.CountryName)
		if seen[name] {
			continue
		}
		seen[name] = true

		if ref.IsExcludedContinent(c.ContinentName) {
			continue
		}
		out = append(out, domain.CountryRecord{
			Continent: c.ContinentName,
			Code:      c.ThreeLetter,
			Country:   ref.ContinentAliases.Resolve(name),
		})
	}

	slog.Debug("Resolved continents",
		slog.Int("code_rows", len(codes)),
		slog.Int("countries", len(out)))
	return out
}

// Coordinates averages the Lat/Long of every reporting region per country,
// after dropping boats and applying the case aliases. The result is sorted
// by country. Missing coordinates are left out of the mean.
func Coordinates(wide *domain.WideCaseTable, ref config.Reference) ([]domain.Coordinate, error) {
	if wide == nil {
		return nil, apperrors.NewValidationError("coordinates: nil case table")
	}

	type acc struct {
		lat, long   float64
		nLat, nLong int
	}
	sums := make(map[string]*acc)
	for _, row := range wide.Rows {
		if ref.IsBoat(row.Country) {
			continue
		}
		country := ref.CaseAliases.Resolve(row.Country)
		a, ok := sums[country]
		if !ok {
			a = &acc{}
			sums[country] = a
		}
		if !domain.IsMissing(row.Lat) {
			a.lat += row.Lat
			a.nLat++
		}
		if !domain.IsMissing(row.Long) {
			a.long += row.Long
			a.nLong++
		}
	}

	out := make([]domain.Coordinate, 0, len(sums))
	for country, a := range sums {
		c := domain.Coordinate{Country: country, Latitude: domain.Missing(), Longitude: domain.Missing()}
		if a.nLat > 0 {
			c.Latitude = a.lat / float64(a.nLat)
		}
		if a.nLong > 0 {
			c.Longitude = a.long / float64(a.nLong)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

// CountryToContinent left-joins coordinates to continent records on Country
// and drops rows with any missing field. Each coordinate row matches every
// record with the same country, in record order.
func CountryToContinent(coords []domain.Coordinate, records []domain.CountryRecord) []domain.CountryContinent {
	byCountry := make(map[string][]domain.CountryRecord, len(records))
	for _, r := range records {
		byCountry[r.Country] = append(byCountry[r.Country], r)
	}

	var out []domain.CountryContinent
	unmatched := 0
	for _, c := range coords {
		matches := byCountry[c.Country]
		if len(matches) == 0 {
			unmatched++
			continue
		}
		if domain.IsMissing(c.Latitude) || domain.IsMissing(c.Longitude) {
			continue
		}
		for _, r := range matches {
			if r.Continent == "" || r.Code == "" {
				continue
			}
			out = append(out, domain.CountryContinent{
				Country:   c.Country,
				Latitude:  c.Latitude,
				Longitude: c.Longitude,
				Continent: r.Continent,
				Code:      r.Code,
			})
		}
	}

	slog.Debug("Joined countries to continents",
		slog.Int("coordinates", len(coords)),
		slog.Int("joined", len(out)),
		slog.Int("unmatched", unmatched))
	return out
}
