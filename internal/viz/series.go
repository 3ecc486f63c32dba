package viz

import (
	"fmt"
	"time"

	apperrors "covidlab/internal/errors"
	"covidlab/internal/reshape"
	"covidlab/pkg/contracts/domain"
)

// caseTables returns the four case tables in CaseSeries field order.
func (d *Dataset) caseTables() []*domain.TimeSeriesTable {
	return []*domain.TimeSeriesTable{d.Confirmed, d.Recovered, d.Dead, d.Active}
}

// dates is the union of the case tables' dates.
func (d *Dataset) dates() []time.Time {
	return reshape.AlignDates(reshape.JoinOuter, d.caseTables()...)
}

// CountrySeries returns the case history of one country. Dates absent
// from one of the tables are missing.
func (d *Dataset) CountrySeries(country string) (*domain.CaseSeries, error) {
	if !d.Confirmed.HasCountry(country) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("country %q", country))
	}
	dates := d.dates()
	out := &domain.CaseSeries{Name: country, Dates: dates}
	dst := []*[]float64{&out.Confirmed, &out.Recovered, &out.Dead, &out.Active}
	for i, t := range d.caseTables() {
		*dst[i] = reshape.Reindex(t, country, dates)
	}
	return out, nil
}

// ContinentSeries sums the countries of continent that also have
// coordinates.
func (d *Dataset) ContinentSeries(continent string) (*domain.CaseSeries, error) {
	located := make(map[string]bool, len(d.Coordinates))
	for _, c := range d.Coordinates {
		located[c.Country] = true
	}

	var countries []string
	known := false
	for _, r := range d.Continents {
		if r.Continent != continent {
			continue
		}
		known = true
		if located[r.Country] {
			countries = append(countries, r.Country)
		}
	}
	if !known {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("continent %q", continent))
	}
	return d.sumSeries(continent, uniqueSorted(countries)), nil
}

// WorldSeries sums every country.
func (d *Dataset) WorldSeries() *domain.CaseSeries {
	return d.sumSeries("World", reshape.AlignCountries(reshape.JoinOuter, d.caseTables()...))
}

// sumSeries adds up countries per date. Missing cells count as zero.
func (d *Dataset) sumSeries(name string, countries []string) *domain.CaseSeries {
	dates := d.dates()
	out := &domain.CaseSeries{Name: name, Dates: dates}
	dst := []*[]float64{&out.Confirmed, &out.Recovered, &out.Dead, &out.Active}

	for i, t := range d.caseTables() {
		sum := make([]float64, len(dates))
		for _, country := range countries {
			for j, v := range reshape.Reindex(t, country, dates) {
				if !domain.IsMissing(v) {
					sum[j] += v
				}
			}
		}
		*dst[i] = sum
	}
	return out
}
