package aggregate

import (
	"sort"

	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// CaseTables are the five time series summarised into country stats.
type CaseTables struct {
	Confirmed *domain.TimeSeriesTable
	Recovered *domain.TimeSeriesTable
	Dead      *domain.TimeSeriesTable
	Active    *domain.TimeSeriesTable
	Mortality *domain.TimeSeriesTable
}

func (c CaseTables) byMetric() map[string]*domain.TimeSeriesTable {
	return map[string]*domain.TimeSeriesTable{
		domain.MetricConfirmed: c.Confirmed,
		domain.MetricRecovered: c.Recovered,
		domain.MetricDead:      c.Dead,
		domain.MetricActive:    c.Active,
		domain.MetricMortality: c.Mortality,
	}
}

// CountryStats takes the last row of every table and outer-joins the five
// metrics on Country. A country absent from a table, or missing in its last
// row, gets a null metric; no country is dropped.
func CountryStats(tables CaseTables) ([]domain.CountryStat, error) {
	byMetric := tables.byMetric()
	for _, metric := range domain.CaseMetrics {
		if byMetric[metric] == nil {
			return nil, apperrors.NewValidationError("country stats: missing " + metric + " table")
		}
	}

	stats := make(map[string]*domain.CountryStat)
	for _, metric := range domain.CaseMetrics {
		t := byMetric[metric]
		for _, country := range t.Countries {
			s, ok := stats[country]
			if !ok {
				s = &domain.CountryStat{Country: country}
				stats[country] = s
			}
			if v, ok := t.Last(country); ok {
				s.SetMetric(metric, domain.Some(v))
			}
		}
	}

	out := make([]domain.CountryStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}
