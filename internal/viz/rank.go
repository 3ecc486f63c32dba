package viz

import (
	"fmt"
	"sort"

	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// Ranking defaults
const (
	DefaultMortalityMinCases = 1000
	DefaultMostCasesMinCases = 5000
)

// Ranked is one row of a country ranking. Value is NaN when the metric is
// missing for the country.
type Ranked struct {
	Country string
	Value   float64
}

// Rank orders the countries with more than minCases confirmed cases by
// metric, highest first, and returns at most n of them. Ties keep the
// country stats order and missing values sort last.
func (d *Dataset) Rank(metric string, minCases float64, n int) ([]Ranked, error) {
	if !isCaseMetric(metric) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown metric %q", metric))
	}

	var out []Ranked
	for _, s := range d.Stats {
		if !s.Confirmed.Valid || s.Confirmed.Value <= minCases {
			continue
		}
		out = append(out, Ranked{Country: s.Country, Value: s.Metric(metric).Float()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value, out[j].Value
		if domain.IsMissing(b) {
			return !domain.IsMissing(a)
		}
		return a > b
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// HighestMortality ranks by mortality rate. minCases is usually
// DefaultMortalityMinCases.
func (d *Dataset) HighestMortality(n int, minCases float64) ([]Ranked, error) {
	return d.Rank(domain.MetricMortality, minCases, n)
}

// MostCases ranks by a case metric among countries above
// DefaultMostCasesMinCases confirmed cases.
func (d *Dataset) MostCases(metric string, n int) ([]Ranked, error) {
	return d.Rank(metric, DefaultMostCasesMinCases, n)
}

func isCaseMetric(name string) bool {
	for _, m := range domain.CaseMetrics {
		if m == name {
			return true
		}
	}
	return false
}
