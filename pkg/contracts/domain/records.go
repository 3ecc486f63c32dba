package domain

import (
	"math"
	"sort"
	"time"
)

// Case metric names, also the column names of country_stats.csv.
const (
	MetricConfirmed = "Confirmed"
	MetricRecovered = "Recovered"
	MetricDead      = "Dead"
	MetricActive    = "Active"
	MetricMortality = "Mortality"
)

// CaseMetrics lists the country stats columns in output order.
var CaseMetrics = []string{MetricConfirmed, MetricRecovered, MetricDead, MetricActive, MetricMortality}

// WideCaseRow is one Province/State line of a JHU global time series file.
type WideCaseRow struct {
	Province string
	Country  string
	Lat      float64
	Long     float64
	Values   []float64
}

// WideCaseTable is a JHU global time series file: one row per region,
// one value per date column.
type WideCaseTable struct {
	Source string
	Dates  []time.Time
	Rows   []WideCaseRow
}

// CountryCode is one row of the datahub country/continent code table.
type CountryCode struct {
	ContinentName string
	ContinentCode string
	CountryName   string
	TwoLetterCode string
	ThreeLetter   string
	CountryNumber string
}

// CountryRecord maps a canonical country name to its 3-letter code and continent.
type CountryRecord struct {
	Continent string
	Code      string
	Country   string
}

// Coordinate is the mean position of a country's reporting regions.
type Coordinate struct {
	Country   string
	Latitude  float64
	Longitude float64
}

// CountryContinent joins a coordinate to its continent record.
type CountryContinent struct {
	Country   string
	Latitude  float64
	Longitude float64
	Continent string
	Code      string
}

// Optional is a nullable number.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present value. NaN counts as absent.
func Some(v float64) Optional {
	if math.IsNaN(v) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// None returns an absent value
func None() Optional { return Optional{} }

// Float returns the value or NaN
func (o Optional) Float() float64 {
	if !o.Valid {
		return math.NaN()
	}
	return o.Value
}

// CountryStat is the latest-date snapshot of one country.
type CountryStat struct {
	Country   string
	Confirmed Optional
	Recovered Optional
	Dead      Optional
	Active    Optional
	Mortality Optional
}

// Metric returns the named metric
func (s CountryStat) Metric(name string) Optional {
	switch name {
	case MetricConfirmed:
		return s.Confirmed
	case MetricRecovered:
		return s.Recovered
	case MetricDead:
		return s.Dead
	case MetricActive:
		return s.Active
	case MetricMortality:
		return s.Mortality
	}
	return None()
}

// SetMetric sets the named metric; unknown names are ignored
func (s *CountryStat) SetMetric(name string, v Optional) {
	switch name {
	case MetricConfirmed:
		s.Confirmed = v
	case MetricRecovered:
		s.Recovered = v
	case MetricDead:
		s.Dead = v
	case MetricActive:
		s.Active = v
	case MetricMortality:
		s.Mortality = v
	}
}

// IndicatorObservation is one World Bank value for a country and year.
type IndicatorObservation struct {
	Country string
	Year    int
	Value   float64
}

// IndicatorTable holds the observations of one indicator, labelled for output.
type IndicatorTable struct {
	Code         string
	Label        string
	Observations []IndicatorObservation
}

// WorldBankCode maps a World Bank country name to its 3-letter code.
type WorldBankCode struct {
	Name string
	Code string
}

// CombinedRow is one country of the socioeconomic dataset.
// Values holds every numeric column keyed by label; NaN is missing.
type CombinedRow struct {
	Country   string
	Continent string
	Values    map[string]float64
}

// CombinedDataset is the final per-country join of stats and indicators.
// Columns lists every output column, Country and Continent included, sorted.
type CombinedDataset struct {
	Columns []string
	Rows    []CombinedRow
}

// NumericColumns returns Columns without Country and Continent.
func (d *CombinedDataset) NumericColumns() []string {
	out := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c != ColCountry && c != ColContinent {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the values of a numeric column in row order.
func (d *CombinedDataset) Column(name string) ([]float64, bool) {
	found := false
	for _, c := range d.Columns {
		if c == name {
			found = true
			break
		}
	}
	if !found || name == ColCountry || name == ColContinent {
		return nil, false
	}
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		v, ok := r.Values[name]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, true
}

// SortColumns sorts Columns lexicographically.
func (d *CombinedDataset) SortColumns() {
	sort.Strings(d.Columns)
}

// CaseSeries is the Confirmed/Recovered/Dead/Active history of one area.
type CaseSeries struct {
	Name      string
	Dates     []time.Time
	Confirmed []float64
	Recovered []float64
	Dead      []float64
	Active    []float64
}

// Series returns the named metric
func (s *CaseSeries) Series(metric string) []float64 {
	switch metric {
	case MetricConfirmed:
		return s.Confirmed
	case MetricRecovered:
		return s.Recovered
	case MetricDead:
		return s.Dead
	case MetricActive:
		return s.Active
	}
	return nil
}
