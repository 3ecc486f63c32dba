package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Column names shared by every processed table.
const (
	ColDate        = "Date"
	ColCountry     = "Country"
	ColContinent   = "Continent"
	ColCountryCode = "Country Code"
	ColLat         = "Lat"
	ColLong        = "Long"
)

// Missing returns the value used for an absent cell.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is an absent cell.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Columns is a set of per-country value columns of equal length.
// Countries is kept sorted and unique; Values has one slice per country.
type Columns struct {
	Countries []string
	Values    map[string][]float64
}

func newColumns() Columns {
	return Columns{Values: make(map[string][]float64)}
}

// Column returns the values of country, or false if the column is absent.
func (c *Columns) Column(country string) ([]float64, bool) {
	v, ok := c.Values[country]
	return v, ok
}

// HasCountry reports whether country has a column.
func (c *Columns) HasCountry(country string) bool {
	_, ok := c.Values[country]
	return ok
}

// SetColumn adds or replaces the column of country and keeps Countries sorted.
func (c *Columns) SetColumn(country string, values []float64) {
	if c.Values == nil {
		c.Values = make(map[string][]float64)
	}
	if _, ok := c.Values[country]; !ok {
		i := sort.SearchStrings(c.Countries, country)
		c.Countries = append(c.Countries, "")
		copy(c.Countries[i+1:], c.Countries[i:])
		c.Countries[i] = country
	}
	c.Values[country] = values
}

func (c *Columns) validate(rows int) error {
	if len(c.Countries) != len(c.Values) {
		return fmt.Errorf("%d country names for %d columns", len(c.Countries), len(c.Values))
	}
	for i, country := range c.Countries {
		if i > 0 && c.Countries[i-1] >= country {
			return fmt.Errorf("countries not sorted and unique at %q", country)
		}
		v, ok := c.Values[country]
		if !ok {
			return fmt.Errorf("country %q has no column", country)
		}
		if len(v) != rows {
			return fmt.Errorf("country %q has %d values, want %d", country, len(v), rows)
		}
	}
	return nil
}

func (c Columns) clone() Columns {
	out := Columns{
		Countries: append([]string(nil), c.Countries...),
		Values:    make(map[string][]float64, len(c.Values)),
	}
	for k, v := range c.Values {
		out.Values[k] = append([]float64(nil), v...)
	}
	return out
}

// TimeSeriesTable holds one row per date and one column per country.
type TimeSeriesTable struct {
	Dates []time.Time
	Columns
}

// NewTimeSeriesTable returns an empty table over dates.
func NewTimeSeriesTable(dates []time.Time) *TimeSeriesTable {
	return &TimeSeriesTable{
		Dates:   dates,
		Columns: newColumns(),
	}
}

// Len is the number of rows
func (t *TimeSeriesTable) Len() int { return len(t.Dates) }

// IndexOf returns the row of date
func (t *TimeSeriesTable) IndexOf(date time.Time) (int, bool) {
	i := sort.Search(len(t.Dates), func(i int) bool { return !t.Dates[i].Before(date) })
	if i < len(t.Dates) && t.Dates[i].Equal(date) {
		return i, true
	}
	return 0, false
}

// Last returns the final-row value of country. Missing cells report false.
func (t *TimeSeriesTable) Last(country string) (float64, bool) {
	v, ok := t.Values[country]
	if !ok || len(v) == 0 || IsMissing(v[len(v)-1]) {
		return 0, false
	}
	return v[len(v)-1], true
}

// Clone returns a deep copy
func (t *TimeSeriesTable) Clone() *TimeSeriesTable {
	return &TimeSeriesTable{
		Dates:   append([]time.Time(nil), t.Dates...),
		Columns: t.Columns.clone(),
	}
}

// Validate checks dates are strictly ascending and every column is aligned.
func (t *TimeSeriesTable) Validate() error {
	for i := 1; i < len(t.Dates); i++ {
		if !t.Dates[i-1].Before(t.Dates[i]) {
			return fmt.Errorf("dates not strictly ascending at row %d (%s)", i, t.Dates[i].Format("2006-01-02"))
		}
	}
	return t.Columns.validate(len(t.Dates))
}

// RelativeDayTable is indexed by days since a country crossed a threshold.
// Row i of every column is day i for that country.
type RelativeDayTable struct {
	Days int
	Columns
}

// NewRelativeDayTable returns an empty table with days rows
func NewRelativeDayTable(days int) *RelativeDayTable {
	return &RelativeDayTable{Days: days, Columns: newColumns()}
}

// Len is the number of rows
func (t *RelativeDayTable) Len() int { return t.Days }

// RowMean returns the mean of the present values of row i.
func (t *RelativeDayTable) RowMean(i int) (float64, bool) {
	var sum float64
	var n int
	for _, country := range t.Countries {
		v := t.Values[country]
		if i < len(v) && !IsMissing(v[i]) {
			sum += v[i]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Validate checks every column has Days rows
func (t *RelativeDayTable) Validate() error {
	return t.Columns.validate(t.Days)
}
