package reshape

import (
	"fmt"
	"sort"
	"time"

	"covidlab/pkg/contracts/domain"
)

// Join selects how tables with diverging dates or countries are aligned.
type Join string

const (
	// JoinOuter keeps every date and country present in any table.
	JoinOuter Join = "outer"
	// JoinInner keeps only dates and countries present in all tables.
	JoinInner Join = "inner"
)

// ParseJoin converts a config value into a Join
func ParseJoin(s string) (Join, error) {
	switch Join(s) {
	case JoinOuter, "":
		return JoinOuter, nil
	case JoinInner:
		return JoinInner, nil
	}
	return "", fmt.Errorf("unknown join %q", s)
}

// AlignDates returns the sorted union (outer) or intersection (inner) of the
// tables' dates.
func AlignDates(how Join, tables ...*domain.TimeSeriesTable) []time.Time {
	counts := make(map[time.Time]int)
	for _, t := range tables {
		for _, d := range t.Dates {
			counts[d]++
		}
	}
	var out []time.Time
	for d, n := range counts {
		if how == JoinInner && n < len(tables) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// AlignCountries returns the sorted union (outer) or intersection (inner)
// of the tables' countries.
func AlignCountries(how Join, tables ...*domain.TimeSeriesTable) []string {
	counts := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Countries {
			counts[c]++
		}
	}
	var out []string
	for c, n := range counts {
		if how == JoinInner && n < len(tables) {
			continue
		}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Reindex returns country's values of t laid out on dates. Dates or
// countries absent from t are missing.
func Reindex(t *domain.TimeSeriesTable, country string, dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	src, ok := t.Column(country)
	for i, d := range dates {
		out[i] = domain.Missing()
		if !ok {
			continue
		}
		if j, found := t.IndexOf(d); found {
			out[i] = src[j]
		}
	}
	return out
}
