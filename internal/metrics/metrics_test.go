package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/pkg/contracts/domain"
)

func days(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(2020, 3, 1+i, 0, 0, 0, 0, time.UTC)
	}
	return out
}

func series(dates []time.Time, cols map[string][]float64) *domain.TimeSeriesTable {
	t := domain.NewTimeSeriesTable(dates)
	for c, v := range cols {
		t.SetColumn(c, v)
	}
	return t
}

func TestDailyChange(t *testing.T) {
	conf := series(days(4), map[string][]float64{
		"A": {5, 9, 9, 20},
		"B": {0, 0, 3, 2},
	})

	got, err := DailyChange(conf)
	require.NoError(t, err)

	want := map[string][]float64{
		"A": {0, 4, 0, 11},
		"B": {0, 0, 3, -1},
	}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Errorf("DailyChange() mismatch (-want +got):\n%s", diff)
	}

	for _, country := range got.Countries {
		change := got.Values[country]
		assert.Zero(t, change[0], "row 0 of %s", country)
		c := conf.Values[country]
		for i := 1; i < len(c); i++ {
			assert.Equal(t, c[i]-c[i-1], change[i])
		}
	}
	assert.Equal(t, conf.Dates, got.Dates)
}

func TestDailyChangeMissing(t *testing.T) {
	got, err := DailyChange(series(days(3), map[string][]float64{"A": {math.NaN(), 1, 3}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2}, got.Values["A"])
}

func TestSinceThreshold(t *testing.T) {
	conf := series(days(5), map[string][]float64{
		"Fast":  {100, 150, 300, 600, 1200},
		"Slow":  {10, 50, 120, 130, 500},
		"Never": {1, 2, 3, 4, 5},
	})

	got, err := SinceThreshold(conf, 100, 100)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, 5, got.Len())
	want := map[string][]float64{
		"Fast":  {100, 150, 300, 600, 1200},
		"Slow":  {120, 130, 500, math.NaN(), math.NaN()},
		"Never": {math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()},
	}
	if diff := cmp.Diff(want, got.Values, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("SinceThreshold() mismatch (-want +got):\n%s", diff)
	}
}

func TestSinceThresholdTruncatesAndStartsAboveThreshold(t *testing.T) {
	n := 150
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(50 + i*10)
	}
	conf := series(days(n), map[string][]float64{"A": values})

	got, err := SinceThreshold(conf, 100, 100)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Len(), 100)
	for _, country := range got.Countries {
		v := got.Values[country]
		require.NotEmpty(t, v)
		assert.GreaterOrEqual(t, v[0], 100.0)
	}

	_, err = SinceThreshold(conf, 100, 0)
	assert.Error(t, err)
}

func TestMortality(t *testing.T) {
	dates := days(4)
	conf := series(dates, map[string][]float64{
		"A": {0, 3, 6, 8},
		"B": {1, 2, 0, 4},
	})
	dead := series(dates, map[string][]float64{
		"A": {0, 1, 1, 1},
		"B": {0, math.NaN(), 0, 1},
	})

	got, err := Mortality(conf, dead)
	require.NoError(t, err)

	// A has no rate on day 0 and B none on day 2, so both rows go.
	assert.Equal(t, []time.Time{dates[1], dates[3]}, got.Dates)
	want := map[string][]float64{
		"A": {33.33, 12.5},
		"B": {0, 25},
	}
	if diff := cmp.Diff(want, got.Values, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Mortality() mismatch (-want +got):\n%s", diff)
	}
}

func TestMortalityKeepsOnlyDatesEveryCountryReports(t *testing.T) {
	dates := days(3)
	conf := series(dates, map[string][]float64{"A": {10, 20, 40}, "B": {0, 0, 50}})
	dead := series(dates, map[string][]float64{"A": {0, 1, 2}, "B": {0, 0, 5}})

	got, err := Mortality(conf, dead)
	require.NoError(t, err)

	require.Equal(t, []time.Time{dates[2]}, got.Dates)
	assert.Equal(t, []float64{5}, got.Values["A"])
	assert.Equal(t, []float64{10}, got.Values["B"])
}

func TestMortalityNeverWhereConfirmedZero(t *testing.T) {
	dates := days(3)
	conf := series(dates, map[string][]float64{"A": {0, 0, 5}, "B": {0, 2, 4}})
	dead := series(dates, map[string][]float64{"A": {0, 0, 1}, "B": {0, 1, 1}})

	got, err := Mortality(conf, dead)
	require.NoError(t, err)

	require.Len(t, got.Dates, 1)
	assert.Equal(t, dates[2], got.Dates[0])
	assert.Equal(t, []float64{20}, got.Values["A"])
	assert.Equal(t, []float64{25}, got.Values["B"])

	for _, country := range got.Countries {
		c := conf.Values[country]
		for i, d := range got.Dates {
			assert.False(t, domain.IsMissing(got.Values[country][i]))
			j, ok := conf.IndexOf(d)
			require.True(t, ok)
			assert.Greater(t, c[j], 0.0)
		}
	}
}

func TestMortalityCountryWithoutCasesEmptiesTable(t *testing.T) {
	dates := days(2)
	conf := series(dates, map[string][]float64{"A": {5, 8}, "B": {0, 0}})
	dead := series(dates, map[string][]float64{"A": {1, 1}, "B": {0, 0}})

	got, err := Mortality(conf, dead)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
	assert.Equal(t, []string{"A", "B"}, got.Countries)
}

func TestMortalitySkipsCountriesWithoutDeaths(t *testing.T) {
	conf := series(days(1), map[string][]float64{"A": {5}, "B": {5}})
	dead := series(days(1), map[string][]float64{"A": {1}})

	got, err := Mortality(conf, dead)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Countries)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 33.33, roundTo(100.0/3, 2))
	assert.Equal(t, 66.67, roundTo(200.0/3, 2))
	assert.Equal(t, 12.5, roundTo(12.5, 2))
}
