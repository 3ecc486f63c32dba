package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	"covidlab/pkg/contracts/domain"
)

var nan = math.NaN()

func series(dates int, cols map[string][]float64) *domain.TimeSeriesTable {
	ds := make([]time.Time, dates)
	for i := range ds {
		ds[i] = time.Date(2020, 3, 1+i, 0, 0, 0, 0, time.UTC)
	}
	t := domain.NewTimeSeriesTable(ds)
	for country, v := range cols {
		t.SetColumn(country, v)
	}
	return t
}

func TestCountryStats(t *testing.T) {
	tables := CaseTables{
		Confirmed: series(2, map[string][]float64{"A": {1, 10}, "B": {5, 6}}),
		Recovered: series(2, map[string][]float64{"A": {0, 2}}),
		Dead:      series(2, map[string][]float64{"A": {0, 1}, "B": {0, 3}}),
		Active:    series(2, map[string][]float64{"A": {1, 7}, "B": {5, nan}}),
		Mortality: series(2, map[string][]float64{"A": {0, 10}, "B": {0, 50}, "C": {1, 1}}),
	}

	stats, err := CountryStats(tables)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "A", stats[0].Country)
	assert.Equal(t, domain.Some(10), stats[0].Confirmed)
	assert.Equal(t, domain.Some(2), stats[0].Recovered)
	assert.Equal(t, domain.Some(10), stats[0].Mortality)

	assert.Equal(t, "B", stats[1].Country)
	assert.False(t, stats[1].Recovered.Valid)
	assert.False(t, stats[1].Active.Valid, "missing last value is null")
	assert.Equal(t, domain.Some(3), stats[1].Dead)

	assert.Equal(t, "C", stats[2].Country)
	assert.False(t, stats[2].Confirmed.Valid)
	assert.Equal(t, domain.Some(1), stats[2].Mortality)

	tables.Dead = nil
	_, err = CountryStats(tables)
	assert.Error(t, err)
}

func TestLatestObservations(t *testing.T) {
	in := &domain.IndicatorTable{
		Code:  "SP.POP.TOTL",
		Label: config.LabelPopulation,
		Observations: []domain.IndicatorObservation{
			{Country: "Chad", Year: 2017, Value: 1},
			{Country: "Chad", Year: 2018, Value: 2},
			{Country: "Peru", Year: 2018, Value: 3},
			{Country: "Peru", Year: 2018, Value: 4},
			{Country: "Peru", Year: 2016, Value: 5},
		},
	}

	out, dups := LatestObservations(in)
	assert.Equal(t, []domain.IndicatorObservation{
		{Country: "Chad", Year: 2018, Value: 2},
		{Country: "Peru", Year: 2018, Value: 3},
		{Country: "Peru", Year: 2018, Value: 4},
	}, out.Observations)
	assert.Equal(t, []Duplicate{{Indicator: config.LabelPopulation, Country: "Peru", Year: 2018, Count: 2}}, dups)
	assert.Equal(t, in.Label, out.Label)
}

func TestMergeIndicators(t *testing.T) {
	life := &domain.IndicatorTable{Label: config.LabelLifeExpectancy, Observations: []domain.IndicatorObservation{
		{Country: "Peru", Value: 76},
		{Country: "Chad", Value: 54},
	}}
	pop := &domain.IndicatorTable{Label: config.LabelPopulation, Observations: []domain.IndicatorObservation{
		{Country: "Peru", Value: 1},
		{Country: "Peru", Value: 2},
		{Country: "Mali", Value: 3},
	}}

	rows := MergeIndicators([]*domain.IndicatorTable{life, pop})
	require.Len(t, rows, 4)

	assert.Equal(t, "Chad", rows[0].Country)
	assert.Equal(t, 54.0, rows[0].Values[config.LabelLifeExpectancy])
	assert.True(t, math.IsNaN(rows[0].Values[config.LabelPopulation]))

	assert.Equal(t, "Mali", rows[1].Country)
	assert.True(t, math.IsNaN(rows[1].Values[config.LabelLifeExpectancy]))
	assert.Equal(t, 3.0, rows[1].Values[config.LabelPopulation])

	assert.Equal(t, "Peru", rows[2].Country)
	assert.Equal(t, "Peru", rows[3].Country)
	assert.Equal(t, 1.0, rows[2].Values[config.LabelPopulation])
	assert.Equal(t, 2.0, rows[3].Values[config.LabelPopulation])
	assert.Equal(t, 76.0, rows[3].Values[config.LabelLifeExpectancy])
}

func TestMedian(t *testing.T) {
	_, ok := Median(nil)
	assert.False(t, ok)

	m, _ := Median([]float64{3, 1, 2})
	assert.Equal(t, 2.0, m)

	m, _ = Median([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, m)

	m, ok = Median([]float64{7})
	assert.True(t, ok)
	assert.Equal(t, 7.0, m)

	in := []float64{80, 70}
	m, _ = Median(in)
	assert.Equal(t, 75.0, m)
	assert.Equal(t, []float64{80, 70}, in, "input is not reordered")
}

func combineFixture() CombineInput {
	labels := []string{config.LabelLifeExpectancy, config.LabelPopulation, config.LabelSlumPopulation}
	return CombineInput{
		Labels: labels,
		Indicators: []IndicatorRow{
			{Country: "Peru", Values: map[string]float64{config.LabelLifeExpectancy: 70, config.LabelPopulation: 2e6, config.LabelSlumPopulation: 1}},
			{Country: "Chad", Values: map[string]float64{config.LabelLifeExpectancy: nan, config.LabelPopulation: 4e6, config.LabelSlumPopulation: 2}},
			{Country: "Mali", Values: map[string]float64{config.LabelLifeExpectancy: 80, config.LabelPopulation: 1e6, config.LabelSlumPopulation: 3}},
			{Country: "Yemen, Rep.", Values: map[string]float64{config.LabelLifeExpectancy: 60, config.LabelPopulation: 1e6}},
			{Country: "Fiji", Values: map[string]float64{config.LabelLifeExpectancy: 50, config.LabelPopulation: 1e6}},
		},
		WorldBank: []domain.WorldBankCode{
			{Name: "Peru", Code: "PER"},
			{Name: "Chad", Code: "TCD"},
			{Name: "Mali", Code: "MLI"},
			{Name: "Yemen, Rep.", Code: "YEM"},
			{Name: "Fiji", Code: "FJI"},
		},
		Continents: []domain.CountryRecord{
			{Continent: "South America", Code: "PER", Country: "Peru"},
			{Continent: "Africa", Code: "TCD", Country: "Chad"},
			{Continent: "Africa", Code: "MLI", Country: "Mali"},
			{Continent: "Asia", Code: "YEM", Country: "Yemen"},
			{Continent: "Oceania", Code: "FJI", Country: "Fiji"},
		},
		Stats: []domain.CountryStat{
			{Country: "Chad", Confirmed: domain.Some(8000), Dead: domain.Some(80), Recovered: domain.Some(400), Active: domain.Some(7520), Mortality: domain.Some(1)},
			{Country: "Fiji", Confirmed: domain.Some(4000), Dead: domain.Some(1), Recovered: domain.Some(1), Active: domain.Some(3998), Mortality: domain.Some(0.03)},
			{Country: "Mali", Confirmed: domain.Some(7000), Dead: domain.Some(70), Recovered: domain.None(), Active: domain.None(), Mortality: domain.Some(1)},
			{Country: "Peru", Confirmed: domain.Some(6000), Dead: domain.Some(60), Recovered: domain.Some(600), Active: domain.Some(5340), Mortality: domain.Some(1)},
			{Country: "Yemen", Confirmed: domain.Some(9000), Dead: domain.Some(900), Recovered: domain.Some(0), Active: domain.Some(8100), Mortality: domain.Some(10)},
		},
		MinConfirmed: 5000,
	}
}

func TestCombine(t *testing.T) {
	ds, err := Combine(combineFixture(), config.DefaultReference())
	require.NoError(t, err)

	assert.Equal(t, []string{
		ColCasesPerMln, domain.ColContinent, domain.ColCountry, ColDeadPerMln,
		config.LabelLifeExpectancy, ColMortalityPct, ColRecoveredPerMln,
	}, ds.Columns)

	countries := make([]string, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		countries = append(countries, r.Country)
	}
	assert.Equal(t, []string{"Peru", "Chad", "Mali"}, countries, "Fiji under threshold and Yemen excluded")

	peru := ds.Rows[0]
	assert.Equal(t, "South America", peru.Continent)
	assert.Equal(t, 3000.0, peru.Values[ColCasesPerMln])
	assert.Equal(t, 30.0, peru.Values[ColDeadPerMln])
	assert.Equal(t, 300.0, peru.Values[ColRecoveredPerMln])
	assert.Equal(t, 1.0, peru.Values[ColMortalityPct])
	for _, dropped := range []string{domain.MetricConfirmed, domain.MetricActive, config.LabelPopulation, config.LabelSlumPopulation} {
		_, ok := peru.Values[dropped]
		assert.False(t, ok, dropped)
	}

	chad := ds.Rows[1]
	assert.Equal(t, 75.0, chad.Values[config.LabelLifeExpectancy], "median of 70 and 80")
	assert.Equal(t, 2000.0, chad.Values[ColCasesPerMln])

	mali := ds.Rows[2]
	assert.True(t, math.IsNaN(mali.Values[ColRecoveredPerMln]))
}

func TestCombineDuplicateCodesMultiplyRows(t *testing.T) {
	in := combineFixture()
	in.WorldBank = append(in.WorldBank, domain.WorldBankCode{Name: "Peru", Code: "PER"})

	ds, err := Combine(in, config.DefaultReference())
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 4)
}

func TestCombineRequiresLabels(t *testing.T) {
	in := combineFixture()
	in.Labels = nil
	_, err := Combine(in, config.DefaultReference())
	assert.Error(t, err)
}
