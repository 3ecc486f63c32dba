package reshape

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2020, 3, d, 0, 0, 0, 0, time.UTC)
}

func wide(dates []time.Time, rows ...domain.WideCaseRow) *domain.WideCaseTable {
	return &domain.WideCaseTable{Source: "test.csv", Dates: dates, Rows: rows}
}

func series(dates []time.Time, cols map[string][]float64) *domain.TimeSeriesTable {
	t := domain.NewTimeSeriesTable(dates)
	for c, v := range cols {
		t.SetColumn(c, v)
	}
	return t
}

func TestReshape(t *testing.T) {
	dates := []time.Time{day(1), day(2)}
	in := wide(dates,
		domain.WideCaseRow{Country: "Korea, South", Values: []float64{1, 2}},
		domain.WideCaseRow{Province: "Hubei", Country: "China", Values: []float64{10, 20.7}},
		domain.WideCaseRow{Province: "Beijing", Country: "China", Values: []float64{1, math.NaN()}},
		domain.WideCaseRow{Country: "Congo (Brazzaville)", Values: []float64{1, 1}},
		domain.WideCaseRow{Country: "Congo (Kinshasa)", Values: []float64{2, 2}},
		domain.WideCaseRow{Country: "Diamond Princess", Values: []float64{700, 712}},
		domain.WideCaseRow{Country: "MS Zaandam", Values: []float64{2, 9}},
	)

	got, err := Reshape(in, config.DefaultReference())
	require.NoError(t, err)

	want := map[string][]float64{
		"China": {11, 20},
		"Congo": {3, 3},
		"Korea": {1, 2},
	}
	assert.Equal(t, []string{"China", "Congo", "Korea"}, got.Countries)
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Errorf("Reshape() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dates, got.Dates)
}

func TestReshapeNeverContainsBoats(t *testing.T) {
	ref := config.DefaultReference()
	ref.Boats = append(ref.Boats, "Grand Princess")

	in := wide([]time.Time{day(1)},
		domain.WideCaseRow{Country: "Italy", Values: []float64{1}},
		domain.WideCaseRow{Country: "Grand Princess", Values: []float64{1}},
		domain.WideCaseRow{Country: "Diamond Princess", Values: []float64{1}},
	)
	got, err := Reshape(in, ref)
	require.NoError(t, err)
	for _, boat := range ref.Boats {
		assert.False(t, got.HasCountry(boat), boat)
	}
}

func TestReshapeErrors(t *testing.T) {
	ref := config.DefaultReference()

	_, err := Reshape(nil, ref)
	assert.Error(t, err)

	_, err = Reshape(wide(nil, domain.WideCaseRow{Country: "A"}), ref)
	assert.True(t, apperrors.IsSchemaError(err))

	_, err = Reshape(wide([]time.Time{day(1)}, domain.WideCaseRow{Country: "", Values: []float64{1}}), ref)
	assert.Error(t, err)

	_, err = Reshape(wide([]time.Time{day(1)}, domain.WideCaseRow{Country: "A", Values: []float64{1, 2}}), ref)
	assert.Error(t, err)
}

func TestActiveExample(t *testing.T) {
	dates := []time.Time{day(1), day(2), day(3)}
	conf := series(dates, map[string][]float64{"X": {10, 0, 0}})
	recov := series(dates, map[string][]float64{"X": {2, 0, 0}})
	dead := series(dates, map[string][]float64{"X": {1, 0, 0}})

	got, err := Active(conf, recov, dead, JoinOuter)
	require.NoError(t, err)

	x, ok := got.Column("X")
	require.True(t, ok)
	assert.Equal(t, []float64{7, 0, 0}, x)
}

func TestActiveIdentity(t *testing.T) {
	dates := []time.Time{day(1), day(2), day(3), day(4)}
	conf := series(dates, map[string][]float64{"A": {5, 9, 14, 30}, "B": {1, 1, 2, 3}})
	recov := series(dates, map[string][]float64{"A": {0, 1, 4, 10}, "B": {0, 0, 1, 1}})
	dead := series(dates, map[string][]float64{"A": {0, 0, 1, 2}, "B": {0, 1, 0, 0}})

	got, err := Active(conf, recov, dead, JoinInner)
	require.NoError(t, err)

	for _, country := range got.Countries {
		c, _ := conf.Column(country)
		r, _ := recov.Column(country)
		d, _ := dead.Column(country)
		a, _ := got.Column(country)
		for i := range dates {
			assert.Equal(t, c[i]-r[i]-d[i], a[i], "%s day %d", country, i)
		}
	}
}

func TestActiveJoins(t *testing.T) {
	conf := series([]time.Time{day(1), day(2), day(3)}, map[string][]float64{"A": {10, 20, 30}, "B": {1, 2, 3}})
	recov := series([]time.Time{day(2), day(3)}, map[string][]float64{"A": {1, 2}})
	dead := series([]time.Time{day(1), day(2), day(3)}, map[string][]float64{"A": {0, 1, 1}, "B": {0, 0, 0}})

	t.Run("outer keeps every date and country", func(t *testing.T) {
		got, err := Active(conf, recov, dead, JoinOuter)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(1), day(2), day(3)}, got.Dates)
		assert.Equal(t, []string{"A", "B"}, got.Countries)

		want := map[string][]float64{
			"A": {math.NaN(), 18, 27},
			"B": {math.NaN(), math.NaN(), math.NaN()},
		}
		if diff := cmp.Diff(want, got.Values, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("Active() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("inner keeps shared dates and countries", func(t *testing.T) {
		got, err := Active(conf, recov, dead, JoinInner)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2), day(3)}, got.Dates)
		assert.Equal(t, []string{"A"}, got.Countries)
		a, _ := got.Column("A")
		assert.Equal(t, []float64{18, 27}, a)
	})

	t.Run("unknown join", func(t *testing.T) {
		_, err := Active(conf, recov, dead, Join("left"))
		assert.Error(t, err)
	})
}

func TestParseJoin(t *testing.T) {
	j, err := ParseJoin("")
	require.NoError(t, err)
	assert.Equal(t, JoinOuter, j)
	j, err = ParseJoin("inner")
	require.NoError(t, err)
	assert.Equal(t, JoinInner, j)
	_, err = ParseJoin("cross")
	assert.Error(t, err)
}
