package metrics

import (
	"log/slog"
	"math"
	"time"

	apperrors "covidlab/internal/errors"
	"covidlab/internal/reshape"
	"covidlab/pkg/contracts/domain"
)

// DailyChange returns the first difference of every column. Row 0 is zero,
// as is any row whose difference involves a missing value.
func DailyChange(t *domain.TimeSeriesTable) (*domain.TimeSeriesTable, error) {
	if t == nil {
		return nil, apperrors.NewValidationError("daily change: nil table")
	}

	out := domain.NewTimeSeriesTable(append([]time.Time(nil), t.Dates...))
	for _, country := range t.Countries {
		src := t.Values[country]
		diff := make([]float64, len(src))
		for i := 1; i < len(src); i++ {
			d := src[i] - src[i-1]
			if !domain.IsMissing(d) {
				diff[i] = d
			}
		}
		out.SetColumn(country, diff)
	}
	return out, nil
}

// SinceThreshold aligns countries on the number of days since their count
// first reached threshold. Each country keeps the rows with value >=
// threshold, re-indexed from zero; columns are aligned by position and the
// table is cut to maxDays rows. A country that never reaches the threshold
// keeps an all-missing column.
func SinceThreshold(t *domain.TimeSeriesTable, threshold float64, maxDays int) (*domain.RelativeDayTable, error) {
	if t == nil {
		return nil, apperrors.NewValidationError("since threshold: nil table")
	}
	if maxDays <= 0 {
		return nil, apperrors.NewValidationError("since threshold: max days must be positive")
	}

	kept := make(map[string][]float64, len(t.Countries))
	days := 0
	for _, country := range t.Countries {
		var rows []float64
		for _, v := range t.Values[country] {
			if !domain.IsMissing(v) && v >= threshold {
				rows = append(rows, v)
			}
		}
		kept[country] = rows
		if len(rows) > days {
			days = len(rows)
		}
	}
	if days > maxDays {
		days = maxDays
	}

	out := domain.NewRelativeDayTable(days)
	never := 0
	for _, country := range t.Countries {
		rows := kept[country]
		col := make([]float64, days)
		for i := range col {
			if i < len(rows) {
				col[i] = rows[i]
			} else {
				col[i] = domain.Missing()
			}
		}
		if len(rows) == 0 {
			never++
		}
		out.SetColumn(country, col)
	}

	slog.Debug("Aligned countries on threshold",
		slog.Float64("threshold", threshold),
		slog.Int("days", days),
		slog.Int("never_reached", never))
	return out, nil
}

// Mortality returns round(100 * dead / confirmed, 2) per country, only on
// dates where confirmed > 0. Dead is laid onto confirmed's dates and gaps
// are back-filled. Countries are joined on Date (inner): a date is kept only
// when every country has a rate for it, so a country that never reports a
// case leaves the table without rows.
func Mortality(confirmed, dead *domain.TimeSeriesTable) (*domain.TimeSeriesTable, error) {
	if confirmed == nil || dead == nil {
		return nil, apperrors.NewValidationError("mortality: nil input table")
	}

	aligned := reshape.AlignDates(reshape.JoinOuter, confirmed, dead)
	rates := make(map[string]map[time.Time]float64, len(confirmed.Countries))
	for _, country := range confirmed.Countries {
		if !dead.HasCountry(country) {
			slog.Debug("No death series for country", slog.String("country", country))
			continue
		}

		c := backfill(reshape.Reindex(confirmed, country, aligned))
		d := backfill(reshape.Reindex(dead, country, aligned))

		series := make(map[time.Time]float64)
		for i, date := range aligned {
			if domain.IsMissing(c[i]) || c[i] <= 0 {
				continue
			}
			series[date] = roundTo(100*d[i]/c[i], 2)
		}
		rates[country] = series
	}

	dates := commonDates(aligned, rates)

	out := domain.NewTimeSeriesTable(dates)
	for country, series := range rates {
		col := make([]float64, len(dates))
		for i, d := range dates {
			col[i] = series[d]
		}
		out.SetColumn(country, col)
	}
	return out, nil
}

// commonDates returns the dates, in order, on which every series has a value.
func commonDates(dates []time.Time, rates map[string]map[time.Time]float64) []time.Time {
	if len(rates) == 0 {
		return nil
	}
	var out []time.Time
	for _, date := range dates {
		all := true
		for _, series := range rates {
			if _, ok := series[date]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, date)
		}
	}
	return out
}

// backfill replaces each missing value with the next present one.
func backfill(v []float64) []float64 {
	next := domain.Missing()
	for i := len(v) - 1; i >= 0; i-- {
		if domain.IsMissing(v[i]) {
			v[i] = next
		} else {
			next = v[i]
		}
	}
	return v
}

// roundTo rounds half to even at the given number of decimals
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
