package reshape

import (
	"log/slog"

	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// Active computes Confirmed - Recovered - Dead per country per date after
// aligning the three tables with how. A cell missing from any operand is
// missing in the result.
func Active(confirmed, recovered, dead *domain.TimeSeriesTable, how Join) (*domain.TimeSeriesTable, error) {
	if confirmed == nil || recovered == nil || dead == nil {
		return nil, apperrors.NewValidationError("active: nil input table")
	}
	if how != JoinOuter && how != JoinInner {
		return nil, apperrors.NewValidationError("active: unknown join " + string(how))
	}

	dates := AlignDates(how, confirmed, recovered, dead)
	countries := AlignCountries(how, confirmed, recovered, dead)

	if len(dates) != confirmed.Len() || len(dates) != recovered.Len() || len(dates) != dead.Len() {
		slog.Debug("Case tables have diverging dates",
			slog.String("join", string(how)),
			slog.Int("aligned", len(dates)),
			slog.Int("confirmed", confirmed.Len()),
			slog.Int("recovered", recovered.Len()),
			slog.Int("dead", dead.Len()))
	}

	active := domain.NewTimeSeriesTable(dates)
	for _, country := range countries {
		c := Reindex(confirmed, country, dates)
		r := Reindex(recovered, country, dates)
		d := Reindex(dead, country, dates)

		values := make([]float64, len(dates))
		for i := range dates {
			// NaN propagates through the subtraction
			values[i] = c[i] - r[i] - d[i]
		}
		active.SetColumn(country, values)
	}

	return active, nil
}
