package reshape

import (
	"log/slog"
	"math"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// Reshape turns a wide JHU case table into a Date-by-Country table.
//
// Region rows are renamed through the case aliases and summed per country
// (missing cells count as zero). Boat entities are dropped and counts are
// truncated to whole numbers.
func Reshape(wide *domain.WideCaseTable, ref config.Reference) (*domain.TimeSeriesTable, error) {
	if wide == nil {
		return nil, apperrors.NewValidationError("reshape: nil case table")
	}
	if len(wide.Dates) == 0 {
		return nil, apperrors.NewSchemaError(wide.Source, domain.ColDate)
	}

	sums := make(map[string][]float64)
	for i, row := range wide.Rows {
		if row.Country == "" {
			return nil, apperrors.NewParsingError(wide.Source, nil).
				WithContext("row", i).
				WithContext("reason", "empty Country/Region")
		}
		if len(row.Values) != len(wide.Dates) {
			return nil, apperrors.NewParsingError(wide.Source, nil).
				WithContext("row", i).
				WithContext("reason", "value count does not match date columns")
		}

		country := ref.CaseAliases.Resolve(row.Country)
		acc, ok := sums[country]
		if !ok {
			acc = make([]float64, len(wide.Dates))
			sums[country] = acc
		}
		for j, v := range row.Values {
			if !domain.IsMissing(v) {
				acc[j] += v
			}
		}
	}

	table := domain.NewTimeSeriesTable(append(wide.Dates[:0:0], wide.Dates...))
	dropped := 0
	for country, values := range sums {
		if ref.IsBoat(country) {
			dropped++
			continue
		}
		for j, v := range values {
			values[j] = math.Trunc(v)
		}
		table.SetColumn(country, values)
	}

	if err := table.Validate(); err != nil {
		return nil, apperrors.NewValidationError(wide.Source + ": " + err.Error())
	}

	slog.Debug("Reshaped case table",
		slog.String("source", wide.Source),
		slog.Int("regions", len(wide.Rows)),
		slog.Int("countries", len(table.Countries)),
		slog.Int("boats_dropped", dropped))
	return table, nil
}
