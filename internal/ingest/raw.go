package ingest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// JHU global time series columns
const (
	colProvince = "Province/State"
	colRegion   = "Country/Region"
)

// ReadCaseFile reads a JHU global time series file (one of
// time_series_covid19_{confirmed,recovered,deaths}_global.csv).
// Every column after the fixed ones whose header parses as M/D/YY is a date.
func ReadCaseFile(path string) (*domain.WideCaseTable, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index(colProvince, colRegion, domain.ColLat, domain.ColLong)
	if err != nil {
		return nil, err
	}
	fixed := map[int]bool{idx[0]: true, idx[1]: true, idx[2]: true, idx[3]: true}

	table := &domain.WideCaseTable{Source: c.source()}
	var dateCols []int
	for i, h := range c.header {
		if fixed[i] {
			continue
		}
		d, err := time.Parse(config.CaseDateLayout, h)
		if err != nil {
			slog.Debug("Ignoring non-date column",
				slog.String("file", c.source()),
				slog.String("column", h))
			continue
		}
		if n := len(table.Dates); n > 0 && !table.Dates[n-1].Before(d) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s: date column %q out of order", c.source(), h), nil)
		}
		table.Dates = append(table.Dates, d)
		dateCols = append(dateCols, i)
	}
	if len(dateCols) == 0 {
		return nil, apperrors.NewSchemaError(c.source(), "date columns")
	}

	err = c.each(func(line int, rec []string) error {
		row := domain.WideCaseRow{
			Province: strings.TrimSpace(rec[idx[0]]),
			Country:  strings.TrimSpace(rec[idx[1]]),
			Values:   make([]float64, len(dateCols)),
		}
		var err error
		if row.Lat, err = parseValue(rec[idx[2]]); err != nil {
			return c.valueError(line, domain.ColLat, rec[idx[2]], err)
		}
		if row.Long, err = parseValue(rec[idx[3]]); err != nil {
			return c.valueError(line, domain.ColLong, rec[idx[3]], err)
		}
		for n, col := range dateCols {
			if row.Values[n], err = parseValue(rec[col]); err != nil {
				return c.valueError(line, c.header[col], rec[col], err)
			}
		}
		table.Rows = append(table.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Read case file",
		slog.String("file", c.source()),
		slog.Int("regions", len(table.Rows)),
		slog.Int("dates", len(table.Dates)))
	return table, nil
}

// ReadCountryCodes reads the datahub countries.csv code table.
func ReadCountryCodes(path string) ([]domain.CountryCode, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index("Continent_Name", "Continent_Code", "Country_Name",
		"Two_Letter_Country_Code", "Three_Letter_Country_Code", "Country_Number")
	if err != nil {
		return nil, err
	}

	var codes []domain.CountryCode
	err = c.each(func(_ int, rec []string) error {
		codes = append(codes, domain.CountryCode{
			ContinentName: strings.TrimSpace(rec[idx[0]]),
			ContinentCode: strings.TrimSpace(rec[idx[1]]),
			CountryName:   strings.TrimSpace(rec[idx[2]]),
			TwoLetterCode: strings.TrimSpace(rec[idx[3]]),
			ThreeLetter:   strings.TrimSpace(rec[idx[4]]),
			CountryNumber: strings.TrimSpace(rec[idx[5]]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// ReadIndicator reads a World Bank indicator file laid out as
// country,date,<value>. The value column is taken by position and relabelled.
// Rows with any empty cell are dropped.
func ReadIndicator(path, code, label string) (*domain.IndicatorTable, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index("country", "date")
	if err != nil {
		return nil, err
	}
	if len(c.header) < 3 {
		return nil, apperrors.NewSchemaError(c.source(), "value")
	}
	const valueCol = 2

	table := &domain.IndicatorTable{Code: code, Label: label}
	dropped := 0
	err = c.each(func(line int, rec []string) error {
		country := strings.TrimSpace(rec[idx[0]])
		date := strings.TrimSpace(rec[idx[1]])
		v, err := parseValue(rec[valueCol])
		if err != nil {
			return c.valueError(line, c.header[valueCol], rec[valueCol], err)
		}
		if country == "" || date == "" || domain.IsMissing(v) {
			dropped++
			return nil
		}
		year, err := strconv.Atoi(date)
		if err != nil {
			return c.valueError(line, "date", date, err)
		}
		table.Observations = append(table.Observations, domain.IndicatorObservation{
			Country: country,
			Year:    year,
			Value:   v,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Read indicator",
		slog.String("code", code),
		slog.Int("observations", len(table.Observations)),
		slog.Int("dropped", dropped))
	return table, nil
}

// ReadWorldBankCodes reads world_bank_codes.csv (Country Name, Country Code).
func ReadWorldBankCodes(path string) ([]domain.WorldBankCode, error) {
	c, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := c.index("Country Name", domain.ColCountryCode)
	if err != nil {
		return nil, err
	}

	var codes []domain.WorldBankCode
	err = c.each(func(_ int, rec []string) error {
		codes = append(codes, domain.WorldBankCode{
			Name: strings.TrimSpace(rec[idx[0]]),
			Code: strings.TrimSpace(rec[idx[1]]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
