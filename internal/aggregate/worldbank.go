package aggregate

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// Derived column names of the combined dataset.
const (
	ColMortalityPct    = "Mortality %"
	ColCasesPerMln     = "Cases per mln"
	ColDeadPerMln      = "Dead per mln"
	ColRecoveredPerMln = "Recovered per mln"
)

// droppedColumns are superseded by the per-million rates or too sparse.
var droppedColumns = map[string]bool{
	domain.MetricConfirmed:      true,
	domain.MetricActive:         true,
	domain.MetricDead:           true,
	domain.MetricRecovered:      true,
	config.LabelUrbanPopulation: true,
	config.LabelSlumPopulation:  true,
	config.LabelPopulation:      true,
}

// Duplicate reports a country with several observations at its latest year.
// All of them are kept and multiply rows in the merge.
type Duplicate struct {
	Indicator string
	Country   string
	Year      int
	Count     int
}

// LatestObservations keeps, per country, the observations at that country's
// most recent year. Ties are kept and reported.
func LatestObservations(t *domain.IndicatorTable) (*domain.IndicatorTable, []Duplicate) {
	latest := make(map[string]int)
	for _, o := range t.Observations {
		if y, ok := latest[o.Country]; !ok || o.Year > y {
			latest[o.Country] = o.Year
		}
	}

	out := &domain.IndicatorTable{Code: t.Code, Label: t.Label}
	counts := make(map[string]int)
	for _, o := range t.Observations {
		if o.Year == latest[o.Country] {
			out.Observations = append(out.Observations, o)
			counts[o.Country]++
		}
	}

	var dups []Duplicate
	for country, n := range counts {
		if n > 1 {
			dups = append(dups, Duplicate{Indicator: t.Label, Country: country, Year: latest[country], Count: n})
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Country < dups[j].Country })
	return out, dups
}

// IndicatorRow is one country of the merged indicator tables.
type IndicatorRow struct {
	Country string
	Values  map[string]float64
}

// MergeIndicators outer-joins the indicator tables on country name. A
// country with several observations in a table yields one row per
// combination. Indicators a country lacks are NaN. Rows are sorted by
// country, stable within a country.
func MergeIndicators(tables []*domain.IndicatorTable) []IndicatorRow {
	var rows []IndicatorRow
	var labels []string
	for n, t := range tables {
		right := make(map[string][]float64)
		var order []string
		for _, o := range t.Observations {
			if _, ok := right[o.Country]; !ok {
				order = append(order, o.Country)
			}
			right[o.Country] = append(right[o.Country], o.Value)
		}

		if n == 0 {
			for _, country := range order {
				for _, v := range right[country] {
					rows = append(rows, IndicatorRow{Country: country, Values: map[string]float64{t.Label: v}})
				}
			}
			labels = append(labels, t.Label)
			continue
		}

		var merged []IndicatorRow
		matched := make(map[string]bool)
		for _, left := range rows {
			values, ok := right[left.Country]
			if !ok {
				r := left.clone()
				r.Values[t.Label] = math.NaN()
				merged = append(merged, r)
				continue
			}
			matched[left.Country] = true
			for _, v := range values {
				r := left.clone()
				r.Values[t.Label] = v
				merged = append(merged, r)
			}
		}
		for _, country := range order {
			if matched[country] {
				continue
			}
			for _, v := range right[country] {
				r := IndicatorRow{Country: country, Values: map[string]float64{t.Label: v}}
				for _, l := range labels {
					r.Values[l] = math.NaN()
				}
				merged = append(merged, r)
			}
		}
		rows = merged
		labels = append(labels, t.Label)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Country < rows[j].Country })
	return rows
}

func (r IndicatorRow) clone() IndicatorRow {
	out := IndicatorRow{Country: r.Country, Values: make(map[string]float64, len(r.Values)+1)}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// CombineInput bundles the tables joined into the combined dataset.
type CombineInput struct {
	Indicators   []IndicatorRow
	Labels       []string
	WorldBank    []domain.WorldBankCode
	Continents   []domain.CountryRecord
	Stats        []domain.CountryStat
	MinConfirmed float64
}

// Combine builds the per-country socioeconomic dataset.
//
// Indicators are inner-joined to the World Bank codes on name, continents
// are inner-joined to stats on Country, and the two are inner-joined on the
// 3-letter code. Excluded countries and countries with Confirmed <=
// MinConfirmed are dropped, the reference's imputed columns are filled with
// their median over the remaining rows, and per-million rates are derived
// from Population.
func Combine(in CombineInput, ref config.Reference) (*domain.CombinedDataset, error) {
	if len(in.Labels) == 0 {
		return nil, apperrors.NewValidationError("combine: no indicator labels")
	}

	// indicators -> world bank codes on name
	codesByName := make(map[string][]string)
	for _, c := range in.WorldBank {
		codesByName[c.Name] = append(codesByName[c.Name], c.Code)
	}
	type coded struct {
		code string
		row  IndicatorRow
	}
	byCode := make(map[string][]coded)
	for _, r := range in.Indicators {
		for _, code := range codesByName[r.Country] {
			byCode[code] = append(byCode[code], coded{code: code, row: r})
		}
	}

	// continents -> stats on Country
	statsByCountry := make(map[string][]domain.CountryStat)
	for _, s := range in.Stats {
		statsByCountry[s.Country] = append(statsByCountry[s.Country], s)
	}

	var rows []domain.CombinedRow
	for _, rec := range in.Continents {
		for _, stat := range statsByCountry[rec.Country] {
			for _, ind := range byCode[rec.Code] {
				if ref.IsExcludedCountry(rec.Country) {
					continue
				}
				if !stat.Confirmed.Valid || !(stat.Confirmed.Value > in.MinConfirmed) {
					continue
				}
				rows = append(rows, combinedRow(rec, stat, ind.row, in.Labels))
			}
		}
	}

	for _, label := range ref.Imputed {
		imputeMedian(rows, label)
	}

	for i := range rows {
		v := rows[i].Values
		perMillion := v[config.LabelPopulation] / 1e6
		v[ColCasesPerMln] = v[domain.MetricConfirmed] / perMillion
		v[ColDeadPerMln] = v[domain.MetricDead] / perMillion
		v[ColRecoveredPerMln] = v[domain.MetricRecovered] / perMillion
		for col := range droppedColumns {
			delete(v, col)
		}
	}

	columns := []string{domain.ColContinent, domain.ColCountry, ColMortalityPct,
		ColCasesPerMln, ColDeadPerMln, ColRecoveredPerMln}
	for _, l := range in.Labels {
		if !droppedColumns[l] {
			columns = append(columns, l)
		}
	}
	ds := &domain.CombinedDataset{Columns: columns, Rows: rows}
	ds.SortColumns()

	slog.Debug("Combined socioeconomic dataset",
		slog.Int("indicator_rows", len(in.Indicators)),
		slog.Int("countries", len(rows)))
	return ds, nil
}

func combinedRow(rec domain.CountryRecord, stat domain.CountryStat, ind IndicatorRow, labels []string) domain.CombinedRow {
	values := make(map[string]float64, len(labels)+8)
	for _, l := range labels {
		v, ok := ind.Values[l]
		if !ok {
			v = math.NaN()
		}
		values[l] = v
	}
	values[domain.MetricConfirmed] = stat.Confirmed.Float()
	values[domain.MetricRecovered] = stat.Recovered.Float()
	values[domain.MetricDead] = stat.Dead.Float()
	values[domain.MetricActive] = stat.Active.Float()
	values[ColMortalityPct] = stat.Mortality.Float()
	return domain.CombinedRow{Country: rec.Country, Continent: rec.Continent, Values: values}
}

// imputeMedian fills missing values of column with the median of the present ones.
func imputeMedian(rows []domain.CombinedRow, column string) {
	var present []float64
	for _, r := range rows {
		if v, ok := r.Values[column]; ok && !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	m, ok := Median(present)
	if !ok {
		return
	}
	for _, r := range rows {
		if v, ok := r.Values[column]; !ok || math.IsNaN(v) {
			r.Values[column] = m
		}
	}
}

// Median returns the median of values, averaging the middle pair for an
// even count. It reports false for an empty slice.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	// Empirical picks the lower middle value when the count is even.
	m := stat.Quantile(0.5, stat.Empirical, s, nil)
	if len(s)%2 == 0 {
		m = (m + s[len(s)/2]) / 2
	}
	return m, true
}
