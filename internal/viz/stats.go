package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	apperrors "covidlab/internal/errors"
	"covidlab/pkg/contracts/domain"
)

// Fit is a least squares line y = Slope*x + Intercept.
type Fit struct {
	Slope     float64
	Intercept float64
	R2        float64
	N         int // pairs used
}

// Scatter is two combined dataset columns with their regression line.
type Scatter struct {
	XLabel, YLabel string
	X, Y           []float64 // complete pairs only
	Fit            Fit
}

// Regress fits y on x. Pairs with a missing side are dropped.
func Regress(x, y []float64) (Fit, error) {
	if len(x) != len(y) {
		return Fit{}, apperrors.NewValidationError(fmt.Sprintf("regress: %d x values, %d y values", len(x), len(y)))
	}
	xs, ys := completePairs(x, y)
	if len(xs) < 2 {
		return Fit{}, apperrors.NewValidationError("regress: fewer than two complete pairs")
	}
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, apperrors.NewValidationError("regress: x is constant")
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	fit := Fit{Slope: slope, Intercept: intercept, N: len(xs)}
	if stat.Variance(ys, nil) == 0 {
		fit.R2 = math.NaN()
	} else {
		fit.R2 = stat.RSquared(xs, ys, nil, intercept, slope)
	}
	return fit, nil
}

// Regress fits column y on column x of the combined dataset.
func (d *Dataset) Regress(x, y string) (*Scatter, error) {
	xv, ok := d.Combined.Column(x)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %q", x))
	}
	yv, ok := d.Combined.Column(y)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %q", y))
	}
	fit, err := Regress(xv, yv)
	if err != nil {
		return nil, err
	}
	xs, ys := completePairs(xv, yv)
	return &Scatter{XLabel: x, YLabel: y, X: xs, Y: ys, Fit: fit}, nil
}

// Matrix is a square correlation matrix over Columns.
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// Correlation returns the Pearson correlation of every pair of numeric
// combined columns, using the rows where both are present. Pairs with
// fewer than two such rows or no variance are NaN.
func (d *Dataset) Correlation() *Matrix {
	cols := d.Combined.NumericColumns()
	data := make([][]float64, len(cols))
	for i, c := range cols {
		data[i], _ = d.Combined.Column(c)
	}

	m := &Matrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(data[i], data[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// RollingMean returns the trailing n-value average of values. The first
// n-1 entries, and any window holding a missing value, are missing.
func RollingMean(values []float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		out[i] = domain.Missing()
		if i+1 < n {
			continue
		}
		out[i] = stat.Mean(values[i+1-n:i+1], nil)
	}
	return out
}

// Curve is an exponential growth reference line.
type Curve struct {
	Period int
	Label  string
	Values []float64
}

// GrowthCurves returns a*2^(t/period) for t in [0, steps) per period, where
// a is the mean of the first since-threshold row.
func (d *Dataset) GrowthCurves(periods []int, steps int) ([]Curve, error) {
	if steps < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("growth: steps must be positive, got %d", steps))
	}
	a, ok := d.SinceT0.RowMean(0)
	if !ok {
		return nil, apperrors.NewValidationError("growth: no country crossed the threshold")
	}

	out := make([]Curve, 0, len(periods))
	for _, p := range periods {
		if p < 1 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("growth: doubling period must be positive, got %d", p))
		}
		c := Curve{Period: p, Label: doublingLabel(p), Values: make([]float64, steps)}
		for t := range c.Values {
			c.Values[t] = a * math.Pow(2, float64(t)/float64(p))
		}
		out = append(out, c)
	}
	return out, nil
}

func doublingLabel(period int) string {
	if period == 1 {
		return "Double every day"
	}
	return fmt.Sprintf("Double every %d days", period)
}

func completePairs(x, y []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i := range x {
		if domain.IsMissing(x[i]) || domain.IsMissing(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func pearson(x, y []float64) float64 {
	xs, ys := completePairs(x, y)
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
