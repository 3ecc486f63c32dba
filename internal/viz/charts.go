package viz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
	"covidlab/internal/gnuplot"
	"covidlab/pkg/contracts/domain"
)

// Renderer turns a chart job into an image
type Renderer interface {
	Render(ctx context.Context, job gnuplot.Job) error
}

// Plotter draws the dataset's charts into an image directory.
type Plotter struct {
	data     *Dataset
	renderer Renderer
	dir      string
	logger   *slog.Logger
}

// NewPlotter returns a Plotter writing PNGs to dir.
func NewPlotter(data *Dataset, renderer Renderer, dir string, logger *slog.Logger) *Plotter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Plotter{data: data, renderer: renderer, dir: dir, logger: logger}
}

// ImageName turns a chart title into a file name: lower case, with runs of
// anything but letters and digits replaced by one underscore.
func ImageName(parts ...string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.Join(parts, " ")) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String() + ".png"
}

func (p *Plotter) render(ctx context.Context, job gnuplot.Job) (string, error) {
	if err := p.renderer.Render(ctx, job); err != nil {
		return "", err
	}
	p.logger.InfoContext(ctx, "chart written",
		slog.String("chart", job.Name),
		slog.String("path", job.Output))
	return job.Output, nil
}

// PlotCases draws the four case lines of s.
func (p *Plotter) PlotCases(ctx context.Context, s *domain.CaseSeries) (string, error) {
	return p.render(ctx, gnuplot.Job{
		Name:     "cases",
		Template: casesTmpl,
		Output:   filepath.Join(p.dir, ImageName(s.Name, "cases")),
		Params:   struct{ Title string }{s.Name},
		Data: func(w io.Writer) error {
			for i, d := range s.Dates {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Format(config.DateLayout),
					num(s.Active[i]), num(s.Confirmed[i]), num(s.Dead[i]), num(s.Recovered[i])); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// PlotTop draws a bar chart of the n countries with the most metric among
// those above DefaultMostCasesMinCases confirmed cases.
func (p *Plotter) PlotTop(ctx context.Context, metric string, n int) (string, error) {
	ranked, err := p.data.MostCases(metric, n)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", apperrors.NewValidationError(fmt.Sprintf("no country above %d confirmed cases", DefaultMostCasesMinCases))
	}
	ylabel := "Cases"
	if metric == domain.MetricMortality {
		ylabel = "Mortality rate (%)"
	}
	return p.render(ctx, gnuplot.Job{
		Name:     "top",
		Template: barTmpl,
		Output:   filepath.Join(p.dir, ImageName(metric, "cases most")),
		Params:   struct{ Title, YLabel string }{metric, ylabel},
		Data: func(w io.Writer) error {
			return writeRanked(w, ranked)
		},
	})
}

func writeRanked(w io.Writer, ranked []Ranked) error {
	for _, r := range ranked {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Country, num(r.Value)); err != nil {
			return err
		}
	}
	return nil
}

// PlotScatter draws column y against column x of the combined dataset with
// the least squares line and its R².
func (p *Plotter) PlotScatter(ctx context.Context, x, y string) (*Scatter, string, error) {
	sc, err := p.data.Regress(x, y)
	if err != nil {
		return nil, "", err
	}
	path, err := p.render(ctx, gnuplot.Job{
		Name:     "scatter",
		Template: scatterTmpl,
		Output:   filepath.Join(p.dir, ImageName(x, "vs", y)),
		Params: struct {
			XLabel, YLabel    string
			Slope, Intercept  string
			FitLabel, R2Label string
		}{
			XLabel:    x,
			YLabel:    y,
			Slope:     num(sc.Fit.Slope),
			Intercept: num(sc.Fit.Intercept),
			FitLabel:  fmt.Sprintf("y = %sx + %s", round(sc.Fit.Slope, 4), round(sc.Fit.Intercept, 4)),
			R2Label:   "R² = " + round(sc.Fit.R2, 2),
		},
		Data: func(w io.Writer) error {
			for i := range sc.X {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", num(sc.X[i]), num(sc.Y[i])); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return sc, path, err
}

// PlotGrowth draws the since-threshold history of countries over the
// first steps days on a log scale, with a dashed doubling curve per period.
func (p *Plotter) PlotGrowth(ctx context.Context, countries []string, periods []int, steps int) (string, error) {
	if len(countries) == 0 {
		return "", apperrors.NewValidationError("growth: no countries selected")
	}
	countries = uniqueSorted(append([]string(nil), countries...))
	cols := make([][]float64, len(countries))
	for i, c := range countries {
		v, ok := p.data.SinceT0.Column(c)
		if !ok {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("country %q", c))
		}
		cols[i] = v
	}
	curves, err := p.data.GrowthCurves(periods, steps)
	if err != nil {
		return "", err
	}

	type label struct {
		Label string
		Last  string
	}
	labels := make([]label, len(curves))
	var plots []string
	for i, c := range curves {
		labels[i] = label{c.Label, num(c.Values[steps-1])}
		plots = append(plots, fmt.Sprintf("using 1:%d with lines dt 2 lc 'black' notitle", i+2))
	}
	for i, c := range countries {
		plots = append(plots, fmt.Sprintf("using 1:%d with lines lw 2 title %s", len(curves)+i+2, gnuplot.Quote(c)))
	}

	return p.render(ctx, gnuplot.Job{
		Name:     "growth",
		Template: growthTmpl,
		Output:   filepath.Join(p.dir, "growth_plot.png"),
		Params: struct {
			LastDay int
			XLabel  string
			Curves  []label
			Plots   []string
		}{
			LastDay: steps - 1,
			XLabel:  "Days since threshold",
			Curves:  labels,
			Plots:   plots,
		},
		Data: func(w io.Writer) error {
			for t := 0; t < steps; t++ {
				row := []string{strconv.Itoa(t)}
				for _, c := range curves {
					row = append(row, num(c.Values[t]))
				}
				for _, v := range cols {
					cell := domain.Missing()
					if t < len(v) {
						cell = v[t]
					}
					row = append(row, num(cell))
				}
				if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// PlotChange draws a country's daily new cases with an n-day average.
func (p *Plotter) PlotChange(ctx context.Context, country string, n int) (string, error) {
	values, ok := p.data.DailyChange.Column(country)
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("country %q", country))
	}
	avg := RollingMean(values, n)
	dates := p.data.DailyChange.Dates

	return p.render(ctx, gnuplot.Job{
		Name:     "change",
		Template: changeTmpl,
		Output:   filepath.Join(p.dir, ImageName(country, "cases chg")),
		Params:   struct{ Title, AverageLabel string }{country, fmt.Sprintf("%d day average", n)},
		Data: func(w io.Writer) error {
			for i, d := range dates {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", d.Format(config.DateLayout), num(values[i]), num(avg[i])); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// num formats a data cell. Missing values become NaN, which gnuplot skips.
func num(v float64) string {
	if domain.IsMissing(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func round(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
