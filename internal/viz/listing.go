package viz

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"covidlab/internal/config"
	"covidlab/pkg/contracts/domain"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	return table
}

// WriteRanking lists a ranking with its position.
func WriteRanking(w io.Writer, metric string, ranked []Ranked) {
	table := newTable(w, []string{"#", domain.ColCountry, metric})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for i, r := range ranked {
		table.Append([]string{strconv.Itoa(i + 1), r.Country, cell(r.Value, 2)})
	}
	table.Render()
}

// WriteSeries lists the last n dates of a case series, all of them when n
// is not positive.
func WriteSeries(w io.Writer, s *domain.CaseSeries, n int) {
	table := newTable(w, []string{domain.ColDate, domain.MetricConfirmed, domain.MetricRecovered, domain.MetricDead, domain.MetricActive})
	start := 0
	if n > 0 && len(s.Dates) > n {
		start = len(s.Dates) - n
	}
	for i := start; i < len(s.Dates); i++ {
		table.Append([]string{
			s.Dates[i].Format(config.DateLayout),
			cell(s.Confirmed[i], 0),
			cell(s.Recovered[i], 0),
			cell(s.Dead[i], 0),
			cell(s.Active[i], 0),
		})
	}
	table.Render()
}

// WriteFit lists a regression result.
func WriteFit(w io.Writer, sc *Scatter) {
	table := newTable(w, []string{"x", "y", "slope", "intercept", "R²", "n"})
	table.Append([]string{
		sc.XLabel,
		sc.YLabel,
		cell(sc.Fit.Slope, 4),
		cell(sc.Fit.Intercept, 4),
		cell(sc.Fit.R2, 2),
		strconv.Itoa(sc.Fit.N),
	})
	table.Render()
}

// WriteCorrelation lists a correlation matrix with two decimals.
func WriteCorrelation(w io.Writer, m *Matrix) {
	table := newTable(w, append([]string{""}, m.Columns...))
	for i, name := range m.Columns {
		row := []string{name}
		for _, v := range m.Values[i] {
			row = append(row, cell(v, 2))
		}
		table.Append(row)
	}
	table.Render()
}

// cell formats a value for a listing; missing is blank.
func cell(v float64, decimals int) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
