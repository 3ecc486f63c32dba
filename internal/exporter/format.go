package exporter

import (
	"math"
	"strconv"
	"time"

	"covidlab/internal/config"
)

// formatFloat writes the shortest exact representation; missing is empty
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}

// formatCell renders one table cell for CSV output
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return formatDate(x)
	}
	return ""
}

func formatRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = formatCell(v)
	}
	return out
}
