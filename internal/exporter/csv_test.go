package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	"covidlab/internal/ingest"
	"covidlab/pkg/contracts/domain"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	tempDir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{
		RawDir:       filepath.Join(tempDir, "raw"),
		ProcessedDir: filepath.Join(tempDir, "processed"),
		ImagesDir:    filepath.Join(tempDir, "img"),
	})
	return NewCSVWriter(paths), paths
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tests := []struct {
		name  string
		table Table
		want  []string
	}{
		{
			name: "mixed cells",
			table: Table{
				Name:   "mixed.csv",
				Header: []string{"Date", "Name", "Value", "Year"},
				Rows: [][]any{
					{time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), "Peru", 33.33, 2018},
					{time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), "Chad", math.NaN(), 2019},
				},
			},
			want: []string{
				"Date,Name,Value,Year",
				"2020-03-01,Peru,33.33,2018",
				"2020-03-02,Chad,,2019",
			},
		},
		{
			name: "whole numbers have no decimals",
			table: Table{
				Name:   "counts.csv",
				Header: []string{"Country", "Confirmed"},
				Rows:   [][]any{{"Korea, South", 1200.0}},
			},
			want: []string{
				"Country,Confirmed",
				`"Korea, South",1200`,
			},
		},
		{
			name:  "header only",
			table: Table{Name: "empty.csv", Header: []string{"Col1", "Col2"}},
			want:  []string{"Col1,Col2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteTable(tt.table)
			require.NoError(t, err)
			assert.Equal(t, paths.ProcessedPath(tt.table.Name), path)
			assert.Equal(t, tt.want, readLines(t, path))
		})
	}
}

func TestCSVWriter_NoPartialOutput(t *testing.T) {
	writer, paths := setupTestEnv(t)
	dest := paths.ProcessedPath("table.csv")

	_, err := writer.WriteTable(Table{Name: "table.csv", Header: []string{"A"}, Rows: [][]any{{1.0}}})
	require.NoError(t, err)

	sw, err := writer.CreateStreamWriter("table.csv", []string{"B"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"2"}))
	sw.Abort()

	assert.Equal(t, []string{"A", "1"}, readLines(t, dest), "aborted stream leaves the previous table")

	entries, err := os.ReadDir(paths.ProcessedDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, "table.csv", entries[0].Name())
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	dest := filepath.Join(t.TempDir(), "nested", "abs.csv")

	path, err := writer.WriteTable(Table{Name: dest, Header: []string{"X"}})
	require.NoError(t, err)
	assert.Equal(t, dest, path)
	assert.FileExists(t, dest)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{math.NaN(), ""},
		{12.5, "12.5"},
		{16.67, "16.67"},
		{1e6, "1000000"},
		{math.Inf(1), "+Inf"},
		{7, "7"},
		{time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), "2020-01-22"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in), "%v", tt.in)
	}
}

func TestTimeSeriesRoundTrip(t *testing.T) {
	writer, _ := setupTestEnv(t)

	dates := []time.Time{
		time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	ts := domain.NewTimeSeriesTable(dates)
	ts.SetColumn("Italy", []float64{1, 2})
	ts.SetColumn("Congo", []float64{math.NaN(), 33.33})

	path, err := writer.WriteTable(TimeSeries(config.MortalityRateFile, ts))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date,Congo,Italy", "2020-03-01,,1", "2020-03-02,33.33,2"}, readLines(t, path))

	got, err := ingest.ReadTimeSeries(path)
	require.NoError(t, err)
	assert.Equal(t, ts.Countries, got.Countries)
	assert.Equal(t, 33.33, got.Values["Congo"][1])
	assert.True(t, math.IsNaN(got.Values["Congo"][0]))
}

func TestRecordTables(t *testing.T) {
	writer, _ := setupTestEnv(t)

	path, err := writer.WriteTable(CountryStats([]domain.CountryStat{
		{Country: "Peru", Confirmed: domain.Some(10), Dead: domain.Some(1), Mortality: domain.Some(10)},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Country,Confirmed,Recovered,Dead,Active,Mortality",
		"Peru,10,,1,,10",
	}, readLines(t, path))

	path, err = writer.WriteTable(CountryToContinent([]domain.CountryContinent{
		{Country: "Burma", Latitude: 21.9, Longitude: 95.9, Continent: "Asia", Code: "MMR"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Country,Lat,Long,Continent,Country Code",
		"Burma,21.9,95.9,Asia,MMR",
	}, readLines(t, path))

	path, err = writer.WriteTable(Continents([]domain.CountryRecord{{Continent: "Asia", Code: "MMR", Country: "Burma"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Continent,Country Code,Country", "Asia,MMR,Burma"}, readLines(t, path))

	path, err = writer.WriteTable(Coordinates([]domain.Coordinate{{Country: "Burma", Latitude: 21.9, Longitude: 95.9}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Country,Lat,Long", "Burma,21.9,95.9"}, readLines(t, path))
}

func TestCombinedRoundTrip(t *testing.T) {
	writer, _ := setupTestEnv(t)
	ds := &domain.CombinedDataset{
		Columns: []string{"Cases per mln", "Continent", "Country", "Mortality %"},
		Rows: []domain.CombinedRow{
			{Country: "Peru", Continent: "South America", Values: map[string]float64{"Cases per mln": 3000, "Mortality %": 1}},
			{Country: "Chad", Continent: "Africa", Values: map[string]float64{"Cases per mln": 2000}},
		},
	}

	path, err := writer.WriteTable(Combined(ds))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cases per mln,Continent,Country,Mortality %",
		"3000,South America,Peru,1",
		"2000,Africa,Chad,",
	}, readLines(t, path))

	got, err := ingest.ReadCombined(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.True(t, math.IsNaN(got.Rows[1].Values["Mortality %"]))
}

func TestRelativeDays(t *testing.T) {
	rd := domain.NewRelativeDayTable(2)
	rd.SetColumn("Italy", []float64{100, 150})
	rd.SetColumn("Chad", []float64{math.NaN(), math.NaN()})

	tbl := RelativeDays(config.SinceThresholdFile, rd)
	assert.Equal(t, []string{"Chad", "Italy"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 150.0, tbl.Rows[1][1])
	assert.Equal(t, "confirmed_cases_since_t0", tbl.Sheet())
}
