package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	"covidlab/internal/operations"
)

// CreateTestConfig creates a configuration that stops at the first failure
func CreateTestConfig() *operations.Config {
	return operations.NewConfigBuilder().
		WithContinueOnError(false).
		Build()
}

// CreateSuccessfulStep creates a step that always succeeds
func CreateSuccessfulStep(id string, deps ...string) *MockStep {
	return &MockStep{
		IDValue:           id,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			if s := state.StepState(id); s != nil {
				s.RecordOutput(id+".csv", 1)
			}
			return nil
		},
	}
}

// CreateFailingStep creates a step that always fails
func CreateFailingStep(id string, err error, deps ...string) *MockStep {
	if err == nil {
		err = errors.New("step failed")
	}
	return &MockStep{
		IDValue:           id,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}

// CreateFlakyStep creates a step that fails its first failCount runs, then succeeds
func CreateFlakyStep(id string, failCount int, deps ...string) *MockStep {
	attempts := 0
	return &MockStep{
		IDValue:           id,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			attempts++
			if attempts <= failCount {
				return operations.NewExecutionError(id, errors.New("temporary failure"))
			}
			return nil
		},
	}
}

// CreateSlowStep creates a step that takes a specific duration
func CreateSlowStep(id string, duration time.Duration, deps ...string) *MockStep {
	return &MockStep{
		IDValue:           id,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			select {
			case <-time.After(duration):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// CreateDiamondSteps creates steps with a diamond dependency pattern:
// A, then B and C, then D.
func CreateDiamondSteps() []operations.Step {
	return []operations.Step{
		CreateSuccessfulStep("A"),
		CreateSuccessfulStep("B", "A"),
		CreateSuccessfulStep("C", "A"),
		CreateSuccessfulStep("D", "B", "C"),
	}
}

// NewTestPaths creates raw, processed and image directories under t.TempDir()
func NewTestPaths(t testing.TB) *config.Paths {
	t.Helper()
	root := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{
		RawDir:       filepath.Join(root, "raw"),
		ProcessedDir: filepath.Join(root, "processed"),
		ImagesDir:    filepath.Join(root, "img"),
	})
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

// Raw case fixtures. Italy crosses 5000 confirmed, Chile does not;
// the boat is dropped by the reshaper.
const (
	ConfirmedCSV = "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20,1/25/20\n" +
		",Italy,43,12,50,150,6000,8000\n" +
		"Santiago,Chile,-33.4,-70.6,0,10,100,150\n" +
		"Valparaiso,Chile,-33.0,-71.6,0,0,20,50\n" +
		",Diamond Princess,35.4,139.6,10,20,30,40\n"
	RecoveredCSV = "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20,1/25/20\n" +
		",Italy,43,12,0,10,100,500\n" +
		",Chile,-35.7,-71.5,0,0,5,10\n" +
		",Diamond Princess,35.4,139.6,0,0,0,1\n"
	DeathsCSV = "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20,1/25/20\n" +
		",Italy,43,12,0,5,200,400\n" +
		",Chile,-35.7,-71.5,0,0,1,2\n" +
		",Diamond Princess,35.4,139.6,0,0,0,0\n"
	CountriesCSV = "Continent_Name,Continent_Code,Country_Name,Two_Letter_Country_Code,Three_Letter_Country_Code,Country_Number\n" +
		"Europe,EU,\"Italy, Italian Republic\",IT,ITA,380\n" +
		"South America,SA,\"Chile, Republic of\",CL,CHL,152\n" +
		"Antarctica,AN,\"Antarctica (the territory South of 60 deg S)\",AQ,ATA,10\n"
	WorldBankCodesCSV = "Country Name,Country Code\nItaly,ITA\nChile,CHL\n"
)

// IndicatorValues holds the fixture value per indicator code for Italy and Chile
var IndicatorValues = map[string][2]string{
	"SP.DYN.LE00.IN":    {"83.5", "80.0"},
	"NY.GDP.PCAP.PP.CD": {"44000", "25000"},
	"SP.URB.TOTL.IN.ZS": {"70.7", "87.6"},
	"SP.RUR.TOTL.ZS":    {"29.3", "12.4"},
	"EN.POP.SLUM.UR.ZS": {"", "9.0"},
	"SP.POP.TOTL":       {"60000000", "19000000"},
	"SH.XPD.CHEX.GD.ZS": {"8.7", "9.1"},
}

// WriteRawData writes the raw inputs of a full pipeline run
func WriteRawData(t testing.TB, paths *config.Paths) {
	t.Helper()

	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write(paths.CaseFile(config.ConfirmedGlobalFile), ConfirmedCSV)
	write(paths.CaseFile(config.RecoveredGlobalFile), RecoveredCSV)
	write(paths.CaseFile(config.DeathsGlobalFile), DeathsCSV)
	write(paths.CountryCodesPath(), CountriesCSV)
	write(paths.ProcessedPath(config.WorldBankCodesFile), WorldBankCodesCSV)

	for code, v := range IndicatorValues {
		content := "country,date," + code + "\n" +
			"Italy,2018,1\n" +
			"Italy,2019," + v[0] + "\n" +
			"Chile,2019," + v[1] + "\n"
		write(paths.IndicatorPath(code), content)
	}
}

// TestStepOptions returns step options for the fixture data
func TestStepOptions(paths *config.Paths) *operations.StepOptions {
	cfg := config.Default()
	cfg.Pipeline.MinConfirmed = 5000
	return &operations.StepOptions{
		Paths:     paths,
		Pipeline:  cfg.Pipeline,
		Reference: config.DefaultReference(),
	}
}
