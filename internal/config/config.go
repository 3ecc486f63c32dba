package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. COVID_LOGGING_LEVEL.
const EnvPrefix = "COVID"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Lake      LakeConfig      `yaml:"lake" envconfig:"LAKE"`
	Plot      PlotConfig      `yaml:"plot" envconfig:"PLOT"`

	// Reference holds the lookup tables used by the resolver and reshaper.
	// It is only read from YAML.
	Reference Reference `yaml:"reference" ignored:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	ImagesDir    string `yaml:"images_dir" envconfig:"IMAGES_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig holds the tunables of the processing stages
type PipelineConfig struct {
	// Threshold is the cumulative confirmed count that starts the relative day index.
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" validate:"gt=0"`
	// MaxDays truncates the days-since-threshold table.
	MaxDays int `yaml:"max_days" envconfig:"MAX_DAYS" validate:"gt=0"`
	// MinConfirmed filters the combined socioeconomic dataset.
	MinConfirmed float64 `yaml:"min_confirmed" envconfig:"MIN_CONFIRMED" validate:"gte=0"`
	// Join selects how case tables with diverging dates are aligned.
	Join string `yaml:"join" envconfig:"JOIN" validate:"oneof=outer inner"`

	ContinueOnError bool `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`
	Workbook        bool `yaml:"workbook" envconfig:"WORKBOOK"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LakeConfig controls the DuckDB export of processed tables
type LakeConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Path    string `yaml:"path" envconfig:"PATH"`
}

// PlotConfig configures gnuplot rendering
type PlotConfig struct {
	Gnuplot  string `yaml:"gnuplot" envconfig:"GNUPLOT" validate:"required"`
	Terminal string `yaml:"terminal" envconfig:"TERMINAL" validate:"required"`
	Width    int    `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height   int    `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
}

// Load reads the default config file (if any) and environment overrides.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom builds the configuration from defaults, then the YAML file at
// path (skipped when path is empty), then COVID_* environment variables.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// No default tags on the structs: envconfig only touches fields whose
	// variable is set, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.Reference.Validate(); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/covidlab.log",
		},
		Paths: PathsConfig{
			RawDir:       DefaultRawDir,
			ProcessedDir: DefaultProcessedDir,
			ImagesDir:    DefaultImagesDir,
			LogsDir:      DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			Threshold:    DefaultThreshold,
			MaxDays:      DefaultMaxDays,
			MinConfirmed: DefaultMinConfirmed,
			Join:         "outer",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
		Plot: PlotConfig{
			Gnuplot:  "gnuplot",
			Terminal: "pngcairo",
			Width:    800,
			Height:   600,
		},
		Reference: DefaultReference(),
	}
}
