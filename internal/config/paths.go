package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for every input and output file.
type Paths struct {
	RawDir       string
	ProcessedDir string
	ImagesDir    string
	LogsDir      string

	// Raw inputs
	CaseSeriesDir string
	DatahubDir    string
	WorldBankDir  string

	// Optional outputs
	WorkbookFile string
	LakeFile     string
	ManifestFile string
}

// NewPaths resolves the configured directories into the full path set.
// Relative directories stay relative to the working directory.
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		RawDir:        cfg.RawDir,
		ProcessedDir:  cfg.ProcessedDir,
		ImagesDir:     cfg.ImagesDir,
		LogsDir:       cfg.LogsDir,
		CaseSeriesDir: filepath.Join(cfg.RawDir, CaseSeriesDir),
		DatahubDir:    filepath.Join(cfg.RawDir, DatahubDir),
		WorldBankDir:  filepath.Join(cfg.RawDir, WorldBankDir),
		WorkbookFile:  filepath.Join(cfg.ProcessedDir, WorkbookFile),
		LakeFile:      filepath.Join(cfg.ProcessedDir, LakeFile),
		ManifestFile:  filepath.Join(cfg.ProcessedDir, ManifestFile),
	}
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ProcessedDir,
		p.ImagesDir,
	}
	if p.LogsDir != "" {
		directories = append(directories, p.LogsDir)
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// CaseFile returns the path of a JHU global time series file
func (p *Paths) CaseFile(name string) string {
	return filepath.Join(p.CaseSeriesDir, name)
}

// CountryCodesPath returns the datahub country/continent code table
func (p *Paths) CountryCodesPath() string {
	return filepath.Join(p.DatahubDir, CountryCodesFile)
}

// IndicatorPath returns the World Bank CSV for an indicator code, e.g. SP.POP.TOTL
func (p *Paths) IndicatorPath(code string) string {
	return filepath.Join(p.WorldBankDir, code+".csv")
}

// ProcessedPath returns the path of a processed table
func (p *Paths) ProcessedPath(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// ImagePath returns the path of a rendered plot
func (p *Paths) ImagePath(name string) string {
	return filepath.Join(p.ImagesDir, name)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved directories at debug level
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("raw", p.RawDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("images", p.ImagesDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("cases", p.CaseSeriesDir),
			slog.String("datahub", p.DatahubDir),
			slog.String("world_bank", p.WorldBankDir),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
