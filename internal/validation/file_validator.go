package validation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
)

// FileValidator checks the pipeline's input and output locations before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewNotFoundError(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir))
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateCSVFile checks that path is a readable .csv file with a header line
func (v *FileValidator) ValidateCSVFile(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return apperrors.NewValidationError(fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext))
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError(path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	defer f.Close()

	header, err := bufio.NewReader(f).ReadString('\n')
	if strings.TrimSpace(header) == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return apperrors.NewStorageError(fmt.Sprintf("read header of %s", path), err)
		}
		return apperrors.NewValidationError(fmt.Sprintf("file %s has no header line", path))
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// RequiredInputs lists every raw file a full run reads
func RequiredInputs(paths *config.Paths, ref config.Reference) []string {
	files := []string{
		paths.CaseFile(config.ConfirmedGlobalFile),
		paths.CaseFile(config.RecoveredGlobalFile),
		paths.CaseFile(config.DeathsGlobalFile),
		paths.CountryCodesPath(),
		paths.ProcessedPath(config.WorldBankCodesFile),
	}
	for _, ind := range ref.Indicators {
		files = append(files, paths.IndicatorPath(ind.Code))
	}
	return files
}

// Preflight validates the raw directory and every required input. All
// problems are reported together.
func (v *FileValidator) Preflight(paths *config.Paths, ref config.Reference) error {
	if err := v.ValidateInputDirectory(paths.RawDir); err != nil {
		return err
	}

	var errs []error
	for _, file := range RequiredInputs(paths, ref) {
		if err := v.ValidateCSVFile(file); err != nil {
			errs = append(errs, err)
		}
	}
	if err := v.ValidateOutputDirectory(paths.ProcessedDir); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		v.logger.Warn("Raw input check failed",
			slog.String("raw_dir", paths.RawDir),
			slog.Int("problems", len(errs)))
		return errors.Join(errs...)
	}

	v.logger.Info("Raw inputs validated",
		slog.String("raw_dir", paths.RawDir),
		slog.Int("files", len(RequiredInputs(paths, ref))))
	return nil
}
