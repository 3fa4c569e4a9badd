package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
)

// FileValidator checks pipeline inputs before a step starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return apperrors.NewNotFoundError("directory " + dir)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat directory", err).WithContext("directory", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", dir))
	}
	return nil
}

// ValidateFile checks that path is a readable, non-empty regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError("file " + path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat file", err).WithContext("file", path)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty", slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is empty", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError("file is not readable", err).WithContext("file", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateFiles validates each path and stops at the first failure
func (v *FileValidator) ValidateFiles(paths ...string) error {
	for _, p := range paths {
		if err := v.ValidateFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCorpusSource checks that the raw file of src exists under dir and
// that its extension matches the declared format
func (v *FileValidator) ValidateCorpusSource(dir string, src config.CorpusSource) error {
	path := filepath.Join(dir, src.File)
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	// an empty format is inferred from the extension by the wrangler
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case src.Format == "xlsx" && ext != ".xlsx":
		return apperrors.NewAppValidationError(fmt.Sprintf("corpus %d: %s is not an Excel file", src.ID, src.File))
	case src.Format == "csv" && ext == ".xlsx":
		return apperrors.NewAppValidationError(fmt.Sprintf("corpus %d: %s is declared csv", src.ID, src.File))
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewAppValidationError(fmt.Sprintf("corpus %d: %s is a temporary Excel file", src.ID, src.File))
	}
	return nil
}

// CountFiles counts regular files matching pattern in dir
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	count := 0
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			count++
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("count", count))
	return count, nil
}
