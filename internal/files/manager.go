package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stocksentiment/internal/config"
)

// Manager provides file management operations over the data layout
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	return os.MkdirAll(m.resolvePath(path), 0755)
}

// ClearCSVFiles removes every .csv file directly inside dir and returns how
// many were removed. Other files and subdirectories are left alone; a missing
// directory counts as already clear.
func (m *Manager) ClearCSVFiles(dir string) (int, error) {
	fullPath := m.resolvePath(dir)

	entries, err := os.ReadDir(fullPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		if err := os.Remove(filepath.Join(fullPath, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}

	m.logger.Info("Cleared CSV files",
		slog.String("dir", fullPath),
		slog.Int("removed", removed))

	return removed, nil
}

// WriteFileAtomic writes data to a temporary sibling and renames it over path,
// so readers never observe a partially written file
func (m *Manager) WriteFileAtomic(path string, data []byte) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	m.logger.Debug("Wrote file",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))
	return nil
}

// ListFiles returns the names of the regular files in dir (non-recursive)
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// resolvePath resolves a relative path against the matching layout directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(path, "logs/"))
	case strings.HasPrefix(path, "corpora/"):
		return filepath.Join(m.paths.CorporaDir, strings.TrimPrefix(path, "corpora/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
