package exporter

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

// snapshotVersion is bumped whenever the encoded layout changes
const snapshotVersion = 1

type snapshot struct {
	Version int
	Records []domain.LabeledText
}

// WriteSnapshot stores records at path in gob encoding
func WriteSnapshot(path string, records []domain.LabeledText) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create file %s", path), err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(snapshot{Version: snapshotVersion, Records: records}); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode snapshot to %s", path), err)
	}

	return file.Sync()
}

// ReadSnapshot loads records written by WriteSnapshot
func ReadSnapshot(path string) ([]domain.LabeledText, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open file %s", path), err)
	}
	defer file.Close()

	var snap snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&snap); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to decode snapshot from %s", path), err)
	}
	if snap.Version != snapshotVersion {
		return nil, apperrors.NewParsingError(fmt.Sprintf("unsupported snapshot version %d", snap.Version), nil)
	}

	return snap.Records, nil
}
