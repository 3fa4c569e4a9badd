package aggregation

import (
	"fmt"
	"log/slog"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/files"
)

// Shape is the total row and cell count over a set of tweet files
type Shape struct {
	Files int `json:"files"`
	Rows  int `json:"rows"`
	Cells int `json:"cells"`
}

// Columns returns the average number of columns per row
func (s Shape) Columns() int {
	if s.Rows == 0 {
		return 0
	}
	return s.Cells / s.Rows
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d)", s.Rows, s.Columns())
}

// ShapeReport compares the per-username and per-date tweet files
type ShapeReport struct {
	ByUsername Shape `json:"by_username"`
	ByDate     Shape `json:"by_date"`
}

// Check returns a validation error when the two sides differ in rows or cells
func (r *ShapeReport) Check() error {
	if r.ByUsername.Rows != r.ByDate.Rows || r.ByUsername.Cells != r.ByDate.Cells {
		return apperrors.NewAppValidationError(fmt.Sprintf(
			"tweet shapes differ: by usernames %s with %d cells, by dates %s with %d cells",
			r.ByUsername, r.ByUsername.Cells, r.ByDate, r.ByDate.Cells)).
			WithContext("username_rows", r.ByUsername.Rows).
			WithContext("date_rows", r.ByDate.Rows)
	}
	return nil
}

// Verify measures both directories without modifying any file. Synthetic
// index columns are not counted.
func Verify(usernameDir, dateDir string, logger *slog.Logger) (*ShapeReport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	byUsername, err := measure(usernameDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Shape of collected tweets by usernames",
		slog.String("shape", byUsername.String()),
		slog.Int("files", byUsername.Files))

	byDate, err := measure(dateDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Shape of collected tweets by dates",
		slog.String("shape", byDate.String()),
		slog.Int("files", byDate.Files))

	return &ShapeReport{ByUsername: byUsername, ByDate: byDate}, nil
}

func measure(dir string) (Shape, error) {
	found, err := files.NewDiscovery(dir).FindCSVFiles(".")
	if err != nil {
		return Shape{}, apperrors.NewStorageError("failed to list tweet files", err)
	}

	var shape Shape
	for _, f := range found {
		header, rows, err := ReadTweetFile(f.Path)
		if err != nil {
			return Shape{}, err
		}
		shape.Files++
		shape.Rows += len(rows)
		shape.Cells += len(rows) * len(header)
	}
	return shape, nil
}
