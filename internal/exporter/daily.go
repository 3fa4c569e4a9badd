package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
)

// ValidDayKey reports whether day can name a file directly inside the
// by-date directory: a single path element that is not "." or "..".
func ValidDayKey(day string) bool {
	if day == "" || day == "." || day == ".." {
		return false
	}
	if strings.ContainsAny(day, `/\`) {
		return false
	}
	return filepath.Base(day) == day
}

// DailyExporter appends rows to per-calendar-day CSV files
type DailyExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewDailyExporter creates a new daily exporter
func NewDailyExporter(logger *slog.Logger) *DailyExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// DailyResult describes what one AppendDailyRows call wrote
type DailyResult struct {
	RowsByDay   map[string]int
	CreatedDays []string
}

// AppendDailyRows groups rows by dayOf and appends each group to
// {outputDir}/{day}.csv. A file gets the header only when this call creates it.
// Rows keep their input order within a day; days are written in ascending order.
func (d *DailyExporter) AppendDailyRows(outputDir string, header []string, rows [][]string, dayOf func([]string) string) (*DailyResult, error) {
	rowsByDay := make(map[string][][]string)
	for _, row := range rows {
		day := dayOf(row)
		if !ValidDayKey(day) {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid day key %q", day)).
				WithContext("output_dir", outputDir)
		}
		rowsByDay[day] = append(rowsByDay[day], row)
	}

	days := make([]string, 0, len(rowsByDay))
	for day := range rowsByDay {
		days = append(days, day)
	}
	sort.Strings(days)

	result := &DailyResult{RowsByDay: make(map[string]int, len(days))}
	for _, day := range days {
		filePath := filepath.Join(outputDir, day+config.CSVExt)
		created, err := d.csvWriter.WriteCSV(filePath, WriteOptions{
			Headers: header,
			Records: rowsByDay[day],
			Append:  true,
		})
		if err != nil {
			return result, fmt.Errorf("failed to write daily file for %s: %w", day, err)
		}
		if created {
			result.CreatedDays = append(result.CreatedDays, day)
		}
		result.RowsByDay[day] = len(rowsByDay[day])
	}

	return result, nil
}
