package aggregation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/exporter"
	"stocksentiment/internal/files"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/pkg/contracts/domain"
)

// DateColumn is the column tweets are grouped by
const DateColumn = "date"

// Aggregator regroups per-username tweet files into per-date files
type Aggregator struct {
	usernameDir string
	dateDir     string
	mode        string
	files       *files.Manager
	daily       *exporter.DailyExporter
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
}

// Summary describes one aggregation run
type Summary struct {
	Mode           string         `json:"mode"`
	ClearedFiles   int            `json:"cleared_files"`
	FilesProcessed int            `json:"files_processed"`
	SkippedFiles   []string       `json:"skipped_files,omitempty"`
	RowsWritten    int            `json:"rows_written"`
	RowsByDay      map[string]int `json:"rows_by_day"`
}

// NewAggregator creates an aggregator over the tweet directories of paths. metrics may be nil.
func NewAggregator(paths *config.Paths, cfg config.AggregationConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = config.AggregationTruncate
	}
	return &Aggregator{
		usernameDir: paths.TweetsByUsernameDir,
		dateDir:     paths.TweetsByDateDir,
		mode:        mode,
		files:       files.NewManager(paths, logger),
		daily:       exporter.NewDailyExporter(logger),
		metrics:     metrics,
		logger:      infrastructure.WithComponent(logger, "aggregator"),
	}
}

// AggregateByDate appends the rows of every per-username file to {day}.csv in
// the by-date directory, where day is the date value cut at its first
// whitespace. Each file is sorted by date first, so rows reach a day file in
// date order per source file. In truncate mode existing day files are removed
// beforehand.
func (a *Aggregator) AggregateByDate(ctx context.Context) (*Summary, error) {
	summary := &Summary{Mode: a.mode, RowsByDay: make(map[string]int)}

	switch a.mode {
	case config.AggregationTruncate:
		cleared, err := a.files.ClearCSVFiles(a.dateDir)
		if err != nil {
			return nil, err
		}
		summary.ClearedFiles = cleared
	case config.AggregationAppend:
		a.logger.WarnContext(ctx, "Appending to existing date files; rerunning duplicates rows",
			slog.String("dir", a.dateDir))
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown aggregation mode %q", a.mode), nil)
	}

	sources, err := files.NewDiscovery(a.usernameDir).FindCSVFiles(".")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list username files", err)
	}
	a.logger.InfoContext(ctx, "Aggregating tweet files by date",
		slog.Int("files", len(sources)),
		slog.Int64("total_bytes", files.TotalSize(sources)))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		header, rows, err := ReadTweetFile(src.Path)
		if err != nil {
			return summary, err
		}
		if len(rows) == 0 {
			a.logger.InfoContext(ctx, "Skipping file without rows", slog.String("file", src.Name))
			summary.SkippedFiles = append(summary.SkippedFiles, src.Name)
			continue
		}

		dateIdx := slices.Index(header, DateColumn)
		if dateIdx < 0 {
			return summary, apperrors.NewParsingError("missing date column", nil).WithContext("file", src.Path)
		}
		for i, row := range rows {
			if dateIdx >= len(row) || strings.TrimSpace(row[dateIdx]) == "" {
				return summary, apperrors.NewParsingError("empty date", nil).
					WithContext("file", src.Path).
					WithContext("row", i+1)
			}
			if day := domain.TruncateToDay(strings.TrimSpace(row[dateIdx])); !exporter.ValidDayKey(day) {
				return summary, apperrors.NewParsingError(fmt.Sprintf("date %q does not name a day file", row[dateIdx]), nil).
					WithContext("file", src.Path).
					WithContext("row", i+1)
			}
		}

		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i][dateIdx] < rows[j][dateIdx]
		})

		result, err := a.daily.AppendDailyRows(a.dateDir, header, rows, func(row []string) string {
			return domain.TruncateToDay(strings.TrimSpace(row[dateIdx]))
		})
		if err != nil {
			return summary, fmt.Errorf("failed to aggregate %s: %w", src.Name, err)
		}

		for day, n := range result.RowsByDay {
			summary.RowsByDay[day] += n
		}
		summary.RowsWritten += len(rows)
		summary.FilesProcessed++

		a.logger.DebugContext(ctx, "Aggregated username file",
			slog.String("file", src.Name),
			slog.Int("rows", len(rows)),
			slog.Int("days", len(result.RowsByDay)))
	}

	a.metrics.RecordRowsWritten(ctx, "aggregate", summary.RowsWritten)
	a.logger.InfoContext(ctx, "Aggregated tweets by date",
		slog.String("mode", summary.Mode),
		slog.Int("files", summary.FilesProcessed),
		slog.Int("skipped", len(summary.SkippedFiles)),
		slog.Int("rows", summary.RowsWritten),
		slog.Int("days", len(summary.RowsByDay)))

	return summary, nil
}

// IsIndexColumn reports whether a header names a synthetic row index as
// written by tabular tools ("" or "Unnamed: 0")
func IsIndexColumn(name string) bool {
	return name == "" || strings.HasPrefix(name, "Unnamed: ")
}

// ReadTweetFile reads a tweet CSV file and drops synthetic index columns.
// An empty file yields no header and no rows.
func ReadTweetFile(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewNotFoundError(path)
		}
		return nil, nil, apperrors.NewStorageError("failed to open tweet file", err)
	}
	defer file.Close()

	reader := csv.NewReader(exporter.SkipBOM(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read header", err).WithContext("file", path)
	}

	keep := make([]int, 0, len(header))
	for j, name := range header {
		if !IsIndexColumn(name) {
			keep = append(keep, j)
		}
	}
	project := func(record []string) []string {
		if len(keep) == len(record) && len(keep) == len(header) {
			return record
		}
		out := make([]string, len(keep))
		for k, j := range keep {
			if j < len(record) {
				out[k] = record[j]
			}
		}
		return out
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError("failed to read record", err).WithContext("file", path)
		}
		rows = append(rows, project(record))
	}

	return project(header), rows, nil
}
