package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/files"
	"stocksentiment/pkg/contracts/domain"
)

// CorpusExporter persists canonical corpora and their reports
type CorpusExporter struct {
	csvWriter *CSVWriter
	files     *files.Manager
	paths     *config.Paths
	logger    *slog.Logger
	now       func() time.Time
}

// NewCorpusExporter creates a new corpus exporter
func NewCorpusExporter(paths *config.Paths, logger *slog.Logger) *CorpusExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorpusExporter{
		csvWriter: NewCSVWriter(logger),
		files:     files.NewManager(paths, logger),
		paths:     paths,
		logger:    logger.With(slog.String("component", "corpus_exporter")),
		now:       time.Now,
	}
}

// Export writes corpus{N}.csv, corpus{N}.gob and corpus{N}.json, replacing
// any previous run. The report's output paths and timestamp are filled in.
func (e *CorpusExporter) Export(ctx context.Context, report *domain.CorpusReport, records []domain.LabeledText) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records = normalizeRecords(records)

	csvPath := e.paths.GetCorpusPath(report.ID, config.CSVExt)
	snapshotPath := e.paths.GetCorpusPath(report.ID, config.SnapshotExt)
	reportPath := e.paths.GetCorpusPath(report.ID, config.ReportExt)

	stream, err := e.csvWriter.CreateStreamWriter(csvPath, domain.CorpusColumns)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := stream.WriteRecord([]string{rec.Text, rec.Sentiment.String()}); err != nil {
			stream.Close()
			return apperrors.NewStorageError("failed to write corpus record", err).WithContext("file", csvPath)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("failed to close corpus file", err).WithContext("file", csvPath)
	}

	if err := WriteSnapshot(snapshotPath, records); err != nil {
		return err
	}

	report.CSVPath = csvPath
	report.SnapshotPath = snapshotPath
	report.GeneratedAt = e.now().UTC()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal corpus report: %w", err)
	}
	if err := e.files.WriteFileAtomic(reportPath, data); err != nil {
		return apperrors.NewStorageError("failed to write corpus report", err)
	}

	e.logger.InfoContext(ctx, "Exported corpus",
		slog.Int("corpus", report.ID),
		slog.String("csv_path", csvPath),
		slog.String("snapshot_path", snapshotPath),
		slog.Int("records", len(records)))

	return nil
}

// normalizeRecords returns records with LF-only texts so that the CSV and the
// snapshot hold the same values. records is copied only when a text changes.
func normalizeRecords(records []domain.LabeledText) []domain.LabeledText {
	for i, rec := range records {
		if text := domain.NormalizeText(rec.Text); text != rec.Text {
			out := slices.Clone(records)
			for j := i; j < len(out); j++ {
				out[j].Text = domain.NormalizeText(out[j].Text)
			}
			return out
		}
	}
	return records
}

// ReadCorpusCSV loads a canonical corpus file
func ReadCorpusCSV(path string) ([]domain.LabeledText, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError("failed to open corpus", err)
	}
	defer file.Close()

	reader := csv.NewReader(SkipBOM(file))
	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read corpus header", err).WithContext("file", path)
	}
	if !slices.Equal(header, domain.CorpusColumns) {
		return nil, apperrors.NewParsingError(fmt.Sprintf("unexpected corpus header %v", header), nil).WithContext("file", path)
	}

	var records []domain.LabeledText
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read corpus row", err).WithContext("line", line)
		}
		sentiment, err := domain.ParseSentiment(row[1])
		if err != nil {
			return nil, apperrors.NewParsingError("invalid corpus sentiment", err).WithContext("line", line)
		}
		records = append(records, domain.LabeledText{Text: row[0], Sentiment: sentiment})
	}

	return records, nil
}

// LoadReports reads every corpus report in dir, ordered by corpus id
func LoadReports(dir string) ([]domain.CorpusReport, error) {
	found, err := files.NewDiscovery(dir).FindFilesByPattern(".", "corpus*"+config.ReportExt)
	if err != nil {
		return nil, err
	}

	reports := make([]domain.CorpusReport, 0, len(found))
	for _, f := range found {
		report, err := readReport(f.Path)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ID < reports[j].ID
	})
	return reports, nil
}

// LoadReport reads the report of corpus id from dir
func LoadReport(dir string, id int) (*domain.CorpusReport, error) {
	return readReport(filepath.Join(dir, domain.CorpusFileName(id, config.ReportExt)))
}

func readReport(path string) (*domain.CorpusReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError("failed to read corpus report", err)
	}

	var report domain.CorpusReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewParsingError("failed to decode corpus report", err).WithContext("file", path)
	}
	return &report, nil
}
