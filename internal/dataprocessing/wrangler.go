package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/exporter"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/pkg/contracts/domain"
)

// Wrangler turns raw labeled datasets into canonical corpora
type Wrangler struct {
	paths    *config.Paths
	cfg      config.WranglingConfig
	exporter *exporter.CorpusExporter
	metrics  *infrastructure.PipelineMetrics
	validate *validator.Validate
	logger   *slog.Logger
}

// Result is the outcome of wrangling one source
type Result struct {
	Report  *domain.CorpusReport
	Records []domain.LabeledText
}

// NewWrangler creates a wrangler writing into paths.CorporaDir. metrics may be nil.
func NewWrangler(paths *config.Paths, cfg config.WranglingConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Wrangler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wrangler{
		paths:    paths,
		cfg:      cfg,
		exporter: exporter.NewCorpusExporter(paths, logger),
		metrics:  metrics,
		validate: validator.New(),
		logger:   infrastructure.WithComponent(logger, "wrangler"),
	}
}

// Run reads one source, removes nulls and duplicates, normalizes labels and
// writes corpus{N}.csv, corpus{N}.gob and corpus{N}.json. Unknown labels are
// counted and skipped.
func (w *Wrangler) Run(ctx context.Context, src config.CorpusSource) (*Result, error) {
	if err := w.validate.Struct(src); err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid corpus %d: %v", src.ID, err))
	}
	vocabulary, err := VocabularyFor(src.Vocabulary)
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	path := w.paths.GetLabeledPath(src.File)
	logger := infrastructure.WithCorpus(w.logger, src.ID, src.File)
	logger.InfoContext(ctx, "Wrangling corpus", slog.String("shape", src.Shape))

	pairs, err := w.load(ctx, src, path, logger)
	if err != nil {
		return nil, fmt.Errorf("corpus %d: %w", src.ID, err)
	}

	clean, stats := Deduplicate(Prepare(pairs, vocabulary), vocabulary.Canonical(src.Sentinel))
	logger.InfoContext(ctx, "Removed nulls and duplicates",
		slog.Int("initial_rows", stats.Initial),
		slog.Int("after_null_drop", stats.AfterNullDrop),
		slog.Int("after_sentinel_drop", stats.AfterSentinelDrop),
		slog.Int("after_exact_dedup", stats.AfterExactDedup),
		slog.Int("after_conflict_drop", stats.AfterConflictDrop),
		slog.Int("conflicting_texts", stats.ConflictingTexts))
	for reason, n := range stats.Dropped() {
		w.metrics.RecordRowsDropped(ctx, src.ID, reason, n)
	}

	records, unknown := vocabulary.Normalize(clean)
	if unknown > 0 {
		logger.WarnContext(ctx, "Unknown sentiment label",
			slog.String("vocabulary", vocabulary.Name),
			slog.Int("count", unknown))
		w.metrics.RecordUnknownLabels(ctx, src.ID, unknown)
	}

	report := &domain.CorpusReport{
		ID:                src.ID,
		Name:              src.Name,
		Source:            filepath.Base(path),
		InitialRows:       stats.Initial,
		AfterNullDrop:     stats.AfterNullDrop,
		AfterSentinelDrop: stats.AfterSentinelDrop,
		AfterExactDedup:   stats.AfterExactDedup,
		AfterConflictDrop: stats.AfterConflictDrop,
		ConflictingTexts:  stats.ConflictingTexts,
		UnknownLabels:     unknown,
	}
	report.Count(records)

	if err := w.exporter.Export(ctx, report, records); err != nil {
		return nil, fmt.Errorf("corpus %d: %w", src.ID, err)
	}
	w.metrics.RecordRowsWritten(ctx, "wrangle", len(records))

	logger.InfoContext(ctx, "Corpus written",
		slog.Int("total", report.Total),
		slog.Int("negative", report.Negative),
		slog.Int("neutral", report.Neutral),
		slog.Int("positive", report.Positive))

	return &Result{Report: report, Records: records}, nil
}

// load reads src according to its shape and projects it to (text, sentiment)
func (w *Wrangler) load(ctx context.Context, src config.CorpusSource, path string, logger *slog.Logger) ([]Pair, error) {
	opts := ReadOptions{
		Delimiter: src.DelimiterRune(),
		Encoding:  src.Encoding,
		NoHeader:  src.NoHeader,
		Logger:    logger,
	}

	if src.Shape == config.ShapeChunked {
		chunkSize := src.ChunkSize
		if chunkSize <= 0 {
			chunkSize = w.cfg.ChunkSize
		}
		table, err := ReadCSVChunked(ctx, path, opts, chunkSize, []string{src.TextColumn, src.SentimentColumn})
		if err != nil {
			return nil, err
		}
		return table.Pairs(src.TextColumn, src.SentimentColumn)
	}

	table, err := w.readTable(src, path, opts)
	if err != nil {
		return nil, err
	}
	if len(src.RenameColumns) > 0 {
		if err := table.Rename(src.RenameColumns); err != nil {
			return nil, apperrors.NewParsingError("failed to rename columns", err).WithContext("file", path)
		}
	}
	table.Drop(src.DropColumns...)

	if src.Shape == config.ShapeWide {
		pairs, err := WideToLong(table)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to reshape wide table", err).WithContext("file", path)
		}
		return pairs, nil
	}

	pairs, err := table.Pairs(src.TextColumn, src.SentimentColumn)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to select columns", err).WithContext("file", path)
	}
	return pairs, nil
}

func (w *Wrangler) readTable(src config.CorpusSource, path string, opts ReadOptions) (*Table, error) {
	format := src.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if format == "xlsx" {
		return ReadXLSX(path, src.Sheet)
	}
	return ReadCSV(path, opts)
}
