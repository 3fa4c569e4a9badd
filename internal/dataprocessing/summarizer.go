package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"stocksentiment/internal/config"
	"stocksentiment/internal/exporter"
	"stocksentiment/pkg/contracts/domain"
)

// RunAll wrangles sources one after another and stops at the first failure.
// Reports of the corpora written so far are returned with the error. When the
// summary workbook is enabled it is rebuilt from every report on disk.
func (w *Wrangler) RunAll(ctx context.Context, sources []config.CorpusSource) ([]domain.CorpusReport, error) {
	reports := make([]domain.CorpusReport, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		result, err := w.Run(ctx, src)
		if err != nil {
			return reports, err
		}
		reports = append(reports, *result.Report)
	}

	if w.cfg.SummaryWorkbook {
		if err := w.WriteSummary(ctx); err != nil {
			return reports, err
		}
	}

	w.logger.InfoContext(ctx, "Wrangled corpora", slog.Int("corpora", len(reports)))
	return reports, nil
}

// WriteSummary collects every corpus report on disk into the summary workbook
func (w *Wrangler) WriteSummary(ctx context.Context) error {
	reports, err := exporter.LoadReports(w.paths.CorporaDir)
	if err != nil {
		return fmt.Errorf("failed to load corpus reports: %w", err)
	}
	if err := exporter.WriteSummaryWorkbook(w.paths.SummaryWorkbook, reports); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Wrote corpora summary",
		slog.String("file_path", w.paths.SummaryWorkbook),
		slog.Int("corpora", len(reports)))
	return nil
}
