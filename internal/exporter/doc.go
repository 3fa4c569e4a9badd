// Package exporter writes the pipeline's output files.
//
// CSVWriter is the core CSV writer: overwrite or append, header only on
// creation, header checks on append, optional UTF-8 BOM and streaming.
//
// DailyExporter appends rows to per-calendar-day files, PriceExporter writes
// the daily price series, and CorpusExporter persists each canonical corpus
// as CSV, a gob snapshot and a JSON report. WriteSummaryWorkbook collects the
// corpus reports into an xlsx workbook.
//
// Example usage:
//
//	corpora := exporter.NewCorpusExporter(paths, logger)
//	if err := corpora.Export(ctx, report, records); err != nil {
//	    return err
//	}
//	records, err := exporter.ReadSnapshot(report.SnapshotPath)
package exporter
