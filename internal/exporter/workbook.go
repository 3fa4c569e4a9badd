package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

// SummarySheet is the worksheet name of the corpora summary workbook
const SummarySheet = "Summary"

var summaryHeaders = []string{
	"Corpus", "Name", "Source", "Initial Rows", "After Null Drop", "After Sentinel Drop",
	"After Exact Dedup", "After Conflict Drop", "Conflicting Texts", "Unknown Labels",
	"Total", "Negative", "Neutral", "Positive",
}

// WriteSummaryWorkbook writes one row per corpus report into an xlsx workbook
func WriteSummaryWorkbook(path string, reports []domain.CorpusReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return apperrors.NewStorageError("failed to name summary sheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeaders); err != nil {
		return apperrors.NewStorageError("failed to write summary header", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(summaryHeaders))
	if err := f.SetCellStyle(SummarySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return apperrors.NewStorageError("failed to style summary header", err)
	}

	for i, r := range reports {
		row := []interface{}{
			r.ID, r.Name, r.Source, r.InitialRows, r.AfterNullDrop, r.AfterSentinelDrop,
			r.AfterExactDedup, r.AfterConflictDrop, r.ConflictingTexts, r.UnknownLabels,
			r.Total, r.Negative, r.Neutral, r.Positive,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write summary row for corpus %d", r.ID), err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "B", "C", 32); err != nil {
		return apperrors.NewStorageError("failed to size summary columns", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save summary workbook", err).WithContext("file", path)
	}
	return nil
}
