package exporter

import (
	"log/slog"
	"sort"

	"stocksentiment/internal/config"
	"stocksentiment/pkg/contracts/domain"
)

// PriceColumns is the column order of the stock market data file
var PriceColumns = []string{"Date", "High", "Low", "Open", "Close", "Volume", "Adj Close"}

// PriceExporter writes daily price series
type PriceExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewPriceExporter creates a new price exporter
func NewPriceExporter(logger *slog.Logger) *PriceExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceExporter{csvWriter: NewCSVWriter(logger), logger: logger}
}

// ExportPrices replaces outputPath with bars sorted by date
func (p *PriceExporter) ExportPrices(outputPath string, bars []domain.PriceBar) error {
	sorted := make([]domain.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	records := make([][]string, 0, len(sorted))
	for _, bar := range sorted {
		records = append(records, priceRow(bar))
	}

	if err := p.csvWriter.WriteSimpleCSV(outputPath, PriceColumns, records); err != nil {
		return err
	}

	p.logger.Info("Exported price series",
		slog.String("file_path", outputPath),
		slog.Int("trading_days", len(records)))
	return nil
}

func priceRow(bar domain.PriceBar) []string {
	return []string{
		bar.Date.Format(config.DateLayout),
		formatFloat(bar.High),
		formatFloat(bar.Low),
		formatFloat(bar.Open),
		formatFloat(bar.Close),
		formatInt(bar.Volume),
		formatFloat(bar.AdjClose),
	}
}
