package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/pkg/contracts/domain"
)

func TestPriceExporter_ExportPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock_market_data", "stock_market_data.csv")

	bars := []domain.PriceBar{
		{Date: time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), Open: 74.29, High: 75.14, Low: 74.12, Close: 74.36, AdjClose: 73.0, Volume: 146322800},
		{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Open: 74.06, High: 75.15, Low: 73.8, Close: 75.09, AdjClose: 73.76, Volume: 135480400},
	}

	require.NoError(t, NewPriceExporter(nil).ExportPrices(path, bars))

	assert.Equal(t,
		"Date,High,Low,Open,Close,Volume,Adj Close\n"+
			"2020-01-02,75.15,73.8,74.06,75.09,135480400,73.76\n"+
			"2020-01-03,75.14,74.12,74.29,74.36,146322800,73\n",
		readFile(t, path))

	// input order is untouched
	assert.Equal(t, 3, bars[0].Date.Day())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"float trims zeros", formatFloat(13.40), "13.4"},
		{"float integral", formatFloat(2), "2"},
		{"float precision", formatFloat(0.1 + 0.2), "0.30000000000000004"},
		{"negative int", formatInt(-5), "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
