package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stocksentiment/pkg/contracts/domain"
)

func TestWriteSummaryWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpora", "summary.xlsx")
	reports := []domain.CorpusReport{
		{ID: 1, Name: "apple", Source: "Apple.csv", InitialRows: 10, Total: 6, Negative: 1, Neutral: 2, Positive: 3},
		{ID: 5, Name: "djia", Source: "Combined_News_DJIA.csv", InitialRows: 50, Total: 40, Negative: 20, Positive: 20},
	}

	require.NoError(t, WriteSummaryWorkbook(path, reports))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Corpus", rows[0][0])
	assert.Equal(t, "Positive", rows[0][13])
	assert.Equal(t, []string{"1", "apple", "Apple.csv", "10"}, rows[1][:4])
	assert.Equal(t, "20", rows[2][13])
}

func TestWriteSummaryWorkbook_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, WriteSummaryWorkbook(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
