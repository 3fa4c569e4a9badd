package acquisition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

const priceSeries = `Date,Open,High,Low,Close,Adj Close,Volume
2019-01-02,38.722500,39.712502,38.557499,39.480000,38.382229,148158800
2019-01-03,null,null,null,null,null,null
2019-01-04,36.955002,37.207500,36.474998,36.982498,35.954384,365248800
`

func TestPriceClientFetchDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAPL", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1546300800", q.Get("period1"))
		assert.Equal(t, "1609459200", q.Get("period2"), "end date is inclusive")
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "history", q.Get("events"))
		_, _ = w.Write([]byte(priceSeries))
	}))
	defer server.Close()

	client := NewPriceClient(testConfig(server.URL))
	bars, err := client.FetchDaily(context.Background(), domain.PriceSeriesRequest{
		Ticker:    "AAPL",
		StartDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.InDelta(t, 38.7225, bars[0].Open, 1e-9)
	assert.InDelta(t, 38.382229, bars[0].AdjClose, 1e-9)
	assert.Equal(t, int64(365248800), bars[1].Volume)
}

func TestPriceClientFetchDaily_InvalidRequest(t *testing.T) {
	client := NewPriceClient(testConfig("http://127.0.0.1:1"))
	_, err := client.FetchDaily(context.Background(), domain.PriceSeriesRequest{
		Ticker:    "AAPL",
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestParsePriceCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "Date,Open,High,Low,Close,Volume\n"},
		{"bad date", "Date,Open,High,Low,Close,Adj Close,Volume\n01/02/2019,1,1,1,1,1,1\n"},
		{"bad number", "Date,Open,High,Low,Close,Adj Close,Volume\n2019-01-02,x,1,1,1,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePriceCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}
