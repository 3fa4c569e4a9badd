package acquisition

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

// PriceProvider is the metrics label of the price source
const PriceProvider = "prices"

// PriceClient downloads daily price series
type PriceClient struct {
	baseURL  string
	client   *Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPriceClient creates a price client for cfg.PriceURL
func NewPriceClient(cfg config.AcquisitionConfig, opts ...ClientOption) *PriceClient {
	client := NewClient(PriceProvider, cfg, opts...)
	return &PriceClient{
		baseURL:  strings.TrimRight(cfg.PriceURL, "/"),
		client:   client,
		validate: validator.New(),
		logger:   client.logger,
	}
}

// FetchDaily returns the daily bars of req.Ticker from StartDate through
// EndDate inclusive
func (p *PriceClient) FetchDaily(ctx context.Context, req domain.PriceSeriesRequest) ([]domain.PriceBar, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid price request: %v", err))
	}

	query := url.Values{}
	query.Set("period1", strconv.FormatInt(req.StartDate.Unix(), 10))
	query.Set("period2", strconv.FormatInt(req.EndDate.AddDate(0, 0, 1).Unix(), 10))
	query.Set("interval", "1d")
	query.Set("events", "history")
	rawURL := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(req.Ticker), query.Encode())

	p.logger.InfoContext(ctx, "Fetching price series",
		slog.String("ticker", req.Ticker),
		slog.String("start_date", req.StartDate.Format(config.DateLayout)),
		slog.String("end_date", req.EndDate.Format(config.DateLayout)))

	body, err := p.client.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	bars, err := ParsePriceCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Fetched price series",
		slog.String("ticker", req.Ticker),
		slog.Int("trading_days", len(bars)))
	return bars, nil
}

// ParsePriceCSV reads a Date,Open,High,Low,Close,Adj Close,Volume series.
// Rows holding "null" values are skipped.
func ParsePriceCSV(r io.Reader) ([]domain.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("empty price series", err)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read price header", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"} {
		if _, ok := index[name]; !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("price series has no %q column", name), nil).
				WithContext("header", header)
		}
	}

	var bars []domain.PriceBar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read price row", err)
		}
		if hasNull(record) {
			continue
		}

		bar, err := parseBar(record, index)
		if err != nil {
			return nil, apperrors.NewParsingError("invalid price row", err).WithContext("line", line)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func hasNull(record []string) bool {
	for _, v := range record {
		if v == "null" {
			return true
		}
	}
	return false
}

func parseBar(record []string, index map[string]int) (domain.PriceBar, error) {
	field := func(name string) string {
		if i := index[name]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var bar domain.PriceBar
	var err error
	if bar.Date, err = time.Parse(config.DateLayout, field("Date")); err != nil {
		return bar, err
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"Open", &bar.Open},
		{"High", &bar.High},
		{"Low", &bar.Low},
		{"Close", &bar.Close},
		{"Adj Close", &bar.AdjClose},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(field(f.name), 64); err != nil {
			return bar, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if bar.Volume, err = strconv.ParseInt(field("Volume"), 10, 64); err != nil {
		return bar, fmt.Errorf("Volume: %w", err)
	}
	return bar, nil
}
