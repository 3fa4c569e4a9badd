package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/exporter"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/pkg/contracts/domain"
)

// PriceFetcher returns a daily price series
type PriceFetcher interface {
	FetchDaily(ctx context.Context, req domain.PriceSeriesRequest) ([]domain.PriceBar, error)
}

// NewTweetSource returns the search client selected by cfg.TweetAPI
func NewTweetSource(cfg config.AcquisitionConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger, opts ...ClientOption) TweetSource {
	if cfg.TweetAPI == config.TweetAPIv1 {
		return NewStandardSearchClient(cfg, metrics, logger)
	}
	opts = append([]ClientOption{WithMetrics(metrics), WithLogger(logger)}, opts...)
	return NewTweetClient(cfg, opts...)
}

// TweetSummary describes one tweet collection run
type TweetSummary struct {
	Usernames    int            `json:"usernames"`
	FilesWritten int            `json:"files_written"`
	EmptyUsers   []string       `json:"empty_users,omitempty"`
	Fetched      int            `json:"fetched"`
	Written      int            `json:"written"`
	ByUsername   map[string]int `json:"by_username"`
}

// Collector writes the raw inputs of the acquisition pipeline
type Collector struct {
	paths     *config.Paths
	cfg       config.AcquisitionConfig
	prices    PriceFetcher
	tweets    TweetSource
	csvWriter *exporter.CSVWriter
	priceOut  *exporter.PriceExporter
	validate  *validator.Validate
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

// NewCollector creates a collector. Either source may be nil when the
// corresponding step is not run.
func NewCollector(paths *config.Paths, cfg config.AcquisitionConfig, prices PriceFetcher, tweets TweetSource,
	metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "collector")
	return &Collector{
		paths:     paths,
		cfg:       cfg,
		prices:    prices,
		tweets:    tweets,
		csvWriter: exporter.NewCSVWriter(logger),
		priceOut:  exporter.NewPriceExporter(logger),
		validate:  validator.New(),
		metrics:   metrics,
		logger:    logger,
	}
}

func (c *Collector) dateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(config.DateLayout, c.cfg.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid start date", err)
	}
	end, err := time.Parse(config.DateLayout, c.cfg.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid end date", err)
	}
	return start, end, nil
}

// CollectPrices downloads the configured ticker and replaces the stock market file
func (c *Collector) CollectPrices(ctx context.Context) (int, error) {
	if c.prices == nil {
		return 0, apperrors.NewConfigError("no price source configured", nil)
	}
	start, end, err := c.dateRange()
	if err != nil {
		return 0, err
	}

	c.logger.InfoContext(ctx, "Collecting stock market data", slog.String("ticker", c.cfg.Ticker))
	bars, err := c.prices.FetchDaily(ctx, domain.PriceSeriesRequest{
		Ticker:    c.cfg.Ticker,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return 0, err
	}

	if err := c.priceOut.ExportPrices(c.paths.StockMarketCSV, bars); err != nil {
		return 0, err
	}
	c.metrics.RecordRowsWritten(ctx, "prices", len(bars))
	return len(bars), nil
}

// CollectTweets searches every username listed in the usernames file for the
// terms of the search terms file and writes one file per username
func (c *Collector) CollectTweets(ctx context.Context) (*TweetSummary, error) {
	usernames, err := LoadUsernames(c.paths.UsernamesCSV)
	if err != nil {
		return nil, err
	}
	terms, err := LoadSearchTerms(c.paths.SearchTermsCSV)
	if err != nil {
		return nil, err
	}
	return c.CollectUsernames(ctx, usernames, GenerateSearchString(terms))
}

// CollectUsernames collects each username in order. A username without
// results produces no file.
func (c *Collector) CollectUsernames(ctx context.Context, usernames []string, search string) (*TweetSummary, error) {
	if c.tweets == nil {
		return nil, apperrors.NewConfigError("no tweet source configured", nil)
	}
	start, end, err := c.dateRange()
	if err != nil {
		return nil, err
	}

	summary := &TweetSummary{Usernames: len(usernames), ByUsername: make(map[string]int)}
	for _, username := range usernames {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		c.logger.InfoContext(ctx, "Collecting tweets", slog.String("username", username))
		records, err := c.tweets.Search(ctx, TweetQuery{
			Username: username,
			Terms:    search,
			Language: c.cfg.Language,
			Since:    start,
			Until:    end.AddDate(0, 0, 1),
		})
		if err != nil {
			return summary, fmt.Errorf("collect tweets of %s: %w", username, err)
		}
		summary.Fetched += len(records)

		if len(records) == 0 {
			summary.EmptyUsers = append(summary.EmptyUsers, username)
			c.logger.InfoContext(ctx, "No tweets found", slog.String("username", username))
			continue
		}

		n, err := c.writeUsername(ctx, username, records)
		if err != nil {
			return summary, err
		}
		summary.FilesWritten++
		summary.Written += n
		summary.ByUsername[username] = n
	}
	return summary, nil
}

func (c *Collector) writeUsername(ctx context.Context, username string, records []domain.TweetRecord) (int, error) {
	for i := range records {
		if err := c.validate.Struct(records[i]); err != nil {
			return 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid tweet record: %v", err)).
				WithContext("username", username).
				WithContext("index", i)
		}
	}

	kept, stats := DropDuplicateTweets(records)
	c.logger.InfoContext(ctx, "Removed duplicate tweets",
		slog.String("username", username),
		slog.Int("initial", stats.Initial),
		slog.Int("after_exact_dedup", stats.AfterExactDedup),
		slog.Int("after_partial_dedup", stats.AfterPartialDedup))

	rows := make([][]string, len(kept))
	for i, r := range kept {
		rows[i] = r.Row()
	}
	if err := c.csvWriter.WriteSimpleCSV(c.paths.GetUsernameCSVPath(username), domain.TweetColumns, rows); err != nil {
		return 0, err
	}
	c.metrics.RecordRowsWritten(ctx, "tweets", len(rows))
	return len(rows), nil
}

// TweetDedupStats counts records after each duplicate removal
type TweetDedupStats struct {
	Initial           int
	AfterExactDedup   int
	AfterPartialDedup int
}

// DropDuplicateTweets keeps the first of identical records, then removes
// every record whose text occurs more than once. Order is preserved.
func DropDuplicateTweets(records []domain.TweetRecord) ([]domain.TweetRecord, TweetDedupStats) {
	stats := TweetDedupStats{Initial: len(records)}

	seen := make(map[domain.TweetRecord]struct{}, len(records))
	unique := make([]domain.TweetRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}
	stats.AfterExactDedup = len(unique)

	texts := make(map[string]int, len(unique))
	for _, r := range unique {
		texts[r.Tweet]++
	}
	kept := make([]domain.TweetRecord, 0, len(unique))
	for _, r := range unique {
		if texts[r.Tweet] == 1 {
			kept = append(kept, r)
		}
	}
	stats.AfterPartialDedup = len(kept)
	return kept, stats
}
