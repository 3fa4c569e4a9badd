package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ChimeraCoder/anaconda"
	"golang.org/x/time/rate"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/pkg/contracts/domain"
)

// StandardSearchClient searches the OAuth1 v1.1 standard search API
type StandardSearchClient struct {
	api        *anaconda.TwitterApi
	limiter    *rate.Limiter
	maxResults int
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// NewStandardSearchClient creates a v1.1 search client from the OAuth credentials in cfg
func NewStandardSearchClient(cfg config.AcquisitionConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *StandardSearchClient {
	if logger == nil {
		logger = slog.Default()
	}
	api := anaconda.NewTwitterApiWithCredentials(cfg.AccessToken, cfg.AccessTokenSecret, cfg.ConsumerKey, cfg.ConsumerSecret)
	api.ReturnRateLimitError(true)

	maxResults := cfg.MaxResults
	if maxResults > 100 {
		maxResults = 100
	}
	return &StandardSearchClient{
		api:        api,
		limiter:    newLimiter(cfg),
		maxResults: maxResults,
		metrics:    metrics,
		logger:     infrastructure.WithComponent(logger, TweetProvider+"_v1_client"),
	}
}

// Close stops the underlying request throttle
func (c *StandardSearchClient) Close() {
	c.api.Close()
}

// Search pages through next_results until the result set is exhausted
func (c *StandardSearchClient) Search(ctx context.Context, q TweetQuery) ([]domain.TweetRecord, error) {
	query := q.Search()
	if !q.Since.IsZero() {
		query += " since:" + q.Since.UTC().Format(config.DateLayout)
	}

	v := url.Values{}
	v.Set("tweet_mode", "extended")
	v.Set("result_type", "recent")
	v.Set("count", fmt.Sprint(c.maxResults))
	if !q.Until.IsZero() {
		v.Set("until", q.Until.UTC().Format(config.DateLayout))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.metrics.RecordAPIRequest(ctx, TweetProvider, false)
	resp, err := c.api.GetSearch(query, v)
	if err != nil {
		return nil, c.wrap(err, q.Username)
	}

	var records []domain.TweetRecord
	for page := 0; ; page++ {
		batch, err := StandardTweetRecords(resp.Statuses)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)

		c.logger.DebugContext(ctx, "Fetched search page",
			slog.String("username", q.Username),
			slog.Int("page", page),
			slog.Int("tweets", len(batch)))

		if resp.Metadata.NextResults == "" {
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		c.metrics.RecordAPIRequest(ctx, TweetProvider, false)
		if resp, err = resp.GetNext(c.api); err != nil {
			return nil, c.wrap(err, q.Username)
		}
	}
	return records, nil
}

func (c *StandardSearchClient) wrap(err error, username string) error {
	appErr := apperrors.NewNetworkError("standard search failed", err).WithContext("username", username)
	if apiErr, ok := err.(*anaconda.ApiError); ok {
		appErr = appErr.WithContext("status_code", apiErr.StatusCode)
	}
	return appErr
}

// StandardTweetRecords converts v1.1 statuses. The v1.1 payload carries no
// reply count, so NReplies is zero.
func StandardTweetRecords(tweets []anaconda.Tweet) ([]domain.TweetRecord, error) {
	records := make([]domain.TweetRecord, 0, len(tweets))
	for _, t := range tweets {
		created, err := time.Parse(time.RubyDate, t.CreatedAt)
		if err != nil {
			return nil, apperrors.NewParsingError("invalid tweet timestamp", err).WithContext("tweet_id", t.IdStr)
		}
		text := t.FullText
		if text == "" {
			text = t.Text
		}
		records = append(records, domain.TweetRecord{
			Date:      created.UTC().Format(domain.TweetTimestampLayout),
			Tweet:     text,
			Username:  t.User.ScreenName,
			Name:      t.User.Name,
			Link:      StatusLink(t.User.ScreenName, t.IdStr),
			NLikes:    t.FavoriteCount,
			NRetweets: t.RetweetCount,
		})
	}
	return records, nil
}
