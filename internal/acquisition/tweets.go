package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

// TweetProvider is the metrics label of the tweet source
const TweetProvider = "tweets"

// TweetQuery selects the tweets of one username
type TweetQuery struct {
	Username string
	Terms    string
	Language string
	Since    time.Time
	Until    time.Time
}

// Search renders the query operator string
func (q TweetQuery) Search() string {
	var b strings.Builder
	b.WriteString("from:")
	b.WriteString(q.Username)
	if q.Terms != "" {
		b.WriteString(" (")
		b.WriteString(q.Terms)
		b.WriteString(")")
	}
	if q.Language != "" {
		b.WriteString(" lang:")
		b.WriteString(q.Language)
	}
	return b.String()
}

// TweetSource returns the raw tweets matching a query
type TweetSource interface {
	Search(ctx context.Context, q TweetQuery) ([]domain.TweetRecord, error)
}

// TweetClient searches the bearer-token v2 API
type TweetClient struct {
	endpoint   string
	token      string
	maxResults int
	client     *Client
	logger     *slog.Logger
}

// NewTweetClient creates a v2 search client for cfg.TweetURL
func NewTweetClient(cfg config.AcquisitionConfig, opts ...ClientOption) *TweetClient {
	client := NewClient(TweetProvider, cfg, opts...)
	return &TweetClient{
		endpoint:   cfg.TweetURL,
		token:      cfg.BearerToken,
		maxResults: cfg.MaxResults,
		client:     client,
		logger:     client.logger,
	}
}

type searchPage struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		AuthorID      string `json:"author_id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			ReplyCount   int `json:"reply_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

// Search follows next_token pagination until the result set is exhausted
func (c *TweetClient) Search(ctx context.Context, q TweetQuery) ([]domain.TweetRecord, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	var records []domain.TweetRecord
	nextToken := ""
	for pages := 0; ; pages++ {
		body, err := c.client.Get(ctx, c.pageURL(q, nextToken), header)
		if err != nil {
			return nil, err
		}

		var page searchPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, apperrors.NewParsingError("failed to decode search page", err).
				WithContext("username", q.Username).
				WithContext("page", pages)
		}

		batch, err := page.records()
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)

		c.logger.DebugContext(ctx, "Fetched search page",
			slog.String("username", q.Username),
			slog.Int("page", pages),
			slog.Int("tweets", len(batch)))

		if page.Meta.NextToken == "" {
			break
		}
		nextToken = page.Meta.NextToken
	}
	return records, nil
}

func (c *TweetClient) pageURL(q TweetQuery, nextToken string) string {
	query := url.Values{}
	query.Set("query", q.Search())
	if !q.Since.IsZero() {
		query.Set("start_time", q.Since.UTC().Format(time.RFC3339))
	}
	if !q.Until.IsZero() {
		query.Set("end_time", q.Until.UTC().Format(time.RFC3339))
	}
	if c.maxResults > 0 {
		query.Set("max_results", fmt.Sprint(c.maxResults))
	}
	query.Set("tweet.fields", "created_at,public_metrics,author_id")
	query.Set("expansions", "author_id")
	query.Set("user.fields", "name,username")
	if nextToken != "" {
		query.Set("next_token", nextToken)
	}

	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + query.Encode()
}

func (p *searchPage) records() ([]domain.TweetRecord, error) {
	type author struct{ name, username string }
	authors := make(map[string]author, len(p.Includes.Users))
	for _, u := range p.Includes.Users {
		authors[u.ID] = author{name: u.Name, username: u.Username}
	}

	records := make([]domain.TweetRecord, 0, len(p.Data))
	for _, t := range p.Data {
		created, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			return nil, apperrors.NewParsingError("invalid tweet timestamp", err).WithContext("tweet_id", t.ID)
		}
		a := authors[t.AuthorID]
		records = append(records, domain.TweetRecord{
			Date:      created.UTC().Format(domain.TweetTimestampLayout),
			Tweet:     t.Text,
			Username:  a.username,
			Name:      a.name,
			Link:      StatusLink(a.username, t.ID),
			NLikes:    t.PublicMetrics.LikeCount,
			NReplies:  t.PublicMetrics.ReplyCount,
			NRetweets: t.PublicMetrics.RetweetCount,
		})
	}
	return records, nil
}

// StatusLink returns the public URL of a tweet
func StatusLink(username, id string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", username, id)
}
