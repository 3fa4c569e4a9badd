package acquisition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/pkg/contracts/domain"
)

type fakeTweets struct {
	byUser  map[string][]domain.TweetRecord
	queries []TweetQuery
	err     error
}

func (f *fakeTweets) Search(_ context.Context, q TweetQuery) ([]domain.TweetRecord, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[q.Username], nil
}

type fakePrices struct {
	bars []domain.PriceBar
	req  domain.PriceSeriesRequest
}

func (f *fakePrices) FetchDaily(_ context.Context, req domain.PriceSeriesRequest) ([]domain.PriceBar, error) {
	f.req = req
	return f.bars, nil
}

func newTestPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir(), DataDir: "data", LogsDir: "logs"})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func rec(date, text, user string) domain.TweetRecord {
	return domain.TweetRecord{Date: date, Tweet: text, Username: user, Name: user, Link: StatusLink(user, "1")}
}

func TestDropDuplicateTweets(t *testing.T) {
	records := []domain.TweetRecord{
		rec("2020-01-01 10:00:00", "a", "alice"),
		rec("2020-01-01 10:00:00", "a", "alice"),
		rec("2020-01-01 11:00:00", "b", "alice"),
		rec("2020-01-01 12:00:00", "b", "alice"),
		rec("2020-01-01 13:00:00", "c", "alice"),
	}

	kept, stats := DropDuplicateTweets(records)
	assert.Equal(t, []domain.TweetRecord{records[0], records[4]}, kept)
	assert.Equal(t, TweetDedupStats{Initial: 5, AfterExactDedup: 4, AfterPartialDedup: 2}, stats)

	again, _ := DropDuplicateTweets(kept)
	assert.Equal(t, kept, again)
}

func TestCollectTweets(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, os.WriteFile(paths.UsernamesCSV, []byte("usernames\nzed\nalice\nbob\n"), 0644))
	require.NoError(t, os.WriteFile(paths.SearchTermsCSV, []byte("terms\n$AAPL\nApple\n"), 0644))

	source := &fakeTweets{byUser: map[string][]domain.TweetRecord{
		"alice": {
			rec("2020-12-27 13:30:00", "up", "alice"),
			rec("2020-12-27 13:30:00", "up", "alice"),
			rec("2020-12-28 09:00:00", "down", "alice"),
		},
		"zed": {rec("2020-12-29 09:00:00", "flat", "zed")},
	}}

	collector := NewCollector(paths, config.Default().Acquisition, nil, source, nil, nil)
	summary, err := collector.CollectTweets(context.Background())
	require.NoError(t, err)

	require.Len(t, source.queries, 3)
	assert.Equal(t, "alice", source.queries[0].Username, "usernames are sorted")
	assert.Equal(t, "$AAPL OR Apple", source.queries[0].Terms)
	assert.Equal(t, "en", source.queries[0].Language)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), source.queries[0].Since)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), source.queries[0].Until)

	assert.Equal(t, 2, summary.FilesWritten)
	assert.Equal(t, []string{"bob"}, summary.EmptyUsers)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, map[string]int{"alice": 2, "zed": 1}, summary.ByUsername)

	data, err := os.ReadFile(paths.GetUsernameCSVPath("alice"))
	require.NoError(t, err)
	assert.Equal(t, "date,tweet,username,name,link,nlikes,nreplies,nretweets\n"+
		"2020-12-27 13:30:00,up,alice,alice,https://twitter.com/alice/status/1,0,0,0\n"+
		"2020-12-28 09:00:00,down,alice,alice,https://twitter.com/alice/status/1,0,0,0\n", string(data))

	_, err = os.Stat(paths.GetUsernameCSVPath("bob"))
	assert.True(t, os.IsNotExist(err), "no file for a username without tweets")
}

func TestCollectUsernames_Errors(t *testing.T) {
	paths := newTestPaths(t)
	cfg := config.Default().Acquisition

	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("boom")
		collector := NewCollector(paths, cfg, nil, &fakeTweets{err: boom}, nil, nil)
		_, err := collector.CollectUsernames(context.Background(), []string{"alice"}, "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid record", func(t *testing.T) {
		source := &fakeTweets{byUser: map[string][]domain.TweetRecord{"alice": {{Tweet: "no date"}}}}
		collector := NewCollector(paths, cfg, nil, source, nil, nil)
		_, err := collector.CollectUsernames(context.Background(), []string{"alice"}, "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("no source", func(t *testing.T) {
		collector := NewCollector(paths, cfg, nil, nil, nil, nil)
		_, err := collector.CollectUsernames(context.Background(), []string{"alice"}, "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		collector := NewCollector(paths, cfg, nil, &fakeTweets{}, nil, nil)
		_, err := collector.CollectUsernames(ctx, []string{"alice"}, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCollectPrices(t *testing.T) {
	paths := newTestPaths(t)
	prices := &fakePrices{bars: []domain.PriceBar{
		{Date: time.Date(2019, 1, 3, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, AdjClose: 1.4, Volume: 10},
		{Date: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, AdjClose: 1.4, Volume: 20},
	}}

	collector := NewCollector(paths, config.Default().Acquisition, prices, nil, nil, nil)
	n, err := collector.CollectPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "AAPL", prices.req.Ticker)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), prices.req.EndDate)

	data, err := os.ReadFile(paths.StockMarketCSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date,High,Low,Open,Close,Volume,Adj Close\n2019-01-02,")
}

func TestLoadSearchParameters(t *testing.T) {
	dir := t.TempDir()
	usernames := filepath.Join(dir, "twitter_usernames.csv")
	terms := filepath.Join(dir, "twitter_search_terms.csv")
	require.NoError(t, os.WriteFile(usernames, []byte("usernames\ntim_cook\n\nAppleSupport\n"), 0644))
	require.NoError(t, os.WriteFile(terms, []byte("terms\n$AAPL\niPhone\nApple\n"), 0644))

	got, err := LoadUsernames(usernames)
	require.NoError(t, err)
	assert.Equal(t, []string{"AppleSupport", "tim_cook"}, got)

	list, err := LoadSearchTerms(terms)
	require.NoError(t, err)
	assert.Equal(t, "$AAPL OR iPhone OR Apple", GenerateSearchString(list))

	_, err = LoadSearchTerms(usernames)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = LoadUsernames(filepath.Join(dir, "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestNewTweetSource(t *testing.T) {
	cfg := config.Default().Acquisition
	assert.IsType(t, &TweetClient{}, NewTweetSource(cfg, nil, nil))

	cfg.TweetAPI = config.TweetAPIv1
	source := NewTweetSource(cfg, nil, nil)
	require.IsType(t, &StandardSearchClient{}, source)
	source.(*StandardSearchClient).Close()
}
