package config

import "time"

// Application constants
const (
	AppName    = "stocksentiment"
	AppVersion = "1.0.0"

	// DateLayout is the calendar date layout used by configuration and date buckets
	DateLayout = "2006-01-02"

	// Acquisition defaults
	DefaultTicker      = "AAPL"
	DefaultStartDate   = "2019-01-01"
	DefaultEndDate     = "2020-12-31"
	DefaultPriceURL    = "https://query1.finance.yahoo.com/v7/finance/download"
	DefaultTweetURL    = "https://api.twitter.com/2/tweets/search/all"
	DefaultHTTPTimeout = 30 * time.Second

	// File Paths (relative to the base directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Data layout below the data directory
	StockMarketSubdir       = "raw_data/stock_market_data"
	SearchParamsSubdir      = "twint_search_parameters"
	TweetsByUsernameSubdir  = "raw_data/unlabeled_tweets/unlabeled_tweets_by_usernames"
	TweetsByDateSubdir      = "raw_data/unlabeled_tweets/unlabeled_tweets_by_dates"
	LabeledTweetsSubdir     = "raw_data/labeled_tweets"
	CorporaSubdir           = "corpora"
	StockMarketFileName     = "stock_market_data.csv"
	UsernamesFileName       = "twitter_usernames.csv"
	SearchTermsFileName     = "twitter_search_terms.csv"
	SummaryWorkbookFileName = "summary.xlsx"

	// Wrangling
	DefaultChunkSize = 1000
	CSVExt           = ".csv"
	SnapshotExt      = ".gob"
	ReportExt        = ".json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
