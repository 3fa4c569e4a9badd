// Package acquisition collects the raw inputs of the pipeline: a daily stock
// price series and tweets grouped by username.
//
// Client is a rate-limited HTTP getter that retries 429 and 5xx responses
// with exponential backoff. PriceClient and TweetClient build on it;
// StandardSearchClient is the OAuth1 alternative for the v1.1 search API.
// Collector writes stock_market_data.csv and one {username}.csv per user
// after removing exact and partial duplicate tweets.
package acquisition
