package operations

import (
	"log/slog"

	"stocksentiment/internal/acquisition"
	"stocksentiment/internal/aggregation"
	"stocksentiment/internal/config"
	"stocksentiment/internal/dataprocessing"
	"stocksentiment/internal/infrastructure"
)

// Dependencies carries what the pipeline steps are built from
type Dependencies struct {
	Config  *config.Config
	Paths   *config.Paths
	Metrics *infrastructure.PipelineMetrics
	Logger  *slog.Logger

	// Optional source overrides; nil selects the configured HTTP clients
	Prices acquisition.PriceFetcher
	Tweets acquisition.TweetSource
}

// NewPipelineRegistry registers the prices, tweets, aggregate, verify and
// wrangle steps in that order
func NewPipelineRegistry(deps Dependencies) (*Registry, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	acq := deps.Config.Acquisition

	prices := deps.Prices
	if prices == nil {
		prices = acquisition.NewPriceClient(acq,
			acquisition.WithMetrics(deps.Metrics),
			acquisition.WithLogger(logger))
	}
	tweets := deps.Tweets
	if tweets == nil {
		tweets = acquisition.NewTweetSource(acq, deps.Metrics, logger)
	}

	collector := acquisition.NewCollector(deps.Paths, acq, prices, tweets, deps.Metrics, logger)
	aggregator := aggregation.NewAggregator(deps.Paths, deps.Config.Aggregation, deps.Metrics, logger)
	wrangler := dataprocessing.NewWrangler(deps.Paths, deps.Config.Wrangling, deps.Metrics, logger)

	registry := NewRegistry()
	steps := []Step{
		NewPricesStage(collector, logger),
		NewTweetsStage(collector, []string{deps.Paths.UsernamesCSV, deps.Paths.SearchTermsCSV}, logger),
		NewAggregateStage(aggregator, logger),
		NewVerifyStage(deps.Paths.TweetsByUsernameDir, deps.Paths.TweetsByDateDir, logger),
		NewWrangleStage(wrangler, deps.Config.Corpora, deps.Paths.LabeledTweetsDir, logger),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
