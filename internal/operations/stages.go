package operations

import (
	"context"
	"fmt"
	"log/slog"

	"stocksentiment/internal/acquisition"
	"stocksentiment/internal/aggregation"
	"stocksentiment/internal/config"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/validation"
	"stocksentiment/pkg/contracts/domain"
)

// PriceCollector writes the stock market data file
type PriceCollector interface {
	CollectPrices(ctx context.Context) (int, error)
}

// TweetCollector writes one tweet file per username
type TweetCollector interface {
	CollectTweets(ctx context.Context) (*acquisition.TweetSummary, error)
}

// DateAggregator regroups tweet files by calendar day
type DateAggregator interface {
	AggregateByDate(ctx context.Context) (*aggregation.Summary, error)
}

// CorpusRunner wrangles corpora
type CorpusRunner interface {
	RunAll(ctx context.Context, sources []config.CorpusSource) ([]domain.CorpusReport, error)
}

// PricesStage downloads the daily price series
type PricesStage struct {
	BaseStage
	collector PriceCollector
	logger    *slog.Logger
}

// NewPricesStage creates the prices step
func NewPricesStage(collector PriceCollector, logger *slog.Logger) *PricesStage {
	return &PricesStage{
		BaseStage: NewBaseStage(StepIDPrices, StepNamePrices, nil),
		collector: collector,
		logger:    stepLogger(logger, StepIDPrices),
	}
}

// Execute writes stock_market_data.csv
func (s *PricesStage) Execute(ctx context.Context, state *OperationState) error {
	days, err := s.collector.CollectPrices(ctx)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTradingDays, days)
	state.GetStage(s.ID()).SetMetadata("trading_days", days)
	s.logger.InfoContext(ctx, "Stock market data collected", slog.Int("trading_days", days))
	return nil
}

// TweetsStage collects tweets per username
type TweetsStage struct {
	BaseStage
	collector TweetCollector
	inputs    []string
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewTweetsStage creates the tweets step. inputs are the usernames and
// search terms files.
func NewTweetsStage(collector TweetCollector, inputs []string, logger *slog.Logger) *TweetsStage {
	logger = stepLogger(logger, StepIDTweets)
	return &TweetsStage{
		BaseStage: NewBaseStage(StepIDTweets, StepNameTweets, nil),
		collector: collector,
		inputs:    inputs,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Validate requires every input file to be present and non-empty
func (s *TweetsStage) Validate(state *OperationState) error {
	return s.validator.ValidateFiles(s.inputs...)
}

// Execute writes one {username}.csv per user with results
func (s *TweetsStage) Execute(ctx context.Context, state *OperationState) error {
	summary, err := s.collector.CollectTweets(ctx)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTweetSummary, summary)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("usernames", summary.Usernames)
	stepState.SetMetadata("files_written", summary.FilesWritten)
	stepState.SetMetadata("tweets_written", summary.Written)
	s.logger.InfoContext(ctx, "Tweets collected",
		slog.Int("usernames", summary.Usernames),
		slog.Int("files_written", summary.FilesWritten),
		slog.Int("tweets_written", summary.Written))
	return nil
}

// AggregateStage regroups per-username tweet files by date
type AggregateStage struct {
	BaseStage
	aggregator DateAggregator
	logger     *slog.Logger
}

// NewAggregateStage creates the aggregate step
func NewAggregateStage(aggregator DateAggregator, logger *slog.Logger) *AggregateStage {
	return &AggregateStage{
		BaseStage:  NewBaseStage(StepIDAggregate, StepNameAggregate, []string{StepIDTweets}),
		aggregator: aggregator,
		logger:     stepLogger(logger, StepIDAggregate),
	}
}

// Execute writes {YYYY-MM-DD}.csv files
func (s *AggregateStage) Execute(ctx context.Context, state *OperationState) error {
	summary, err := s.aggregator.AggregateByDate(ctx)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyAggregation, summary)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("files_processed", summary.FilesProcessed)
	stepState.SetMetadata("rows_written", summary.RowsWritten)
	stepState.SetMetadata("days", len(summary.RowsByDay))
	return nil
}

// VerifyStage checks that aggregation kept every row and cell
type VerifyStage struct {
	BaseStage
	usernameDir string
	dateDir     string
	validator   *validation.FileValidator
	logger      *slog.Logger
}

// NewVerifyStage creates the verify step over the two tweet directories
func NewVerifyStage(usernameDir, dateDir string, logger *slog.Logger) *VerifyStage {
	logger = stepLogger(logger, StepIDVerify)
	return &VerifyStage{
		BaseStage:   NewBaseStage(StepIDVerify, StepNameVerify, []string{StepIDAggregate}),
		usernameDir: usernameDir,
		dateDir:     dateDir,
		validator:   validation.NewFileValidator(logger),
		logger:      logger,
	}
}

// Validate requires both tweet directories
func (s *VerifyStage) Validate(state *OperationState) error {
	if err := s.validator.ValidateInputDirectory(s.usernameDir); err != nil {
		return err
	}
	return s.validator.ValidateInputDirectory(s.dateDir)
}

// Execute fails when the two directories differ in shape
func (s *VerifyStage) Execute(ctx context.Context, state *OperationState) error {
	report, err := aggregation.Verify(s.usernameDir, s.dateDir, s.logger)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyShapeReport, report)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("by_usernames", report.ByUsername.String())
	stepState.SetMetadata("by_dates", report.ByDate.String())
	return report.Check()
}

// WrangleStage builds the canonical corpora
type WrangleStage struct {
	BaseStage
	runner    CorpusRunner
	corpora   []config.CorpusSource
	sourceDir string
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewWrangleStage creates the wrangle step over corpora whose raw files
// live in sourceDir
func NewWrangleStage(runner CorpusRunner, corpora []config.CorpusSource, sourceDir string, logger *slog.Logger) *WrangleStage {
	logger = stepLogger(logger, StepIDWrangle)
	return &WrangleStage{
		BaseStage: NewBaseStage(StepIDWrangle, StepNameWrangle, nil),
		runner:    runner,
		corpora:   corpora,
		sourceDir: sourceDir,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Validate rejects unknown corpora and missing or mistyped raw files
func (s *WrangleStage) Validate(state *OperationState) error {
	sources, err := s.selected(state)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if err := s.validator.ValidateCorpusSource(s.sourceDir, src); err != nil {
			return err
		}
	}
	return nil
}

// Execute wrangles the selected corpora, or all of them
func (s *WrangleStage) Execute(ctx context.Context, state *OperationState) error {
	sources, err := s.selected(state)
	if err != nil {
		return err
	}

	reports, err := s.runner.RunAll(ctx, sources)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyReports, reports)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("corpora", len(reports))
	for _, r := range reports {
		stepState.SetMetadata(fmt.Sprintf("corpus%d_records", r.ID), r.Total)
	}
	return nil
}

func (s *WrangleStage) selected(state *OperationState) ([]config.CorpusSource, error) {
	v, ok := state.GetContext(ContextKeyCorpusIDs)
	if !ok {
		return s.corpora, nil
	}
	ids, ok := v.([]int)
	if !ok || len(ids) == 0 {
		return s.corpora, nil
	}

	sources := make([]config.CorpusSource, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, src := range s.corpora {
			if src.ID == id {
				sources = append(sources, src)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown corpus %d", id)
		}
	}
	return sources, nil
}

func stepLogger(logger *slog.Logger, stepID string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return infrastructure.WithStep(logger, stepID)
}
