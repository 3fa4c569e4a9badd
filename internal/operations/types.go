package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDPrices    = "prices"
	StepIDTweets    = "tweets"
	StepIDAggregate = "aggregate"
	StepIDVerify    = "verify"
	StepIDWrangle   = "wrangle"
)

// Step names
const (
	StepNamePrices    = "Stock Market Data Collection"
	StepNameTweets    = "Tweet Collection"
	StepNameAggregate = "Tweet Aggregation By Date"
	StepNameVerify    = "Aggregation Verification"
	StepNameWrangle   = "Corpus Wrangling"
)

// Context keys for values passed between steps
const (
	ContextKeyTradingDays  = "trading_days"
	ContextKeyTweetSummary = "tweet_summary"
	ContextKeyAggregation  = "aggregation_summary"
	ContextKeyShapeReport  = "shape_report"
	ContextKeyReports      = "corpus_reports"
	ContextKeyCorpusIDs    = "corpus_ids"
)

// Default timeouts
const (
	DefaultStepTimeout      = 30 * time.Minute
	DefaultTweetsTimeout    = 6 * time.Hour
	DefaultWranglingTimeout = time.Hour
)

// OperationRequest selects the steps of one run. No steps means every
// registered step in dependency order.
type OperationRequest struct {
	ID        string   `json:"id,omitempty"`
	Steps     []string `json:"steps,omitempty"`
	CorpusIDs []int    `json:"corpus_ids,omitempty"`
}

// OperationResponse is the outcome of a run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Order    []string              `json:"order"`
	Error    string                `json:"error,omitempty"`
}

// StepType describes a registered step
type StepType struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}
