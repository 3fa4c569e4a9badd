package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "SENT"

// Config represents the complete application configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Acquisition AcquisitionConfig `yaml:"acquisition" envconfig:"ACQUISITION"`
	Aggregation AggregationConfig `yaml:"aggregation" envconfig:"AGGREGATION"`
	Wrangling   WranglingConfig   `yaml:"wrangling" envconfig:"WRANGLING"`
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Corpora     []CorpusSource    `yaml:"corpora" ignored:"true" validate:"dive"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// AcquisitionConfig drives price and tweet collection
type AcquisitionConfig struct {
	Ticker            string        `yaml:"ticker" envconfig:"TICKER" validate:"required"`
	StartDate         string        `yaml:"start_date" envconfig:"START_DATE" validate:"required,datetime=2006-01-02"`
	EndDate           string        `yaml:"end_date" envconfig:"END_DATE" validate:"required,datetime=2006-01-02"`
	PriceURL          string        `yaml:"price_url" envconfig:"PRICE_URL" validate:"required,url"`
	TweetURL          string        `yaml:"tweet_url" envconfig:"TWEET_URL" validate:"required,url"`
	TweetAPI          string        `yaml:"tweet_api" envconfig:"TWEET_API" validate:"oneof=v2 v1"`
	BearerToken       string        `yaml:"bearer_token" envconfig:"BEARER_TOKEN"`
	ConsumerKey       string        `yaml:"consumer_key" envconfig:"CONSUMER_KEY" validate:"required_if=TweetAPI v1"`
	ConsumerSecret    string        `yaml:"consumer_secret" envconfig:"CONSUMER_SECRET" validate:"required_if=TweetAPI v1"`
	AccessToken       string        `yaml:"access_token" envconfig:"ACCESS_TOKEN" validate:"required_if=TweetAPI v1"`
	AccessTokenSecret string        `yaml:"access_token_secret" envconfig:"ACCESS_TOKEN_SECRET" validate:"required_if=TweetAPI v1"`
	Language          string        `yaml:"language" envconfig:"LANGUAGE" validate:"required"`
	MaxResults        int           `yaml:"max_results" envconfig:"MAX_RESULTS" validate:"min=10,max=500"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	MaxRetries        int           `yaml:"max_retries" envconfig:"MAX_RETRIES" validate:"min=0"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF"`
}

// Tweet search APIs
const (
	// TweetAPIv2 is the bearer-token recent/full-archive search endpoint
	TweetAPIv2 = "v2"
	// TweetAPIv1 is the OAuth1 standard search endpoint
	TweetAPIv1 = "v1"
)

// Aggregation modes for per-date tweet files
const (
	// AggregationTruncate removes existing per-date files before a run
	AggregationTruncate = "truncate"
	// AggregationAppend appends to existing per-date files; reruns duplicate rows
	AggregationAppend = "append"
)

// AggregationConfig controls the by-date re-aggregation step
type AggregationConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE" validate:"oneof=truncate append"`
}

// WranglingConfig controls corpus wrangling
type WranglingConfig struct {
	ChunkSize       int  `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"min=1"`
	SummaryWorkbook bool `yaml:"summary_workbook" envconfig:"SUMMARY_WORKBOOK"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// OperationRPS throttles POST /api/operations; 0 disables the limit
	OperationRPS   float64 `yaml:"operation_rps" envconfig:"OPERATION_RPS" validate:"min=0"`
	OperationBurst int     `yaml:"operation_burst" envconfig:"OPERATION_BURST" validate:"min=0"`
}

// TelemetryConfig toggles OpenTelemetry metrics and tracing
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
}

// Load builds the configuration from defaults, an optional YAML file and
// SENT_* environment variables, in increasing order of precedence.
// An empty filePath falls back to the well-known config locations.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if len(cfg.Corpora) == 0 {
		cfg.Corpora = DefaultCorpora()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	start, _ := time.Parse(DateLayout, c.Acquisition.StartDate)
	end, _ := time.Parse(DateLayout, c.Acquisition.EndDate)
	if !end.After(start) {
		return fmt.Errorf("acquisition end date %s must be after start date %s",
			c.Acquisition.EndDate, c.Acquisition.StartDate)
	}

	seen := make(map[int]bool, len(c.Corpora))
	for _, src := range c.Corpora {
		if seen[src.ID] {
			return fmt.Errorf("duplicate corpus id %d", src.ID)
		}
		seen[src.ID] = true
	}

	return nil
}

// DateRange returns the parsed acquisition start and end dates
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.Acquisition.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(DateLayout, c.Acquisition.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	return start, end, nil
}

// Corpus returns the configured source with the given id
func (c *Config) Corpus(id int) (CorpusSource, bool) {
	for _, src := range c.Corpora {
		if src.ID == id {
			return src, true
		}
	}
	return CorpusSource{}, false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Acquisition: AcquisitionConfig{
			Ticker:            DefaultTicker,
			StartDate:         DefaultStartDate,
			EndDate:           DefaultEndDate,
			PriceURL:          DefaultPriceURL,
			TweetURL:          DefaultTweetURL,
			TweetAPI:          TweetAPIv2,
			Language:          "en",
			MaxResults:        100,
			RequestsPerSecond: 1,
			Burst:             1,
			Timeout:           DefaultHTTPTimeout,
			MaxRetries:        3,
			RetryBackoff:      time.Second,
		},
		Aggregation: AggregationConfig{
			Mode: AggregationTruncate,
		},
		Wrangling: WranglingConfig{
			ChunkSize:       DefaultChunkSize,
			SummaryWorkbook: true,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			OperationRPS:    1,
			OperationBurst:  3,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
		},
	}
}
