package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a YAML config into a temp dir and returns its path
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults from an empty file",
			file: "{}\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "AAPL", cfg.Acquisition.Ticker)
				assert.Equal(t, "2019-01-01", cfg.Acquisition.StartDate)
				assert.Equal(t, "2020-12-31", cfg.Acquisition.EndDate)
				assert.Equal(t, AggregationTruncate, cfg.Aggregation.Mode)
				assert.Equal(t, DefaultChunkSize, cfg.Wrangling.ChunkSize)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Minute, cfg.Server.WriteTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Len(t, cfg.Corpora, 6)
			},
		},
		{
			name: "yaml overrides keep unrelated defaults",
			file: `
acquisition:
  ticker: MSFT
aggregation:
  mode: append
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "MSFT", cfg.Acquisition.Ticker)
				assert.Equal(t, AggregationAppend, cfg.Aggregation.Mode)
				assert.Equal(t, DefaultPriceURL, cfg.Acquisition.PriceURL)
			},
		},
		{
			name: "environment wins over file",
			file: "acquisition:\n  ticker: MSFT\n",
			env: map[string]string{
				"SENT_ACQUISITION_TICKER": "TSLA",
				"SENT_SERVER_PORT":        "9090",
				"SENT_LOGGING_LEVEL":      "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "TSLA", cfg.Acquisition.Ticker)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "custom corpora replace the defaults",
			file: `
corpora:
  - id: 1
    name: sample
    file: sample.csv
    text_column: text
    sentiment_column: label
    shape: labeled
    vocabulary: word-label
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Corpora, 1)
				assert.Equal(t, "label", cfg.Corpora[0].SentimentColumn)
			},
		},
		{
			name:    "invalid aggregation mode",
			file:    "aggregation:\n  mode: merge\n",
			wantErr: true,
		},
		{
			name:    "end date before start date",
			file:    "acquisition:\n  start_date: \"2020-01-01\"\n  end_date: \"2019-01-01\"\n",
			wantErr: true,
		},
		{
			name:    "malformed date",
			file:    "acquisition:\n  start_date: 01/01/2020\n",
			wantErr: true,
		},
		{
			name:    "invalid port from env",
			file:    "{}\n",
			env:     map[string]string{"SENT_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "acquisition: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(writeConfigFile(t, tt.file))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Corpora = DefaultCorpora()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("duplicate corpus ids", func(t *testing.T) {
		cfg := Default()
		cfg.Corpora = DefaultCorpora()
		cfg.Corpora[1].ID = 1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate corpus id 1")
	})

	t.Run("labeled corpus needs a text column", func(t *testing.T) {
		cfg := Default()
		cfg.Corpora = DefaultCorpora()
		cfg.Corpora[0].TextColumn = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("wide corpus needs no columns", func(t *testing.T) {
		cfg := Default()
		cfg.Corpora = []CorpusSource{DefaultCorpora()[4]}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown vocabulary", func(t *testing.T) {
		cfg := Default()
		cfg.Corpora = DefaultCorpora()
		cfg.Corpora[3].Vocabulary = "emoji"
		assert.Error(t, cfg.Validate())
	})

	t.Run("v1 tweet api needs oauth credentials", func(t *testing.T) {
		cfg := Default()
		cfg.Acquisition.TweetAPI = TweetAPIv1
		assert.Error(t, cfg.Validate())

		cfg.Acquisition.ConsumerKey = "ck"
		cfg.Acquisition.ConsumerSecret = "cs"
		cfg.Acquisition.AccessToken = "at"
		cfg.Acquisition.AccessTokenSecret = "ats"
		assert.NoError(t, cfg.Validate())
	})
}

func TestDateRange(t *testing.T) {
	cfg := Default()
	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), end)

	cfg.Acquisition.EndDate = "not-a-date"
	_, _, err = cfg.DateRange()
	assert.Error(t, err)
}

func TestCorpus(t *testing.T) {
	cfg := Default()
	cfg.Corpora = DefaultCorpora()

	src, ok := cfg.Corpus(5)
	require.True(t, ok)
	assert.Equal(t, ShapeWide, src.Shape)
	assert.Equal(t, VocabularyBinaryCode, src.Vocabulary)

	_, ok = cfg.Corpus(42)
	assert.False(t, ok)
}

func TestDefaultCorpora(t *testing.T) {
	corpora := DefaultCorpora()
	require.Len(t, corpora, 6)

	for i, src := range corpora {
		assert.Equal(t, i+1, src.ID, "corpora are numbered in order")
	}

	assert.Equal(t, "not_relevant", corpora[0].Sentinel)
	assert.True(t, corpora[1].NoHeader)
	assert.Equal(t, []string{"sentiment", "text"}, corpora[1].RenameColumns)
	assert.Equal(t, ';', corpora[2].DelimiterRune())
	assert.Equal(t, ',', corpora[3].DelimiterRune())
	assert.Equal(t, ShapeChunked, corpora[5].Shape)
	assert.Equal(t, "headline", corpora[5].TextColumn)
}
