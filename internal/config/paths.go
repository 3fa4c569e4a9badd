package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for every file path a pipeline stage touches.
type Paths struct {
	BaseDir string
	DataDir string
	LogsDir string

	StockMarketDir      string
	SearchParamsDir     string
	TweetsByUsernameDir string
	TweetsByDateDir     string
	LabeledTweetsDir    string
	CorporaDir          string

	// Well-known files
	StockMarketCSV  string
	UsernamesCSV    string
	SearchTermsCSV  string
	SummaryWorkbook string
}

// NewPaths derives every application path from the paths configuration.
// Relative directories are resolved against BaseDir, or the working directory when it is empty.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	dataDir := resolve(base, cfg.DataDir)
	logsDir := resolve(base, cfg.LogsDir)

	stockDir := filepath.Join(dataDir, filepath.FromSlash(StockMarketSubdir))
	searchDir := filepath.Join(dataDir, filepath.FromSlash(SearchParamsSubdir))
	corporaDir := filepath.Join(dataDir, filepath.FromSlash(CorporaSubdir))

	return &Paths{
		BaseDir: base,
		DataDir: dataDir,
		LogsDir: logsDir,

		StockMarketDir:      stockDir,
		SearchParamsDir:     searchDir,
		TweetsByUsernameDir: filepath.Join(dataDir, filepath.FromSlash(TweetsByUsernameSubdir)),
		TweetsByDateDir:     filepath.Join(dataDir, filepath.FromSlash(TweetsByDateSubdir)),
		LabeledTweetsDir:    filepath.Join(dataDir, filepath.FromSlash(LabeledTweetsSubdir)),
		CorporaDir:          corporaDir,

		StockMarketCSV:  filepath.Join(stockDir, StockMarketFileName),
		UsernamesCSV:    filepath.Join(searchDir, UsernamesFileName),
		SearchTermsCSV:  filepath.Join(searchDir, SearchTermsFileName),
		SummaryWorkbook: filepath.Join(corporaDir, SummaryWorkbookFileName),
	}, nil
}

func resolve(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates all output directories if they don't exist.
// Input directories (search parameters, labeled tweets) are created too so a
// fresh checkout has the expected layout.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.LogsDir,
		p.StockMarketDir,
		p.SearchParamsDir,
		p.TweetsByUsernameDir,
		p.TweetsByDateDir,
		p.LabeledTweetsDir,
		p.CorporaDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetUsernameCSVPath returns the per-username tweet file path
func (p *Paths) GetUsernameCSVPath(username string) string {
	return filepath.Join(p.TweetsByUsernameDir, username+CSVExt)
}

// GetDateBucketPath returns the per-date tweet file path for a YYYY-MM-DD day
func (p *Paths) GetDateBucketPath(day string) string {
	return filepath.Join(p.TweetsByDateDir, day+CSVExt)
}

// GetLabeledPath returns the path of a raw labeled dataset
func (p *Paths) GetLabeledPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LabeledTweetsDir, filename)
}

// GetCorpusPath returns the path of corpus n with the given extension
func (p *Paths) GetCorpusPath(n int, ext string) string {
	return filepath.Join(p.CorporaDir, fmt.Sprintf("corpus%d%s", n, ext))
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("stock_market_dir", p.StockMarketDir),
		slog.String("tweets_by_username_dir", p.TweetsByUsernameDir),
		slog.String("tweets_by_date_dir", p.TweetsByDateDir),
		slog.String("labeled_tweets_dir", p.LabeledTweetsDir),
		slog.String("corpora_dir", p.CorporaDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
