// Package config provides centralized configuration management for the
// stock sentiment pipeline. It loads settings from multiple sources,
// validates them, and exposes the resolved data layout through Paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SENT_<SECTION>_<FIELD>:
//
//	SENT_ACQUISITION_TICKER=AAPL
//	SENT_ACQUISITION_BEARER_TOKEN=...
//	SENT_AGGREGATION_MODE=truncate
//	SENT_LOGGING_LEVEL=debug
//	SENT_SERVER_PORT=8080
//
// # Corpora
//
// The labeled datasets wrangled into canonical corpora are described by
// CorpusSource values. DefaultCorpora returns the six built-in descriptors;
// a config file may replace them with a "corpora" list.
//
// # Path Management
//
// Every directory of the data layout is derived from DataDir:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	if err != nil {
//	    return err
//	}
//	bucket := paths.GetDateBucketPath("2020-01-02")
package config
