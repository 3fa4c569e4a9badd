// Package files provides file system operations and discovery utilities
// for the pipeline's data directory.
//
// Discovery lists CSV files and per-date buckets in a stable, name-sorted
// order. Manager clears output directories before a truncating run and
// writes report files atomically.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	buckets, err := discovery.FindDateBucketFiles(paths.TweetsByDateDir)
//
//	manager := files.NewManager(paths, logger)
//	removed, err := manager.ClearCSVFiles(paths.TweetsByDateDir)
package files
