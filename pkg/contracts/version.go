package contracts

import (
	"fmt"
	"runtime"
)

// Version of the pipeline binaries
const Version = "1.0.0"

// Data layout versions. SnapshotFormat names the binary corpus encoding
// written next to every corpus{N}.csv.
const (
	DataFormatVersion = "v1"
	SnapshotFormat    = "gob"
	APIVersion        = "v1"
)

// Set with -ldflags "-X stocksentiment/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by GET /api/version
type VersionInfo struct {
	Version        string `json:"version"`
	APIVersion     string `json:"api_version"`
	DataFormat     string `json:"data_format"`
	SnapshotFormat string `json:"snapshot_format"`
	BuildTime      string `json:"build_time"`
	GitCommit      string `json:"git_commit"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:        Version,
		APIVersion:     APIVersion,
		DataFormat:     DataFormatVersion,
		SnapshotFormat: SnapshotFormat,
		BuildTime:      BuildTime,
		GitCommit:      GitCommit,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetVersionString returns "stocksentiment vX.Y.Z"
func GetVersionString() string {
	return "stocksentiment v" + Version
}

// GetFullVersionString is printed by the -version flag of every binary
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (commit %s, built %s, %s, %s, data %s/%s)",
		GetVersionString(), info.GitCommit, info.BuildTime, info.GoVersion, info.Platform,
		info.DataFormat, info.SnapshotFormat)
}
