package contracts

import (
	"fmt"
	"runtime"
)

// Version is the application version.
const Version = "0.3.0"

// DataFormatVersion identifies the report data format written by the
// exporters. Bump it when column layouts change.
const DataFormatVersion = "v1"

// Injected at build time through -ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build identity served by the health endpoint and
// printed by the CLIs.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
}

// GetVersionInfo collects the build identity of the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
	}
}

// GetVersionString returns the short human-readable version line.
func GetVersionString() string {
	return "CTR Watch v" + Version
}

// GetFullVersionString returns the version line with build metadata.
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), info.BuildTime, info.GitCommit,
		info.GoVersion, info.OS, info.Architecture)
}
