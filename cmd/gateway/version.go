// In file: cmd/gateway/version.go
package main

import (
	"fmt"
	"runtime"

	"github.com/dileep-u-k/agent-gateway/internal/version"
)

// Set at build time with -ldflags "-X main.buildVersion=...".
var (
	buildVersion = "dev"
	buildDate    = "unknown"
	gitCommit    = "unknown"
)

type BuildInfo struct {
	Version    string `json:"version"`
	BuildDate  string `json:"build_date"`
	GitCommit  string `json:"git_commit"`
	Components string `json:"components"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:    buildVersion,
		BuildDate:  buildDate,
		GitCommit:  gitCommit,
		Components: version.String(),
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
