// Package version holds build-time metadata injected via ldflags.
package version

import "runtime"

// These variables are set at build time using -ldflags:
//
//	-X 'github.com/janekbaraniewski/cursorbar/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/cursorbar/internal/version.CommitHash=...'
//	-X 'github.com/janekbaraniewski/cursorbar/internal/version.BuildDate=...'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	Platform  string `json:"platform" yaml:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildDate: BuildDate,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a formatted version string.
func String() string {
	return Version + " (" + CommitHash + ") built " + BuildDate
}
