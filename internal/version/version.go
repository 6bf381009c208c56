// Package version reports build information. Values are set at build time:
//
//	go build -ldflags "-X github.com/ramonehamilton/deckkeeper/internal/version.Version=v1.2.3 -X github.com/ramonehamilton/deckkeeper/internal/version.Commit=abc123"
package version

import "runtime"

// Set through ldflags; the defaults mark a local build.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info is the build information served by the health endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
}

// String renders the build as "v1.2.3 (abc123)".
func (i Info) String() string {
	return i.Version + " (" + i.Commit + ")"
}
