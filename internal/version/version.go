// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Provide build-time version information (Git commit, state) to the CLI and dashboard.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version can be set at build time with
// -ldflags "-X github.com/tvwb/tradingview-webhooks-bot/internal/version.Version=v1.0.0".
// When empty, the VCS revision from build info is used instead.
var Version string

// GetVersion returns the release version when set, otherwise the VCS
// revision derived from build info, optionally appended with "(dirty)"
// if the tree was modified. Falls back to "dev".
func GetVersion() string {
	if Version != "" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			// Shorten revision to 7 chars if possible
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			if setting.Value == "true" {
				modified = true
			}
		}
	}

	if revision == "" {
		return "dev"
	}

	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
