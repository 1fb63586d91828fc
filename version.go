package loom

// Release identity. Version can be overridden for releases:
//
//	go build -ldflags "-X github.com/ZaguanLabs/loom.Version=1.0.0"
const (
	Name        = "loom"
	Description = "Round-trip HTML translation engine: decompose, translate, recompose"
	Version     = "0.1.0"
	Repository  = "https://github.com/ZaguanLabs/loom"
	License     = "MIT"
)

// Build metadata, set via ldflags by the release pipeline.
var (
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// FullVersion returns the version, suffixed with the short commit hash
// when one was stamped in.
func FullVersion() string {
	commit := GitCommit
	if commit == "unknown" || commit == "" {
		return Version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Version + "+" + commit
}

// UserAgent identifies this library in outbound HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
