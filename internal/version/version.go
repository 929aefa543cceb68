// Package version provides build information for the decksampler binary.
// Values are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/mtg-decksampler/internal/version.Version=v1.2.3 -X github.com/ramonehamilton/mtg-decksampler/internal/version.Commit=abc123"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version. It defaults to "dev".
	Version = "dev"

	// Commit is the source revision the binary was built from.
	Commit = ""
)

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns a one-line description for the version subcommand.
func String() string {
	s := "decksampler " + Version
	if Commit != "" {
		s += " (" + Commit + ")"
	}
	return fmt.Sprintf("%s %s/%s %s", s, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
