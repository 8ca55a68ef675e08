// Package version holds the server version.
package version

import "fmt"

// Version is the service version, reported by the `version` subcommand and
// attached to outbound diagnostics.
var Version = "1.1.0"

// DevVersion is the version suffix used in dev mode.
var DevVersion = fmt.Sprintf("%s-dev", Version)

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}
