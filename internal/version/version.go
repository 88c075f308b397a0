// Package version holds the build identity of the license-auditor binary.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Name is the program name used in version output and User-Agent headers.
const Name = "license-auditor"

// Build information, set by main from ldflags during release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the version string, "dev" for development builds.
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// IsRelease reports whether the binary was built from a semver release tag.
func IsRelease() bool {
	_, err := semver.NewVersion(GetVersion())
	return err == nil
}

// GetFullVersion returns version with build information
// Format: "v0.3.0 (commit: abc123, built: 2026-01-27T10:30:00Z, linux/amd64)"
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)", GetVersion(), Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every registry and forge API request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+https://github.com/EmundoT/license-auditor)", Name, GetVersion())
}

// Info is the machine-readable form of the version command.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information of the running binary.
func GetInfo() Info {
	return Info{
		Version:   GetVersion(),
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
