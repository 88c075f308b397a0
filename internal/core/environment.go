package core

import (
	"fmt"
	"sort"
)

// platform is one supported OS/architecture pair and its release binary name
type platform struct {
	os, arch string
	binary   string
}

// supportedPlatforms is the release matrix. Windows ships amd64 only.
var supportedPlatforms = []platform{
	{"linux", "amd64", "linux-x86_64"},
	{"linux", "arm64", "linux-aarch64"},
	{"darwin", "amd64", "macos-x86_64"},
	{"darwin", "arm64", "macos-aarch64"},
	{"windows", "amd64", "windows-x86_64.exe"},
}

func findPlatform(goos, goarch string) (platform, bool) {
	for _, p := range supportedPlatforms {
		if p.os == goos && p.arch == goarch {
			return p, true
		}
	}
	return platform{}, false
}

// CheckEnvironment verifies that goos/goarch (usually runtime.GOOS and
// runtime.GOARCH) is a supported platform.
func CheckEnvironment(goos, goarch string) error {
	if _, ok := findPlatform(goos, goarch); !ok {
		return &UnsupportedEnvironmentError{OS: goos, Arch: goarch}
	}
	return nil
}

// SupportedPlatforms returns the supported "os/arch" pairs, sorted.
func SupportedPlatforms() []string {
	out := make([]string, 0, len(supportedPlatforms))
	for _, p := range supportedPlatforms {
		out = append(out, p.os+"/"+p.arch)
	}
	sort.Strings(out)
	return out
}

// PlatformBinaryName returns the release binary name for goos/goarch,
// e.g. "license-auditor-linux-x86_64".
func PlatformBinaryName(goos, goarch string) (string, error) {
	p, ok := findPlatform(goos, goarch)
	if !ok {
		return "", &UnsupportedEnvironmentError{OS: goos, Arch: goarch}
	}
	return fmt.Sprintf("%s-%s", ToolName, p.binary), nil
}
