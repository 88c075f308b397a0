package sbom

import (
	"regexp"
	"testing"
)

var spdxIDPattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

func TestGenerateBOMRef(t *testing.T) {
	tests := []struct {
		name     string
		identity PackageIdentity
		expected string
	}{
		{"pypi", PackageIdentity{Ecosystem: "pypi", Name: "requests", Version: "2.31.0"}, "pypi:requests@2.31.0"},
		{"npm scoped", PackageIdentity{Ecosystem: "npm", Name: "@babel/core", Version: "7.24.0"}, "npm:@babel/core@7.24.0"},
		{"no version", PackageIdentity{Ecosystem: "pypi", Name: "local"}, "pypi:local"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateBOMRef(tc.identity); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestGenerateSPDXID(t *testing.T) {
	tests := []struct {
		name     string
		identity PackageIdentity
		expected string
	}{
		{"pypi", PackageIdentity{Ecosystem: "pypi", Name: "requests", Version: "2.31.0"}, "Package-pypi-requests-2.31.0"},
		{"npm scoped", PackageIdentity{Ecosystem: "npm", Name: "@babel/core", Version: "7.24.0"}, "Package-npm--babel-core-7.24.0"},
		{"local version", PackageIdentity{Ecosystem: "pypi", Name: "torch", Version: "2.2.0+cpu"}, "Package-pypi-torch-2.2.0-cpu"},
		{"no version", PackageIdentity{Ecosystem: "pypi", Name: "local"}, "Package-pypi-local"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateSPDXID(tc.identity)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
			if !spdxIDPattern.MatchString(got) {
				t.Errorf("%q is not a valid SPDX id", got)
			}
		})
	}
}

func TestSanitizeSPDXID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with.dots-and-dashes", "with.dots-and-dashes"},
		{"under_score", "under-score"},
		{"slash/name", "slash-name"},
		{"spaces here", "spaces-here"},
		{"ünïcode", "-n-code"},
		{"", "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeSPDXID(tc.input); got != tc.expected {
				t.Errorf("SanitizeSPDXID(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatSPDXRef(t *testing.T) {
	if got := FormatSPDXRef(SPDXDocumentID); got != "SPDXRef-DOCUMENT" {
		t.Errorf("Expected SPDXRef-DOCUMENT, got %q", got)
	}
}

func TestVerdictComment(t *testing.T) {
	tests := []struct {
		name                        string
		class, rule, source, reason string
		expected                    string
	}{
		{"all fields", "denied", "strong-copyleft", "package_metadata", "GPL-3.0", "classification=denied, rule=strong-copyleft, resolution_source=package_metadata, reason=GPL-3.0"},
		{"default applied", "warn", "", "registry_fallback", "", "classification=warn, resolution_source=registry_fallback"},
		{"empty", "", "", "", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := VerdictComment(tc.class, tc.rule, tc.source, tc.reason); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	if got := ValidateProjectName("  my-app "); got != "my-app" {
		t.Errorf("Expected trimmed name, got %q", got)
	}
	if got := ValidateProjectName("   "); got != DefaultProjectName {
		t.Errorf("Expected %q, got %q", DefaultProjectName, got)
	}
}

func TestBuildSPDXNamespace(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		project  string
		expected string
	}{
		{"default base", "", "my-app", "https://spdx.org/spdxdocs/my-app/1234"},
		{"custom base trailing slash", "https://example.com/spdx/", "my-app", "https://example.com/spdx/my-app/1234"},
		{"project sanitized", "", "my app", "https://spdx.org/spdxdocs/my-app/1234"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildSPDXNamespace(tc.baseURL, tc.project, "1234"); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
