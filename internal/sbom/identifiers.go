// Package sbom provides identifier helpers shared by the CycloneDX and SPDX
// report formats.
package sbom

import (
	"fmt"
	"strings"
)

// PackageIdentity is the unique identity of an audited dependency within one report.
type PackageIdentity struct {
	Ecosystem string // "pypi" or "npm"
	Name      string
	Version   string
}

// GenerateBOMRef creates a unique CycloneDX BOM reference for a package.
// Format: {ecosystem}:{name}@{version}
func GenerateBOMRef(p PackageIdentity) string {
	ref := fmt.Sprintf("%s:%s", p.Ecosystem, p.Name)
	if p.Version != "" {
		ref += "@" + p.Version
	}
	return ref
}

// GenerateSPDXID creates a unique SPDX identifier for a package.
// Format: Package-{ecosystem}-{sanitized-name}-{sanitized-version}
// Returns the ID without the "SPDXRef-" prefix (that's added during JSON serialization).
func GenerateSPDXID(p PackageIdentity) string {
	id := fmt.Sprintf("Package-%s-%s", SanitizeSPDXID(p.Ecosystem), SanitizeSPDXID(p.Name))
	if p.Version != "" {
		id += "-" + SanitizeSPDXID(p.Version)
	}
	return id
}

// SanitizeSPDXID converts a string to a valid SPDX identifier component.
// SPDX IDs must match the pattern [a-zA-Z0-9.-]+
// Invalid characters are replaced with hyphens.
// Empty input returns "unknown" to prevent invalid IDs.
func SanitizeSPDXID(s string) string {
	if s == "" {
		return "unknown"
	}

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		if isValidSPDXChar(r) {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}

	return result.String()
}

// isValidSPDXChar returns true if the rune is valid in an SPDX identifier.
func isValidSPDXChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' ||
		r == '-'
}

// SPDXDocumentID is the standard SPDX document identifier.
const SPDXDocumentID = "DOCUMENT"

// NoAssertion is the SPDX value for an unknown field.
const NoAssertion = "NOASSERTION"

// FormatSPDXRef formats an SPDX element ID with the required "SPDXRef-" prefix.
func FormatSPDXRef(elementID string) string {
	return "SPDXRef-" + elementID
}

// VerdictComment builds a structured comment from the audit outcome of a package.
// Only includes fields that have values, avoiding empty placeholders.
func VerdictComment(classification, rule, source, reason string) string {
	var parts []string

	if classification != "" {
		parts = append(parts, fmt.Sprintf("classification=%s", classification))
	}
	if rule != "" {
		parts = append(parts, fmt.Sprintf("rule=%s", rule))
	}
	if source != "" {
		parts = append(parts, fmt.Sprintf("resolution_source=%s", source))
	}
	if reason != "" {
		parts = append(parts, fmt.Sprintf("reason=%s", reason))
	}

	return strings.Join(parts, ", ")
}

// DefaultProjectName returns a fallback project name when none is provided.
const DefaultProjectName = "unknown-project"

// ValidateProjectName ensures a project name is valid for use in SBOMs.
// Returns the trimmed name if valid, or DefaultProjectName if empty.
func ValidateProjectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultProjectName
	}
	return name
}

// DefaultSPDXNamespace is the default domain for SPDX document namespaces.
const DefaultSPDXNamespace = "https://spdx.org/spdxdocs"

// BuildSPDXNamespace constructs a unique SPDX document namespace.
// Format: {baseURL}/{projectName}/{uuid}
func BuildSPDXNamespace(baseURL, projectName, uuid string) string {
	if baseURL == "" {
		baseURL = DefaultSPDXNamespace
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), SanitizeSPDXID(projectName), uuid)
}
