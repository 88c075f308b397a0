// Package purl provides Package URL (PURL) generation utilities.
// PURLs are a standardized way to identify software packages across ecosystems.
// See: https://github.com/package-url/purl-spec
//
// This package is used by the CycloneDX and SPDX report formats.
package purl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/EmundoT/license-auditor/internal/hostdetect"
)

// Type represents the package type in a PURL
type Type string

// PURL type constants for the supported ecosystems and git hosting providers
const (
	TypePyPI      Type = "pypi"      // Python packages
	TypeNPM       Type = "npm"       // npm packages
	TypeGitHub    Type = "github"    // GitHub repositories
	TypeGitLab    Type = "gitlab"    // GitLab repositories (including self-hosted)
	TypeBitbucket Type = "bitbucket" // Bitbucket repositories
	TypeGeneric   Type = "generic"   // Generic/unknown package type
)

// PURL represents a parsed Package URL
type PURL struct {
	Type       Type
	Namespace  string // npm scope, or owner/org for repositories (may include nested groups for GitLab)
	Name       string // package or repository name
	Version    string
	Qualifiers map[string]string
	Subpath    string
}

// String formats the PURL as a standard PURL string.
// Qualifiers are written in sorted key order.
func (p *PURL) String() string {
	if p.Type == "" || p.Name == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("pkg:")
	sb.WriteString(string(p.Type))
	sb.WriteRune('/')

	if p.Namespace != "" {
		// URL-encode namespace (GitLab nested groups with slashes, npm scopes with @)
		sb.WriteString(escape(p.Namespace))
		sb.WriteRune('/')
	}

	sb.WriteString(escape(p.Name))

	if p.Version != "" {
		sb.WriteRune('@')
		sb.WriteString(escape(p.Version))
	}

	if len(p.Qualifiers) > 0 {
		keys := make([]string, 0, len(p.Qualifiers))
		for k := range p.Qualifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteRune('?')
		for i, k := range keys {
			if i > 0 {
				sb.WriteRune('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteRune('=')
			sb.WriteString(url.QueryEscape(p.Qualifiers[k]))
		}
	}

	if p.Subpath != "" {
		sb.WriteRune('#')
		sb.WriteString(p.Subpath)
	}

	return sb.String()
}

// escape percent-encodes a PURL component. "@" is always encoded since it
// separates the version.
func escape(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "@", "%40")
}

// FromPackage creates a PURL for a registry package.
// ecosystem is "pypi" or "npm"; anything else yields a generic PURL.
func FromPackage(ecosystem, name, version string) *PURL {
	switch Type(ecosystem) {
	case TypePyPI:
		// PyPI names are case-insensitive and normalized to lowercase
		return &PURL{Type: TypePyPI, Name: strings.ToLower(name), Version: version}
	case TypeNPM:
		p := &PURL{Type: TypeNPM, Name: name, Version: version}
		if strings.HasPrefix(name, "@") {
			if scope, rest, ok := strings.Cut(name, "/"); ok {
				p.Namespace = scope
				p.Name = rest
			}
		}
		return p
	default:
		return &PURL{Type: TypeGeneric, Name: name, Version: version}
	}
}

// FromGitURL creates a PURL from a git repository URL and version/commit.
// Uses the shared hostdetect package for consistent provider detection.
func FromGitURL(repoURL, version string) *PURL {
	info := hostdetect.FromURL(repoURL)
	if info == nil {
		return nil
	}

	return &PURL{
		Type:      providerToType(info.Provider),
		Namespace: info.Owner,
		Name:      info.Repo,
		Version:   version,
	}
}

// providerToType converts a hostdetect.Provider to a purl.Type.
func providerToType(p hostdetect.Provider) Type {
	switch p {
	case hostdetect.ProviderGitHub:
		return TypeGitHub
	case hostdetect.ProviderGitLab:
		return TypeGitLab
	case hostdetect.ProviderBitbucket:
		return TypeBitbucket
	default:
		return TypeGeneric
	}
}
