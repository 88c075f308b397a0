// Package hostdetect identifies the git hosting provider behind a dependency's
// source locator. The resolver uses it to pick a hosting license API and the
// SBOM formats use it to build repository PURLs.
//
// Detection supports well-known hosts (github.com, gitlab.com, bitbucket.org)
// and self-hosted/enterprise instances (e.g., gitlab.internal.corp, github.enterprise.com).
package hostdetect

import (
	"net/url"
	"regexp"
	"strings"
)

// Provider represents a git hosting provider type.
type Provider string

// Provider constants for common git hosting services.
const (
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
	ProviderUnknown   Provider = "unknown"
)

// Info contains information extracted from a repository URL.
type Info struct {
	Provider Provider
	// Host is the hostname, including any port (e.g., "gitlab.internal.corp:8443").
	Host string
	// Owner is the repository owner/organization (may include nested groups for GitLab).
	Owner string
	Repo  string
}

// FromURL extracts provider information from an http(s) repository URL.
// Returns nil if the URL is empty, invalid, or doesn't have enough path components.
func FromURL(repoURL string) *Info {
	if repoURL == "" {
		return nil
	}

	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return nil
	}

	host := strings.ToLower(u.Host)
	provider := DetectProvider(host)

	var owner, repo string
	if len(parts) > 2 && provider == ProviderGitLab {
		// GitLab nested groups: group/subgroup/repo
		owner = strings.Join(parts[:len(parts)-1], "/")
		repo = parts[len(parts)-1]
	} else {
		owner = parts[0]
		repo = parts[1]
	}
	repo = strings.TrimSuffix(repo, ".git")

	return &Info{
		Provider: provider,
		Host:     host,
		Owner:    owner,
		Repo:     repo,
	}
}

// FromSource extracts provider information from a lockfile source locator
// such as "git+https://github.com/o/r?rev=v1#abc" or "git@gitlab.com:g/r.git".
func FromSource(source string) *Info {
	return FromURL(NormalizeRepoURL(source))
}

// NormalizeRepoURL converts a lockfile source locator into an https repository URL.
// Returns "" for registry, path and other non-repository locators.
//
// Examples:
//   - git+https://github.com/owner/repo?rev=v1#abc → https://github.com/owner/repo
//   - git+ssh://git@github.com/owner/repo.git#abc → https://github.com/owner/repo.git
//   - git@gitlab.com:group/repo.git → https://gitlab.com/group/repo.git
//   - https://github.com/babel/babel/tree/main/packages/core → https://github.com/babel/babel
func NormalizeRepoURL(source string) string {
	s := strings.TrimLeft(strings.TrimSpace(source), "\\")
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "git+")

	// SCP-style SSH URLs (git@host:owner/repo)
	if !strings.Contains(s, "://") {
		at := strings.Index(s, "@")
		colon := strings.Index(s, ":")
		if at < 0 || colon < at {
			return ""
		}
		s = "https://" + s[at+1:colon] + "/" + s[colon+1:]
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https", "http":
	case "ssh", "git":
		u.Scheme = "https"
		// SSH and git-daemon ports never serve the web API.
		u.Host = u.Hostname()
	default:
		return ""
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = trimBrowsePath(u.Path)
	return u.String()
}

// browsePathRe matches the web UI suffix of a deep link into a repository:
// GitLab "/-/tree/<ref>/...", GitHub "/tree/<ref>/..." and Bitbucket "/src/<ref>/...".
var browsePathRe = regexp.MustCompile(`^(/[^/]+/.+?)/(?:-/)?(?:blob|tree|src)/[^/]+(?:/.*)?$`)

// trimBrowsePath reduces a monorepo deep link such as
// /babel/babel/tree/main/packages/babel-core to the repository path.
func trimBrowsePath(path string) string {
	if m := browsePathRe.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(path, "/")
}

// DetectProvider determines the provider type from a hostname.
//
// Detection strategy:
//  1. Exact match on well-known hosts (github.com, gitlab.com, bitbucket.org)
//  2. Suffix match for enterprise instances (e.g., github.enterprise.com)
//  3. Contains match for self-hosted instances (e.g., gitlab.internal.corp)
//
// This allows detection of enterprise/self-hosted instances while avoiding
// false positives like "notgithub.com".
func DetectProvider(host string) Provider {
	host = strings.ToLower(host)

	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	switch host {
	case "github.com", "www.github.com":
		return ProviderGitHub
	case "gitlab.com":
		return ProviderGitLab
	case "bitbucket.org":
		return ProviderBitbucket
	}

	switch {
	case strings.HasSuffix(host, ".github.com"):
		return ProviderGitHub
	case strings.HasSuffix(host, ".gitlab.com"):
		return ProviderGitLab
	case strings.HasSuffix(host, ".bitbucket.org"):
		return ProviderBitbucket
	}

	switch {
	case strings.Contains(host, "github"):
		return ProviderGitHub
	case strings.Contains(host, "gitlab"):
		return ProviderGitLab
	case strings.Contains(host, "bitbucket"):
		return ProviderBitbucket
	}

	return ProviderUnknown
}

// HasLicenseAPI reports whether the provider exposes a repository license endpoint.
func HasLicenseAPI(p Provider) bool {
	return p == ProviderGitHub || p == ProviderGitLab
}
