package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EmundoT/license-auditor/internal/version"
)

// DefaultGitHubAPIURL is the public GitHub REST API root
const DefaultGitHubAPIURL = "https://api.github.com"

// githubMaxAttempts bounds retries on rate limiting
const githubMaxAttempts = 3

// GitHubLicenseChecker queries the GitHub repository license endpoint
type GitHubLicenseChecker struct {
	httpClient *http.Client
	baseURL    string
	token      string
	// backoff returns the wait before the given retry attempt (1-based).
	backoff func(attempt int) time.Duration
}

// NewGitHubLicenseChecker creates a new GitHubLicenseChecker.
// An empty baseURL selects DefaultGitHubAPIURL; the token is read from GITHUB_TOKEN.
func NewGitHubLicenseChecker(httpClient *http.Client, baseURL string) *GitHubLicenseChecker {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultGitHubAPIURL
	}
	return &GitHubLicenseChecker{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      os.Getenv(EnvGitHubToken),
		backoff: func(attempt int) time.Duration {
			// Exponential backoff: 2s, 4s
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

// apiRoot returns the API root for host. GitHub Enterprise serves the API under /api/v3.
func (c *GitHubLicenseChecker) apiRoot(host string) string {
	if c.baseURL != DefaultGitHubAPIURL || host == "" || strings.EqualFold(host, "github.com") || strings.EqualFold(host, "www.github.com") {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s/api/v3", host)
}

// CheckLicense returns the SPDX identifier GitHub reports for owner/repo.
// Returns "" without error when the repository has no detectable license.
func (c *GitHubLicenseChecker) CheckLicense(ctx context.Context, host, owner, repo string) (string, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/license", c.apiRoot(host), owner, repo)

	// Retry with exponential backoff for rate limit errors
	var lastErr error
	for attempt := 0; attempt < githubMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", version.UserAgent())
		req.Header.Set("Accept", "application/vnd.github+json")

		// A token raises the rate limit from 60/hr to 5000/hr
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("GitHub API rate limit exceeded. Set %s to increase rate limit (60/hr → 5000/hr)", EnvGitHubToken)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			_ = resp.Body.Close()
			return "", nil
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
		}

		var res struct {
			License struct {
				SpdxID string `json:"spdx_id"`
			} `json:"license"`
		}

		err = json.NewDecoder(resp.Body).Decode(&res)
		_ = resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to parse GitHub API response: %w", err)
		}

		// NOASSERTION means GitHub found a license file it could not classify
		if res.License.SpdxID == "" || res.License.SpdxID == "NOASSERTION" {
			return "", nil
		}

		return res.License.SpdxID, nil
	}

	return "", lastErr
}
