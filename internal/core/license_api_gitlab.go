package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/EmundoT/license-auditor/internal/version"
)

// GitLabAPIChecker implements license detection via GitLab API
type GitLabAPIChecker struct {
	httpClient *http.Client
	token      string
	// baseURL overrides https://<host> for every request; used by tests.
	baseURL string
}

// NewGitLabAPIChecker creates a new GitLab API license checker.
// The token is read from GITLAB_TOKEN.
func NewGitLabAPIChecker(httpClient *http.Client) *GitLabAPIChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitLabAPIChecker{
		httpClient: httpClient,
		token:      os.Getenv(EnvGitLabToken),
	}
}

// CheckLicense queries the GitLab API for the license of the project at host/projectPath.
//
// GitLab API endpoint: GET /api/v4/projects/:id?license=true
// Documentation: https://docs.gitlab.com/ee/api/projects.html#get-single-project
//
// Supports both gitlab.com and self-hosted instances.
// Returns "" without error when the project is missing or has no detected license.
func (c *GitLabAPIChecker) CheckLicense(ctx context.Context, host, projectPath string) (string, error) {
	root := c.baseURL
	if root == "" {
		root = "https://" + host
	}

	// URL-encode the project path (GitLab API requirement)
	encodedPath := url.PathEscape(strings.Trim(projectPath, "/"))
	apiURL := fmt.Sprintf("%s/api/v4/projects/%s?license=true", strings.TrimRight(root, "/"), encodedPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", version.UserAgent())

	// Add authentication if token available
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("GitLab API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Handle 404 - repository not found or not visible
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitLab API returned status %d", resp.StatusCode)
	}

	var project struct {
		License *struct {
			Key      string `json:"key"`
			Name     string `json:"name"`
			Nickname string `json:"nickname"`
		} `json:"license"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return "", fmt.Errorf("failed to parse GitLab API response: %w", err)
	}

	if project.License == nil {
		return "", nil
	}
	// GitLab keys are lowercase SPDX ids ("mit", "apache-2.0"); the normalizer canonicalizes them.
	if project.License.Key != "" && project.License.Key != "other" {
		return project.License.Key, nil
	}
	return project.License.Name, nil
}
