package core

import (
	"context"
	"net/http"

	"github.com/EmundoT/license-auditor/internal/hostdetect"
	"github.com/EmundoT/license-auditor/internal/types"
)

// RepositorySource asks the hosting platform of a dependency's source
// repository for its license. Only GitHub and GitLab expose a license API;
// other hosts yield no answer.
type RepositorySource struct {
	githubChecker *GitHubLicenseChecker
	gitlabChecker *GitLabAPIChecker
}

var _ LicenseSource = (*RepositorySource)(nil)

// NewRepositorySource creates a repository source sharing httpClient between platforms
func NewRepositorySource(httpClient *http.Client) *RepositorySource {
	return &RepositorySource{
		githubChecker: NewGitHubLicenseChecker(httpClient, ""),
		gitlabChecker: NewGitLabAPIChecker(httpClient),
	}
}

// Name implements LicenseSource
func (s *RepositorySource) Name() string { return SourceNameRepository }

// Attempt detects the provider from the dependency source URL and queries its API.
//
// Strategy:
//  1. Turn the locator (git+https, git+ssh, scp-style, browse deep link) into a repository URL
//  2. Detect the hosting provider from the URL
//  3. Query the platform license API if it has one
func (s *RepositorySource) Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	repoURL := hostdetect.NormalizeRepoURL(dep.Source)
	info := hostdetect.FromURL(repoURL)
	if info == nil || !hostdetect.HasLicenseAPI(info.Provider) {
		return nil, nil
	}

	var id string
	var err error
	switch info.Provider {
	case hostdetect.ProviderGitHub:
		id, err = s.githubChecker.CheckLicense(ctx, info.Host, info.Owner, info.Repo)
	case hostdetect.ProviderGitLab:
		id, err = s.gitlabChecker.CheckLicense(ctx, info.Host, info.Owner+"/"+info.Repo)
	}
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: []string{id},
		Source:     types.SourceRepo,
		Detail:     repoURL,
	}, nil
}
