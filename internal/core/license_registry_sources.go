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

	"github.com/EmundoT/license-auditor/internal/types"
	"github.com/EmundoT/license-auditor/internal/version"
)

// Default registry endpoints. LICENSE_AUDITOR_PYPI_URL and LICENSE_AUDITOR_NPM_URL override them.
const (
	DefaultPyPIURL = "https://pypi.org"
	DefaultNPMURL  = "https://registry.npmjs.org"
)

// maxRegistryResponse caps registry response bodies
const maxRegistryResponse = 8 << 20

// NewRegistryHTTPClient returns the HTTP client shared by the network sources.
// Each attempt is also bounded by the resolver's per-attempt context deadline.
func NewRegistryHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// registryGet fetches url into v. found is false on 404.
func registryGet(ctx context.Context, client *http.Client, rawURL string, v interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxRegistryResponse))
	if err := dec.Decode(v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	return true, nil
}

// ============================================================================
// PyPIRegistry
// ============================================================================

// PyPIRegistry queries the PyPI JSON API
type PyPIRegistry struct {
	httpClient *http.Client
	baseURL    string
}

var _ LicenseSource = (*PyPIRegistry)(nil)

// NewPyPIRegistry creates a PyPI source. An empty baseURL selects
// LICENSE_AUDITOR_PYPI_URL or DefaultPyPIURL.
func NewPyPIRegistry(httpClient *http.Client, baseURL string) *PyPIRegistry {
	if httpClient == nil {
		httpClient = NewRegistryHTTPClient()
	}
	if baseURL == "" {
		baseURL = os.Getenv(EnvPyPIURL)
	}
	if baseURL == "" {
		baseURL = DefaultPyPIURL
	}
	return &PyPIRegistry{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LicenseSource
func (r *PyPIRegistry) Name() string { return SourceNamePyPI }

type pypiResponse struct {
	Info struct {
		License           string   `json:"license"`
		LicenseExpression string   `json:"license_expression"`
		Classifiers       []string `json:"classifiers"`
	} `json:"info"`
}

// licenses applies the METADATA preference order to the JSON API fields
func (p *pypiResponse) licenses() []string {
	if expr := strings.TrimSpace(p.Info.LicenseExpression); expr != "" {
		return []string{expr}
	}
	var classifiers []string
	for _, c := range p.Info.Classifiers {
		if strings.HasPrefix(c, "License ::") {
			classifiers = append(classifiers, c)
		}
	}
	if len(classifiers) > 0 {
		return classifiers
	}
	if lic := strings.TrimSpace(p.Info.License); lic != "" && !strings.EqualFold(lic, "UNKNOWN") {
		return []string{lic}
	}
	return nil
}

// Attempt implements LicenseSource
func (r *PyPIRegistry) Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	if dep.Ecosystem != types.EcosystemPyPI {
		return nil, nil
	}
	apiURL := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, url.PathEscape(dep.Name))
	if dep.Version != "" {
		apiURL = fmt.Sprintf("%s/pypi/%s/%s/json", r.baseURL, url.PathEscape(dep.Name), url.PathEscape(dep.Version))
	}

	var resp pypiResponse
	found, err := registryGet(ctx, r.httpClient, apiURL, &resp)
	if err != nil || !found {
		return nil, err
	}
	raw := resp.licenses()
	if len(raw) == 0 {
		return nil, nil
	}
	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: raw,
		Source:     types.SourceRegistryFallback,
		Detail:     r.baseURL,
	}, nil
}

// ============================================================================
// NPMRegistry
// ============================================================================

// NPMRegistry queries the npm registry package version documents
type NPMRegistry struct {
	httpClient *http.Client
	baseURL    string
}

var _ LicenseSource = (*NPMRegistry)(nil)

// NewNPMRegistry creates an npm source. An empty baseURL selects
// LICENSE_AUDITOR_NPM_URL or DefaultNPMURL.
func NewNPMRegistry(httpClient *http.Client, baseURL string) *NPMRegistry {
	if httpClient == nil {
		httpClient = NewRegistryHTTPClient()
	}
	if baseURL == "" {
		baseURL = os.Getenv(EnvNPMURL)
	}
	if baseURL == "" {
		baseURL = DefaultNPMURL
	}
	return &NPMRegistry{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements LicenseSource
func (r *NPMRegistry) Name() string { return SourceNameNPM }

// Attempt implements LicenseSource
func (r *NPMRegistry) Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	if dep.Ecosystem != types.EcosystemNPM {
		return nil, nil
	}
	// Scoped names keep the @ and encode the slash: @scope%2fname
	name := strings.Replace(dep.Name, "/", "%2f", 1)
	version := dep.Version
	if version == "" {
		version = "latest"
	}
	apiURL := fmt.Sprintf("%s/%s/%s", r.baseURL, name, url.PathEscape(version))

	var pkg packageJSON
	found, err := registryGet(ctx, r.httpClient, apiURL, &pkg)
	if err != nil || !found {
		return nil, err
	}
	raw := pkg.licenseStrings()
	if len(raw) == 0 {
		return nil, nil
	}
	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: raw,
		Source:     types.SourceRegistryFallback,
		Detail:     r.baseURL,
	}, nil
}
