package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

// Source names, used in diagnostics and verbose output.
const (
	SourceNameLockfile     = "lockfile"
	SourceNameSitePackages = "site-packages"
	SourceNameNodeModules  = "node_modules"
	SourceNameLicenseFile  = "license-file"
	SourceNameRepository   = "repository"
	SourceNamePyPI         = "pypi"
	SourceNameNPM          = "npm-registry"
)

// ============================================================================
// LockfileSource
// ============================================================================

// LockfileSource answers with the license recorded in the lockfile itself.
type LockfileSource struct{}

var _ LicenseSource = LockfileSource{}

// Name implements LicenseSource
func (LockfileSource) Name() string { return SourceNameLockfile }

// Attempt implements LicenseSource
func (LockfileSource) Attempt(_ context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	lic := strings.TrimSpace(dep.DeclaredLicense)
	if lic == "" {
		return nil, nil
	}
	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: []string{lic},
		Source:     types.SourcePackageMetadata,
		Detail:     dep.Manifest,
	}, nil
}

// ============================================================================
// SitePackagesSource
// ============================================================================

// SitePackagesSource reads the METADATA or PKG-INFO of installed Python distributions.
type SitePackagesSource struct {
	index *SitePackagesIndex
}

var _ LicenseSource = (*SitePackagesSource)(nil)

// NewSitePackagesSource creates a source over an installed environment index
func NewSitePackagesSource(index *SitePackagesIndex) *SitePackagesSource {
	return &SitePackagesSource{index: index}
}

// Name implements LicenseSource
func (s *SitePackagesSource) Name() string { return SourceNameSitePackages }

// Attempt implements LicenseSource
func (s *SitePackagesSource) Attempt(_ context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	if dep.Ecosystem != types.EcosystemPyPI {
		return nil, nil
	}
	dist := s.index.lookup(dep.Name, dep.Version)
	if dist == nil {
		return nil, nil
	}
	raw, field := dist.licenses()
	if len(raw) == 0 {
		return nil, nil
	}
	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: raw,
		Source:     types.SourcePackageMetadata,
		Detail:     fmt.Sprintf("%s (%s)", filepath.Base(dist.MetaPath), field),
	}, nil
}

// ============================================================================
// NodeModulesSource
// ============================================================================

// NodeModulesSource reads package.json of packages installed under node_modules.
type NodeModulesSource struct {
	root string
}

var _ LicenseSource = (*NodeModulesSource)(nil)

// NewNodeModulesSource creates a source reading <root>/node_modules
func NewNodeModulesSource(root string) *NodeModulesSource {
	return &NodeModulesSource{root: root}
}

// Name implements LicenseSource
func (s *NodeModulesSource) Name() string { return SourceNameNodeModules }

type packageJSON struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	License  json.RawMessage   `json:"license"`
	Licenses []json.RawMessage `json:"licenses"`
}

// licenseStrings accepts "MIT", {"type": "MIT"} and the deprecated licenses array.
func (p *packageJSON) licenseStrings() []string {
	var out []string
	if s := licenseField(p.License); s != "" {
		out = append(out, s)
	}
	if len(out) > 0 {
		return out
	}
	for _, raw := range p.Licenses {
		if s := licenseField(raw); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func licenseField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Type)
	}
	return ""
}

func (s *NodeModulesSource) packageDir(name string) string {
	return filepath.Join(s.root, "node_modules", filepath.FromSlash(name))
}

// Attempt implements LicenseSource
func (s *NodeModulesSource) Attempt(_ context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	if dep.Ecosystem != types.EcosystemNPM {
		return nil, nil
	}
	path := filepath.Join(s.packageDir(dep.Name), "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// A hoisted copy of another version answers nothing for this one.
	if dep.Version != "" && pkg.Version != "" && pkg.Version != dep.Version {
		return nil, nil
	}

	raw := pkg.licenseStrings()
	if len(raw) == 0 {
		return nil, nil
	}
	return &types.LicenseRecord{
		Dependency: dep,
		RawLicense: raw,
		Source:     types.SourcePackageMetadata,
		Detail:     "package.json",
	}, nil
}
