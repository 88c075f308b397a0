package core

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/EmundoT/license-auditor/internal/license"
	"github.com/EmundoT/license-auditor/internal/types"
)

// maxLicenseFileSize bounds how much of a license file is read for detection
const maxLicenseFileSize = 256 * 1024

// LicenseFileSource detects licenses by reading LICENSE/COPYING/NOTICE files
// shipped with an installed package.
// This is used when the package metadata carries no usable license field.
type LicenseFileSource struct {
	sitePackages *SitePackagesIndex // nil when no Python environment exists
	nodeModules  *NodeModulesSource // nil when the project has no npm lockfile
}

var _ LicenseSource = (*LicenseFileSource)(nil)

// NewLicenseFileSource creates a license file source. Either argument may be nil.
func NewLicenseFileSource(sitePackages *SitePackagesIndex, nodeModules *NodeModulesSource) *LicenseFileSource {
	return &LicenseFileSource{
		sitePackages: sitePackages,
		nodeModules:  nodeModules,
	}
}

// Name implements LicenseSource
func (s *LicenseFileSource) Name() string { return SourceNameLicenseFile }

// candidateDirs returns the directories that may hold the package's license files
func (s *LicenseFileSource) candidateDirs(dep types.Dependency) []string {
	switch dep.Ecosystem {
	case types.EcosystemPyPI:
		if s.sitePackages == nil {
			return nil
		}
		dist := s.sitePackages.lookup(dep.Name, dep.Version)
		if dist == nil {
			return nil
		}
		return dist.licenseDirs(s.sitePackages.Dir())
	case types.EcosystemNPM:
		if s.nodeModules == nil {
			return nil
		}
		return []string{s.nodeModules.packageDir(dep.Name)}
	}
	return nil
}

// Attempt reads the standard license file names of the installed package and
// detects the license from the first recognizable one.
func (s *LicenseFileSource) Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	for _, dir := range s.candidateDirs(dep) {
		for _, filename := range LicenseFileNames {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := filepath.Join(dir, filename)
			content, err := readLimited(path, maxLicenseFileSize)
			if err != nil {
				continue // File doesn't exist, try next
			}

			if id := license.DetectFromText(string(content)); id != "" {
				return &types.LicenseRecord{
					Dependency: dep,
					RawLicense: []string{id},
					Source:     types.SourceRepo,
					Detail:     path,
				}, nil
			}
		}
	}

	// Could not detect license from any file
	return nil, nil
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(io.LimitReader(f, limit))
}
