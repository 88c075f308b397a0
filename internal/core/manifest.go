package core

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ManifestReader reads a project's dependency set from its lockfiles.
type ManifestReader struct {
	root string
	// sitePackages overrides installed environment detection for the fallback reader.
	sitePackages string
}

// NewManifestReader creates a reader for the project at root.
// sitePackages may be empty to auto-detect .venv.
func NewManifestReader(root, sitePackages string) *ManifestReader {
	return &ManifestReader{root: root, sitePackages: sitePackages}
}

// ManifestSet is the deduplicated dependency list plus the files it came from.
type ManifestSet struct {
	Files        []string
	Dependencies []types.Dependency
}

// ReadManifest returns the ordered, deduplicated dependencies declared under root.
func ReadManifest(root string) ([]types.Dependency, error) {
	set, err := NewManifestReader(root, "").Read()
	if err != nil {
		return nil, err
	}
	return set.Dependencies, nil
}

// Read parses every recognized lockfile under the root, in LockfileNames order.
// When none exists the installed environment is enumerated instead.
// Returns *ManifestError when nothing can be read or a file is malformed.
func (r *ManifestReader) Read() (*ManifestSet, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return nil, &ManifestError{Path: r.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ManifestError{Path: r.root, Err: errors.New("not a directory")}
	}

	set := newDependencySet()
	var files []string

	readers := []struct {
		name  string
		parse func(path string) ([]types.Dependency, error)
	}{
		{UVLockFile, r.readUVLock},
		{PoetryLockFile, r.readPoetryLock},
		{NPMLockFile, readNPMLock},
	}

	for _, rd := range readers {
		path := filepath.Join(r.root, rd.name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &ManifestError{Path: path, Err: err}
		}
		deps, err := rd.parse(path)
		if err != nil {
			return nil, &ManifestError{Path: path, Err: err}
		}
		files = append(files, rd.name)
		set.addAll(deps)
	}

	if len(files) == 0 {
		dir := r.sitePackages
		if dir == "" {
			dir = FindSitePackages(r.root)
		}
		if dir == "" {
			return nil, &ManifestError{Path: r.root, Err: ErrManifestNotFound}
		}
		deps, err := readInstalledEnvironment(dir)
		if err != nil {
			return nil, &ManifestError{Path: dir, Err: err}
		}
		files = append(files, dir)
		set.addAll(deps)
	}

	return &ManifestSet{Files: files, Dependencies: set.list()}, nil
}

// dependencySet deduplicates dependencies by (ecosystem, name, version), keeping
// first-declaration order and the union of scope flags.
type dependencySet struct {
	index map[string]int
	deps  []types.Dependency
}

func newDependencySet() *dependencySet {
	return &dependencySet{index: make(map[string]int)}
}

func (s *dependencySet) add(dep types.Dependency) {
	key := dep.Key()
	if i, ok := s.index[key]; ok {
		existing := &s.deps[i]
		existing.Scope |= dep.Scope
		if existing.DeclaredLicense == "" {
			existing.DeclaredLicense = dep.DeclaredLicense
		}
		if existing.Source == "" {
			existing.Source = dep.Source
		}
		return
	}
	s.index[key] = len(s.deps)
	s.deps = append(s.deps, dep)
}

func (s *dependencySet) addAll(deps []types.Dependency) {
	for _, d := range deps {
		s.add(d)
	}
}

func (s *dependencySet) list() []types.Dependency {
	out := make([]types.Dependency, len(s.deps))
	copy(out, s.deps)
	return out
}

var pyNameSeparators = regexp.MustCompile(`[-_.]+`)

// normalizePyName applies PEP 503 name normalization.
func normalizePyName(name string) string {
	return pyNameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

var requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)

// requirementToName extracts the distribution name from a PEP 508 requirement string.
func requirementToName(req string) string {
	m := requirementName.FindStringSubmatch(req)
	if m == nil {
		return ""
	}
	return normalizePyName(m[1])
}
