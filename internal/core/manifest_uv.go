package core

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/EmundoT/license-auditor/internal/types"
)

type uvLock struct {
	Version  int         `toml:"version"`
	Packages []uvPackage `toml:"package"`
}

type uvPackage struct {
	Name                 string                    `toml:"name"`
	Version              string                    `toml:"version"`
	Source               map[string]interface{}    `toml:"source"`
	Dependencies         []uvDependency            `toml:"dependencies"`
	OptionalDependencies map[string][]uvDependency `toml:"optional-dependencies"`
	DevDependencies      map[string][]uvDependency `toml:"dev-dependencies"`
}

type uvDependency struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// isRoot reports whether the package is a workspace member rather than a third-party dependency.
func (p *uvPackage) isRoot() bool {
	_, editable := p.Source["editable"]
	_, virtual := p.Source["virtual"]
	return editable || virtual
}

// sourceLocator returns the registry, git or url locator of the package.
func (p *uvPackage) sourceLocator() string {
	for _, kind := range []string{"git", "url", "registry"} {
		if v, ok := p.Source[kind]; ok {
			return fmt.Sprint(v)
		}
	}
	for _, kind := range []string{"path", "directory"} {
		if v, ok := p.Source[kind]; ok {
			return kind + ":" + fmt.Sprint(v)
		}
	}
	return ""
}

func (r *ManifestReader) readUVLock(path string) ([]types.Dependency, error) {
	var lock uvLock
	if _, err := toml.DecodeFile(path, &lock); err != nil {
		return nil, fmt.Errorf("parse %s: %w", UVLockFile, err)
	}

	byName := make(map[string][]int)
	var roots []int
	for i := range lock.Packages {
		pkg := &lock.Packages[i]
		if pkg.Name == "" {
			return nil, fmt.Errorf("package entry %d has no name", i+1)
		}
		byName[normalizePyName(pkg.Name)] = append(byName[normalizePyName(pkg.Name)], i)
		if pkg.isRoot() {
			roots = append(roots, i)
		}
	}

	scopes := make([]types.Scope, len(lock.Packages))

	if len(roots) == 0 {
		for i := range scopes {
			scopes[i] = types.ScopeDirect
		}
	} else {
		resolve := func(d uvDependency) int {
			candidates := byName[normalizePyName(d.Name)]
			if len(candidates) == 0 {
				return -1
			}
			if d.Version != "" {
				for _, idx := range candidates {
					if lock.Packages[idx].Version == d.Version {
						return idx
					}
				}
			}
			return candidates[0]
		}

		var queue []int
		mark := func(idx int, s types.Scope) {
			if idx < 0 || lock.Packages[idx].isRoot() {
				return
			}
			if scopes[idx]|s == scopes[idx] {
				return
			}
			scopes[idx] |= s
			queue = append(queue, idx)
		}

		for _, ri := range roots {
			root := &lock.Packages[ri]
			for _, d := range root.Dependencies {
				mark(resolve(d), types.ScopeDirect)
			}
			for _, extra := range sortedKeys(root.OptionalDependencies) {
				for _, d := range root.OptionalDependencies[extra] {
					mark(resolve(d), types.ScopeDirect)
				}
			}
			for _, group := range sortedKeys(root.DevDependencies) {
				for _, d := range root.DevDependencies[group] {
					mark(resolve(d), types.ScopeDirect|types.ScopeDev)
				}
			}
		}

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			inherited := types.ScopeTransitive | (scopes[idx] & types.ScopeDev)
			pkg := &lock.Packages[idx]
			for _, d := range pkg.Dependencies {
				mark(resolve(d), inherited)
			}
			for _, extra := range sortedKeys(pkg.OptionalDependencies) {
				for _, d := range pkg.OptionalDependencies[extra] {
					mark(resolve(d), inherited)
				}
			}
		}
	}

	deps := make([]types.Dependency, 0, len(lock.Packages))
	for i := range lock.Packages {
		pkg := &lock.Packages[i]
		if pkg.isRoot() {
			continue
		}
		scope := scopes[i]
		if scope == 0 {
			// Locked but unreachable from any root (e.g. a platform-specific marker branch).
			scope = types.ScopeTransitive
		}
		deps = append(deps, types.Dependency{
			Name:      normalizePyName(pkg.Name),
			Version:   pkg.Version,
			Scope:     scope,
			Ecosystem: types.EcosystemPyPI,
			Source:    pkg.sourceLocator(),
			Manifest:  UVLockFile,
		})
	}
	return deps, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
