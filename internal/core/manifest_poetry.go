package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/EmundoT/license-auditor/internal/types"
)

type poetryLock struct {
	Packages []poetryPackage `toml:"package"`
}

type poetryPackage struct {
	Name     string   `toml:"name"`
	Version  string   `toml:"version"`
	Category string   `toml:"category"` // poetry < 1.5
	Groups   []string `toml:"groups"`   // poetry >= 2
	Source   *struct {
		Type string `toml:"type"`
		URL  string `toml:"url"`
	} `toml:"source"`
}

func (p *poetryPackage) isDev() bool {
	if p.Category == "dev" {
		return true
	}
	if len(p.Groups) == 0 {
		return false
	}
	for _, g := range p.Groups {
		if g == "main" {
			return false
		}
	}
	return true
}

// pyproject holds the dependency declarations read to tell direct from transitive packages.
type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]interface{} `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]interface{} `toml:"dependencies"`
			DevDependencies map[string]interface{} `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]interface{} `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// directNames returns the normalized names declared directly by the project.
func (p *pyproject) directNames() map[string]bool {
	names := make(map[string]bool)
	for _, req := range p.Project.Dependencies {
		if n := requirementToName(req); n != "" {
			names[n] = true
		}
	}
	for _, reqs := range p.Project.OptionalDependencies {
		for _, req := range reqs {
			if n := requirementToName(req); n != "" {
				names[n] = true
			}
		}
	}
	for _, reqs := range p.DependencyGroups {
		for _, req := range reqs {
			if s, ok := req.(string); ok {
				if n := requirementToName(s); n != "" {
					names[n] = true
				}
			}
		}
	}
	add := func(m map[string]interface{}) {
		for name := range m {
			if name == "python" {
				continue
			}
			names[normalizePyName(name)] = true
		}
	}
	add(p.Tool.Poetry.Dependencies)
	add(p.Tool.Poetry.DevDependencies)
	for _, g := range p.Tool.Poetry.Group {
		add(g.Dependencies)
	}
	return names
}

// loadPyproject reads pyproject.toml next to the lockfile. A missing file is not an error.
func loadPyproject(root string) (*pyproject, error) {
	var p pyproject
	path := filepath.Join(root, PyprojectFile)
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse %s: %w", PyprojectFile, err)
	}
	return &p, nil
}

func (r *ManifestReader) readPoetryLock(path string) ([]types.Dependency, error) {
	var lock poetryLock
	if _, err := toml.DecodeFile(path, &lock); err != nil {
		return nil, fmt.Errorf("parse %s: %w", PoetryLockFile, err)
	}

	project, err := loadPyproject(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	var direct map[string]bool
	if project != nil {
		if names := project.directNames(); len(names) > 0 {
			direct = names
		}
	}

	deps := make([]types.Dependency, 0, len(lock.Packages))
	for i, pkg := range lock.Packages {
		if pkg.Name == "" {
			return nil, fmt.Errorf("package entry %d has no name", i+1)
		}
		name := normalizePyName(pkg.Name)

		// Without pyproject.toml there is no way to tell direct from transitive.
		scope := types.ScopeDirect
		if direct != nil && !direct[name] {
			scope = types.ScopeTransitive
		}
		if pkg.isDev() {
			scope |= types.ScopeDev
		}

		var source string
		if pkg.Source != nil {
			source = pkg.Source.URL
			if pkg.Source.Type == "directory" || pkg.Source.Type == "file" {
				source = pkg.Source.Type + ":" + pkg.Source.URL
			}
		}

		deps = append(deps, types.Dependency{
			Name:      name,
			Version:   pkg.Version,
			Scope:     scope,
			Ecosystem: types.EcosystemPyPI,
			Source:    source,
			Manifest:  PoetryLockFile,
		})
	}
	return deps, nil
}
