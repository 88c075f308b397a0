package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

const nodeModulesPrefix = "node_modules/"

type npmLockHeader struct {
	LockfileVersion int             `json:"lockfileVersion"`
	Packages        json.RawMessage `json:"packages"`
}

type npmPackage struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Resolved             string            `json:"resolved"`
	License              json.RawMessage   `json:"license"`
	Dev                  bool              `json:"dev"`
	DevOptional          bool              `json:"devOptional"`
	Link                 bool              `json:"link"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
}

type npmEntry struct {
	key string
	pkg npmPackage
}

// licenseString extracts the license from either the string form or the legacy {"type": ...} form.
func (p *npmPackage) licenseString() string {
	if len(p.License) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.License, &s); err == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(p.License, &obj); err == nil {
		return obj.Type
	}
	return ""
}

func readNPMLock(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var header npmLockHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parse %s: %w", NPMLockFile, err)
	}
	if header.LockfileVersion < 2 {
		return nil, fmt.Errorf("lockfileVersion %d is not supported; regenerate the lockfile with npm 7 or newer", header.LockfileVersion)
	}
	if len(header.Packages) == 0 {
		return nil, fmt.Errorf("%s has no \"packages\" section", NPMLockFile)
	}

	entries, err := decodeOrderedPackages(header.Packages)
	if err != nil {
		return nil, fmt.Errorf("parse %s packages: %w", NPMLockFile, err)
	}

	direct := make(map[string]bool)
	for _, e := range entries {
		if e.key != "" {
			continue
		}
		for _, m := range []map[string]string{e.pkg.Dependencies, e.pkg.DevDependencies, e.pkg.OptionalDependencies, e.pkg.PeerDependencies} {
			for name := range m {
				direct[name] = true
			}
		}
	}

	deps := make([]types.Dependency, 0, len(entries))
	for _, e := range entries {
		if e.key == "" || e.pkg.Link || !strings.HasPrefix(e.key, nodeModulesPrefix) {
			continue
		}
		installPath := e.key[strings.LastIndex(e.key, nodeModulesPrefix)+len(nodeModulesPrefix):]
		name := installPath
		if e.pkg.Name != "" {
			name = e.pkg.Name
		}

		topLevel := !strings.Contains(strings.TrimPrefix(e.key, nodeModulesPrefix), "/"+nodeModulesPrefix)
		scope := types.ScopeTransitive
		if topLevel && direct[installPath] {
			scope = types.ScopeDirect
		}
		if e.pkg.Dev || e.pkg.DevOptional {
			scope |= types.ScopeDev
		}

		deps = append(deps, types.Dependency{
			Name:            name,
			Version:         e.pkg.Version,
			Scope:           scope,
			Ecosystem:       types.EcosystemNPM,
			Source:          e.pkg.Resolved,
			DeclaredLicense: e.pkg.licenseString(),
			Manifest:        NPMLockFile,
		})
	}
	return deps, nil
}

// decodeOrderedPackages walks the "packages" object token by token so that
// entries keep their lockfile order.
func decodeOrderedPackages(raw json.RawMessage) ([]npmEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object")
	}

	var entries []npmEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key")
		}
		var pkg npmPackage
		if err := dec.Decode(&pkg); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		entries = append(entries, npmEntry{key: key, pkg: pkg})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
