// Package types defines data structures shared by the license-auditor pipeline:
// dependencies read from lockfiles, license records, verdicts and reports.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ecosystem identifies the package ecosystem a dependency belongs to.
type Ecosystem string

// Ecosystem constants for supported lockfile families.
const (
	EcosystemPyPI Ecosystem = "pypi"
	EcosystemNPM  Ecosystem = "npm"
)

// Scope is a bit set of the ways a dependency is declared.
// A dependency reached through several declaration paths carries the union of their flags.
type Scope uint8

// Scope flags.
const (
	ScopeDirect Scope = 1 << iota
	ScopeTransitive
	ScopeDev
)

var scopeNames = []struct {
	flag Scope
	name string
}{
	{ScopeDirect, "direct"},
	{ScopeTransitive, "transitive"},
	{ScopeDev, "dev"},
}

// Has reports whether every flag in f is set in s.
func (s Scope) Has(f Scope) bool {
	return s&f == f
}

// Names returns the flag names in a stable order.
func (s Scope) Names() []string {
	names := make([]string, 0, len(scopeNames))
	for _, sn := range scopeNames {
		if s.Has(sn.flag) {
			names = append(names, sn.name)
		}
	}
	return names
}

// String formats the scope as "direct+dev".
func (s Scope) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Names(), "+")
}

// MarshalJSON encodes the scope as a list of flag names.
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes a list of flag names.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out Scope
	for _, n := range names {
		found := false
		for _, sn := range scopeNames {
			if sn.name == n {
				out |= sn.flag
				found = true
			}
		}
		if !found {
			return fmt.Errorf("unknown scope %q", n)
		}
	}
	*s = out
	return nil
}

// Dependency is a single (name, version) package read from a lockfile.
// Dependencies are created by the manifest reader and never modified afterwards.
type Dependency struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Scope     Scope     `json:"scope"`
	Ecosystem Ecosystem `json:"ecosystem"`
	// Source is the lockfile's source locator: registry URL, git URL or local path.
	Source string `json:"source,omitempty"`
	// DeclaredLicense is a license string recorded in the lockfile itself.
	DeclaredLicense string `json:"-"`
	// Manifest is the lockfile the dependency was read from.
	Manifest string `json:"manifest,omitempty"`
}

// Key returns the identity of the dependency within an audit run.
func (d Dependency) Key() string {
	return fmt.Sprintf("%s/%s@%s", d.Ecosystem, d.Name, d.Version)
}

// String returns "name@version".
func (d Dependency) String() string {
	return d.Name + "@" + d.Version
}
