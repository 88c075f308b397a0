package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EmundoT/license-auditor/internal/testutil"
	"github.com/EmundoT/license-auditor/internal/types"
)

func depsByName(deps []types.Dependency) map[string]types.Dependency {
	m := make(map[string]types.Dependency, len(deps))
	for _, d := range deps {
		m[d.Name] = d
	}
	return m
}

// ============================================================================
// uv.lock
// ============================================================================

func TestReadManifest_UVScopes(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, UVLockFile, testutil.UVLock)

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(deps) != 6 {
		t.Fatalf("got %d dependencies, want 6 (workspace root excluded): %v", len(deps), deps)
	}

	byName := depsByName(deps)
	tests := []struct {
		name  string
		scope types.Scope
	}{
		{"click", types.ScopeDirect},
		{"requests", types.ScopeDirect},
		{"certifi", types.ScopeTransitive},
		{"idna", types.ScopeTransitive},
		{"pytest", types.ScopeDirect | types.ScopeDev},
		{"iniconfig", types.ScopeTransitive | types.ScopeDev},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := byName[tt.name]
			if !ok {
				t.Fatalf("%s missing", tt.name)
			}
			if d.Scope != tt.scope {
				t.Errorf("scope = %s, want %s", d.Scope, tt.scope)
			}
			if d.Ecosystem != types.EcosystemPyPI || d.Manifest != UVLockFile {
				t.Errorf("ecosystem/manifest = %s/%s", d.Ecosystem, d.Manifest)
			}
			if d.Source != "https://pypi.org/simple" {
				t.Errorf("source = %q", d.Source)
			}
		})
	}

	if deps[0].Name != "certifi" || deps[len(deps)-1].Name != "requests" {
		t.Errorf("lockfile order not kept: first %s, last %s", deps[0].Name, deps[len(deps)-1].Name)
	}
}

func TestReadManifest_UVWithoutRootTreatsAllDirect(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, UVLockFile, `version = 1

[[package]]
name = "Jinja2"
version = "3.1.3"
source = { registry = "https://pypi.org/simple" }
dependencies = [{ name = "markupsafe" }]

[[package]]
name = "MarkupSafe"
version = "2.1.5"
source = { git = "https://github.com/pallets/markupsafe?tag=2.1.5" }
`)

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	byName := depsByName(deps)
	for _, name := range []string{"jinja2", "markupsafe"} {
		if byName[name].Scope != types.ScopeDirect {
			t.Errorf("%s scope = %s, want direct", name, byName[name].Scope)
		}
	}
	if !strings.HasPrefix(byName["markupsafe"].Source, "https://github.com/pallets/") {
		t.Errorf("git source = %q", byName["markupsafe"].Source)
	}
}

func TestReadManifest_UVMalformed(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, UVLockFile, "[[package]\nname = ")

	_, err := ReadManifest(root)
	var me *ManifestError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want *ManifestError", err)
	}
	if filepath.Base(me.Path) != UVLockFile {
		t.Errorf("ManifestError.Path = %q", me.Path)
	}
}

// ============================================================================
// poetry.lock
// ============================================================================

func TestReadManifest_Poetry(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, PoetryLockFile, testutil.PoetryLock)
	testutil.WriteFile(t, root, PyprojectFile, testutil.Pyproject)

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	byName := depsByName(deps)

	if d := byName["flask"]; d.Scope != types.ScopeDirect || d.Version != "3.0.2" {
		t.Errorf("flask = %+v, want direct 3.0.2", d)
	}
	if d := byName["markupsafe"]; d.Scope != types.ScopeTransitive {
		t.Errorf("markupsafe scope = %s, want transitive", d.Scope)
	}
	if d := byName["black"]; d.Scope != types.ScopeDirect|types.ScopeDev {
		t.Errorf("black scope = %s, want direct+dev", d.Scope)
	}
}

func TestReadManifest_PoetryWithoutPyproject(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, PoetryLockFile, testutil.PoetryLock)

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	for _, d := range deps {
		if !d.Scope.Has(types.ScopeDirect) {
			t.Errorf("%s scope = %s, want direct when pyproject.toml is absent", d.Name, d.Scope)
		}
	}
}

func TestPoetryPackage_IsDev(t *testing.T) {
	tests := []struct {
		name string
		pkg  poetryPackage
		want bool
	}{
		{"legacy dev category", poetryPackage{Category: "dev"}, true},
		{"legacy main category", poetryPackage{Category: "main"}, false},
		{"main group", poetryPackage{Groups: []string{"main", "test"}}, false},
		{"only dev groups", poetryPackage{Groups: []string{"dev", "docs"}}, true},
		{"no information", poetryPackage{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pkg.isDev(); got != tt.want {
				t.Errorf("isDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// package-lock.json
// ============================================================================

func TestReadManifest_NPM(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, NPMLockFile, testutil.NPMLock(
		[]string{"express", "@babel/core"},
		[]string{"jest"},
		testutil.NPMPackage{Path: "node_modules/express", Version: "4.18.2", License: "MIT"},
		testutil.NPMPackage{Path: "node_modules/@babel/core", Version: "7.24.0", License: "MIT"},
		testutil.NPMPackage{Path: "node_modules/debug", Version: "2.6.9", License: "MIT"},
		testutil.NPMPackage{Path: "node_modules/express/node_modules/debug", Version: "4.3.4", License: "MIT"},
		testutil.NPMPackage{Path: "node_modules/jest", Version: "29.7.0", License: "MIT", Dev: true},
		testutil.NPMPackage{Path: "node_modules/local-lib", Version: "0.0.1", Link: true},
	))

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}

	var keys []string
	for _, d := range deps {
		keys = append(keys, d.String())
	}
	want := "express@4.18.2,@babel/core@7.24.0,debug@2.6.9,debug@4.3.4,jest@29.7.0"
	if got := strings.Join(keys, ","); got != want {
		t.Fatalf("dependencies = %s, want %s", got, want)
	}

	if deps[0].Scope != types.ScopeDirect || deps[0].DeclaredLicense != "MIT" {
		t.Errorf("express = %+v", deps[0])
	}
	if deps[1].Scope != types.ScopeDirect {
		t.Errorf("scoped package scope = %s, want direct", deps[1].Scope)
	}
	if deps[3].Scope != types.ScopeTransitive {
		t.Errorf("nested debug scope = %s, want transitive", deps[3].Scope)
	}
	if deps[4].Scope != types.ScopeDirect|types.ScopeDev {
		t.Errorf("jest scope = %s, want direct+dev", deps[4].Scope)
	}
	if deps[0].Ecosystem != types.EcosystemNPM || deps[0].Manifest != NPMLockFile {
		t.Errorf("express ecosystem/manifest = %s/%s", deps[0].Ecosystem, deps[0].Manifest)
	}
}

func TestReadManifest_NPMLegacyLicenseObject(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, NPMLockFile, `{
  "lockfileVersion": 2,
  "packages": {
    "": {"dependencies": {"old": "*"}},
    "node_modules/old": {"version": "0.1.0", "license": {"type": "BSD", "url": "http://example.com"}}
  }
}`)

	deps, err := ReadManifest(root)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(deps) != 1 || deps[0].DeclaredLicense != "BSD" {
		t.Errorf("deps = %+v, want one with declared license BSD", deps)
	}
}

func TestReadManifest_NPMRejectsLockfileV1(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, NPMLockFile, `{"lockfileVersion": 1, "dependencies": {}}`)

	_, err := ReadManifest(root)
	if !IsManifestError(err) {
		t.Fatalf("err = %v, want ManifestError", err)
	}
	if !strings.Contains(err.Error(), "lockfileVersion 1") {
		t.Errorf("error should name the lockfile version: %v", err)
	}
}

// ============================================================================
// Multiple Lockfiles and Fallback
// ============================================================================

func TestManifestReader_CombinesLockfiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, UVLockFile, testutil.UVLock)
	testutil.WriteFile(t, root, NPMLockFile, testutil.NPMLock([]string{"left-pad"}, nil,
		testutil.NPMPackage{Path: "node_modules/left-pad", Version: "1.3.0", License: "WTFPL"},
	))

	set, err := NewManifestReader(root, "").Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if strings.Join(set.Files, ",") != UVLockFile+","+NPMLockFile {
		t.Errorf("Files = %v", set.Files)
	}
	last := set.Dependencies[len(set.Dependencies)-1]
	if last.Ecosystem != types.EcosystemNPM || last.Name != "left-pad" {
		t.Errorf("npm dependencies should follow uv ones, last = %s", last.Key())
	}
}

func TestDependencySet_UnionsScopes(t *testing.T) {
	set := newDependencySet()
	set.add(types.Dependency{Name: "six", Version: "1.16.0", Ecosystem: types.EcosystemPyPI, Scope: types.ScopeTransitive | types.ScopeDev})
	set.add(types.Dependency{Name: "six", Version: "1.16.0", Ecosystem: types.EcosystemPyPI, Scope: types.ScopeDirect, Source: "https://pypi.org/simple"})
	set.add(types.Dependency{Name: "six", Version: "1.16.0", Ecosystem: types.EcosystemNPM, Scope: types.ScopeDirect})

	deps := set.list()
	if len(deps) != 2 {
		t.Fatalf("got %d, want 2 (ecosystem is part of the key)", len(deps))
	}
	want := types.ScopeDirect | types.ScopeTransitive | types.ScopeDev
	if deps[0].Scope != want {
		t.Errorf("scope = %s, want %s", deps[0].Scope, want)
	}
	if deps[0].Source != "https://pypi.org/simple" {
		t.Errorf("empty source should be filled from a later duplicate, got %q", deps[0].Source)
	}
}

func TestManifestReader_SitePackagesFallback(t *testing.T) {
	root := t.TempDir()
	sp := testutil.NewSitePackages(t, root)
	testutil.WriteDistInfo(t, sp, "Requests", "2.31.0", "License: Apache 2.0")
	testutil.WriteEggInfo(t, sp, "legacy_pkg", "0.9")
	// Interrupted install: no METADATA
	if err := os.MkdirAll(filepath.Join(sp, "broken-1.0.dist-info"), 0o755); err != nil {
		t.Fatal(err)
	}

	set, err := NewManifestReader(root, "").Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(set.Files) != 1 || set.Files[0] != sp {
		t.Errorf("Files = %v, want [%s]", set.Files, sp)
	}
	byName := depsByName(set.Dependencies)
	if len(byName) != 2 {
		t.Fatalf("dependencies = %v, want requests and legacy-pkg", set.Dependencies)
	}
	if d := byName["requests"]; d.Version != "2.31.0" || d.Scope != types.ScopeDirect || d.Manifest != SitePackagesManifest {
		t.Errorf("requests = %+v", d)
	}
	if _, ok := byName["legacy-pkg"]; !ok {
		t.Error("egg-info distribution missing")
	}
}

func TestManifestReader_ExplicitSitePackages(t *testing.T) {
	root := t.TempDir()
	elsewhere := filepath.Join(t.TempDir(), "site-packages")
	testutil.WriteDistInfo(t, elsewhere, "attrs", "23.2.0")

	set, err := NewManifestReader(root, elsewhere).Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(set.Dependencies) != 1 || set.Dependencies[0].Name != "attrs" {
		t.Errorf("dependencies = %v", set.Dependencies)
	}
}

func TestManifestReader_Errors(t *testing.T) {
	t.Run("nothing to read", func(t *testing.T) {
		_, err := ReadManifest(t.TempDir())
		if !errors.Is(err, ErrManifestNotFound) {
			t.Errorf("err = %v, want ErrManifestNotFound", err)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := ReadManifest(filepath.Join(t.TempDir(), "absent"))
		if !IsManifestError(err) {
			t.Errorf("err = %v, want ManifestError", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "file.txt", "x")
		_, err := ReadManifest(path)
		if !IsManifestError(err) {
			t.Errorf("err = %v, want ManifestError", err)
		}
	})

	t.Run("empty environment", func(t *testing.T) {
		root := t.TempDir()
		testutil.NewSitePackages(t, root)
		_, err := ReadManifest(root)
		if !IsManifestError(err) {
			t.Errorf("err = %v, want ManifestError", err)
		}
	})
}

func TestNormalizePyName(t *testing.T) {
	tests := map[string]string{
		"Flask":              "flask",
		"zope.interface":     "zope-interface",
		"typing__extensions": "typing-extensions",
		" Ruamel.YAML.clib ": "ruamel-yaml-clib",
	}
	for in, want := range tests {
		if got := normalizePyName(in); got != want {
			t.Errorf("normalizePyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequirementToName(t *testing.T) {
	tests := map[string]string{
		"requests>=2.31":                   "requests",
		"Django[argon2] ~= 5.0":            "django",
		"pywin32; sys_platform == 'win32'": "pywin32",
		"   ":                              "",
	}
	for in, want := range tests {
		if got := requirementToName(in); got != want {
			t.Errorf("requirementToName(%q) = %q, want %q", in, got, want)
		}
	}
}
