// Package testutil provides shared test fixtures for the license-auditor project:
// lockfiles, installed Python environments and node_modules trees written into
// temporary directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ============================================================================
// File Helpers
// ============================================================================

// WriteFile writes content to dir/rel, creating parent directories, and returns the path.
func WriteFile(t testing.TB, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ============================================================================
// Lockfile Fixtures
// ============================================================================

// UVLock is a uv.lock with a virtual workspace root "app" depending on
// requests (which pulls certifi and idna) and click, plus a dev group with pytest.
const UVLock = `version = 1
requires-python = ">=3.9"

[[package]]
name = "app"
version = "0.1.0"
source = { virtual = "." }
dependencies = [
    { name = "click" },
    { name = "requests" },
]

[package.dev-dependencies]
dev = [
    { name = "pytest" },
]

[[package]]
name = "certifi"
version = "2024.2.2"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "click"
version = "8.1.7"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "idna"
version = "3.6"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "iniconfig"
version = "2.0.0"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "pytest"
version = "8.0.0"
source = { registry = "https://pypi.org/simple" }
dependencies = [
    { name = "iniconfig" },
]

[[package]]
name = "requests"
version = "2.31.0"
source = { registry = "https://pypi.org/simple" }
dependencies = [
    { name = "certifi" },
    { name = "idna" },
]
`

// PoetryLock is a poetry.lock with one main and one dev package.
const PoetryLock = `[[package]]
name = "Flask"
version = "3.0.2"
description = "A simple framework for building complex web applications."
optional = false
python-versions = ">=3.8"
groups = ["main"]

[[package]]
name = "markupsafe"
version = "2.1.5"
optional = false
python-versions = ">=3.7"
groups = ["main"]

[[package]]
name = "black"
version = "24.2.0"
optional = false
python-versions = ">=3.8"
category = "dev"

[metadata]
lock-version = "2.0"
python-versions = "^3.10"
`

// Pyproject declares Flask as the only direct runtime dependency.
const Pyproject = `[tool.poetry]
name = "web"
version = "0.1.0"

[tool.poetry.dependencies]
python = "^3.10"
flask = "^3.0"

[tool.poetry.group.dev.dependencies]
black = "^24.2"
`

// NPMPackage is one entry of a package-lock.json "packages" section.
type NPMPackage struct {
	Path    string // e.g. "node_modules/left-pad"
	Version string
	License string // Empty omits the field
	Dev     bool
	Link    bool
}

// NPMLock renders a lockfileVersion 3 package-lock.json. deps and devDeps name
// the root's direct dependencies. Package order is kept as given.
func NPMLock(deps, devDeps []string, packages ...NPMPackage) string {
	quoteMap := func(names []string) string {
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%q: \"*\"", n)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	var sb strings.Builder
	sb.WriteString("{\n  \"name\": \"app\",\n  \"version\": \"1.0.0\",\n  \"lockfileVersion\": 3,\n  \"requires\": true,\n  \"packages\": {\n")
	fmt.Fprintf(&sb, "    \"\": {\"name\": \"app\", \"version\": \"1.0.0\", \"dependencies\": %s, \"devDependencies\": %s}",
		quoteMap(deps), quoteMap(devDeps))
	for _, p := range packages {
		fields := []string{fmt.Sprintf("\"version\": %q", p.Version)}
		if p.License != "" {
			fields = append(fields, fmt.Sprintf("\"license\": %q", p.License))
		}
		if p.Dev {
			fields = append(fields, "\"dev\": true")
		}
		if p.Link {
			fields = append(fields, "\"link\": true", "\"resolved\": \"packages/local\"")
		} else {
			name := p.Path[strings.LastIndex(p.Path, "node_modules/")+len("node_modules/"):]
			fields = append(fields, fmt.Sprintf("\"resolved\": \"https://registry.npmjs.org/%s/-/%s-%s.tgz\"", name, lastSegment(name), p.Version))
		}
		fmt.Fprintf(&sb, ",\n    %q: {%s}", p.Path, strings.Join(fields, ", "))
	}
	sb.WriteString("\n  }\n}\n")
	return sb.String()
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ============================================================================
// Installed Environment Fixtures
// ============================================================================

// NewSitePackages creates root/.venv/lib/python3.12/site-packages and returns its path.
func NewSitePackages(t testing.TB, root string) string {
	t.Helper()
	dir := filepath.Join(root, ".venv", "lib", "python3.12", "site-packages")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir site-packages: %v", err)
	}
	return dir
}

// WriteDistInfo writes name-version.dist-info/METADATA with the given extra
// header lines (e.g. "License: MIT", "Classifier: License :: OSI Approved :: MIT License").
// Returns the dist-info directory.
func WriteDistInfo(t testing.TB, sitePackages, name, version string, headers ...string) string {
	t.Helper()
	dir := filepath.Join(sitePackages, fmt.Sprintf("%s-%s.dist-info", strings.ReplaceAll(name, "-", "_"), version))
	WriteFile(t, dir, "METADATA", metadata("2.1", name, version, headers))
	return dir
}

// WriteEggInfo writes name-version.egg-info/PKG-INFO. Returns the egg-info directory.
func WriteEggInfo(t testing.TB, sitePackages, name, version string, headers ...string) string {
	t.Helper()
	dir := filepath.Join(sitePackages, fmt.Sprintf("%s-%s.egg-info", strings.ReplaceAll(name, "-", "_"), version))
	WriteFile(t, dir, "PKG-INFO", metadata("1.2", name, version, headers))
	return dir
}

func metadata(metaVersion, name, version string, headers []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Metadata-Version: %s\nName: %s\nVersion: %s\n", metaVersion, name, version)
	for _, h := range headers {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	sb.WriteString("\nLong description body.\n")
	return sb.String()
}

// WriteNodePackage writes root/node_modules/<name>/package.json. license is a
// raw JSON value for the "license" field; empty omits it.
func WriteNodePackage(t testing.TB, root, name, version, license string) string {
	t.Helper()
	fields := []string{fmt.Sprintf("\"name\": %q", name), fmt.Sprintf("\"version\": %q", version)}
	if license != "" {
		fields = append(fields, fmt.Sprintf("\"license\": %s", license))
	}
	dir := filepath.Join(root, "node_modules", filepath.FromSlash(name))
	WriteFile(t, dir, "package.json", "{"+strings.Join(fields, ", ")+"}\n")
	return dir
}

// MITText is the opening of the MIT license, enough for text detection.
const MITText = `MIT License

Copyright (c) 2024 Example Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY.
`
