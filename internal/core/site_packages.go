package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/EmundoT/license-auditor/internal/types"
)

// SitePackagesManifest is the Manifest value of dependencies enumerated from an installed environment.
const SitePackagesManifest = "site-packages"

// sitePackagesPatterns are tried in order below the project root.
var sitePackagesPatterns = []string{
	"{.venv,venv,env}/lib/python*/site-packages",
	"{.venv,venv,env}/Lib/site-packages",
}

// FindSitePackages returns the site-packages directory of the project's virtual
// environment, or "" when there is none.
func FindSitePackages(root string) string {
	for _, pattern := range sitePackagesPatterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				return m
			}
		}
	}
	return ""
}

// distribution is one installed Python package.
type distribution struct {
	Name     string
	Version  string
	InfoDir  string // *.dist-info or *.egg-info directory; empty for single-file egg-info
	MetaPath string
	Header   textproto.MIMEHeader
}

// licenses returns the license strings declared in the metadata, preferring
// License-Expression, then license classifiers, then the free-form License field.
func (d *distribution) licenses() ([]string, string) {
	if expr := strings.TrimSpace(d.Header.Get("License-Expression")); expr != "" {
		return []string{expr}, "License-Expression"
	}

	var classifiers []string
	for _, c := range d.Header.Values("Classifier") {
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "License ::") {
			classifiers = append(classifiers, c)
		}
	}
	if len(classifiers) > 0 {
		return classifiers, "Classifier"
	}

	if lic := strings.TrimSpace(d.Header.Get("License")); lic != "" && !strings.EqualFold(lic, "UNKNOWN") {
		return []string{lic}, "License"
	}
	return nil, ""
}

// licenseDirs returns the directories that may hold license files for the distribution.
func (d *distribution) licenseDirs(sitePackages string) []string {
	if d.InfoDir == "" {
		return nil
	}
	dirs := []string{d.InfoDir, filepath.Join(d.InfoDir, "licenses")}
	data, err := os.ReadFile(filepath.Join(d.InfoDir, "top_level.txt"))
	if err != nil {
		return dirs
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, `/\`) {
			continue
		}
		dirs = append(dirs, filepath.Join(sitePackages, line))
	}
	return dirs
}

// parseDistMetadata reads the RFC 822 style header block of METADATA or PKG-INFO.
func parseDistMetadata(r io.Reader) (textproto.MIMEHeader, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	// A METADATA file without a body ends right after the headers.
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if header.Get("Name") == "" {
		return nil, errors.New("missing Name header")
	}
	return header, nil
}

func readDistMetadata(path string) (textproto.MIMEHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parseDistMetadata(f)
}

// SitePackagesIndex lazily scans one site-packages directory. It is safe for
// concurrent use and shared by the readers and sources that need installed metadata.
type SitePackagesIndex struct {
	dir string

	once   sync.Once
	dists  []*distribution
	byName map[string][]*distribution
	err    error
}

// NewSitePackagesIndex creates an index over dir. Nothing is read until first use.
func NewSitePackagesIndex(dir string) *SitePackagesIndex {
	return &SitePackagesIndex{dir: dir}
}

// Dir returns the indexed site-packages directory
func (ix *SitePackagesIndex) Dir() string {
	return ix.dir
}

func (ix *SitePackagesIndex) load() error {
	ix.once.Do(func() {
		ix.byName = make(map[string][]*distribution)

		entries, err := os.ReadDir(ix.dir)
		if err != nil {
			ix.err = err
			return
		}

		for _, e := range entries {
			name := e.Name()
			var dist *distribution
			switch {
			case e.IsDir() && strings.HasSuffix(name, ".dist-info"):
				dist = ix.readDist(filepath.Join(ix.dir, name), "METADATA")
			case e.IsDir() && strings.HasSuffix(name, ".egg-info"):
				dist = ix.readDist(filepath.Join(ix.dir, name), "PKG-INFO")
			case !e.IsDir() && strings.HasSuffix(name, ".egg-info"):
				header, err := readDistMetadata(filepath.Join(ix.dir, name))
				if err == nil {
					dist = &distribution{MetaPath: filepath.Join(ix.dir, name), Header: header}
				}
			}
			if dist == nil {
				continue
			}
			dist.Name = normalizePyName(dist.Header.Get("Name"))
			dist.Version = strings.TrimSpace(dist.Header.Get("Version"))
			ix.dists = append(ix.dists, dist)
			ix.byName[dist.Name] = append(ix.byName[dist.Name], dist)
		}
	})
	return ix.err
}

// readDist returns nil when the metadata file is missing or unreadable; such
// directories are leftovers of interrupted installs.
func (ix *SitePackagesIndex) readDist(infoDir, metaFile string) *distribution {
	path := filepath.Join(infoDir, metaFile)
	header, err := readDistMetadata(path)
	if err != nil {
		return nil
	}
	return &distribution{InfoDir: infoDir, MetaPath: path, Header: header}
}

// lookup finds the installed distribution for name. When both sides carry a
// version they must match exactly.
func (ix *SitePackagesIndex) lookup(name, version string) *distribution {
	if err := ix.load(); err != nil {
		return nil
	}
	for _, d := range ix.byName[normalizePyName(name)] {
		if version == "" || d.Version == "" || d.Version == version {
			return d
		}
	}
	return nil
}

func (ix *SitePackagesIndex) dependencies() ([]types.Dependency, error) {
	if err := ix.load(); err != nil {
		return nil, err
	}
	if len(ix.dists) == 0 {
		return nil, fmt.Errorf("no installed distributions in %s", ix.dir)
	}
	deps := make([]types.Dependency, 0, len(ix.dists))
	for _, d := range ix.dists {
		deps = append(deps, types.Dependency{
			Name:      d.Name,
			Version:   d.Version,
			Scope:     types.ScopeDirect,
			Ecosystem: types.EcosystemPyPI,
			Source:    "path:" + ix.dir,
			Manifest:  SitePackagesManifest,
		})
	}
	return deps, nil
}

// readInstalledEnvironment enumerates every distribution installed in dir.
// Without a lockfile there is no dependency graph, so every package is direct.
func readInstalledEnvironment(dir string) ([]types.Dependency, error) {
	return NewSitePackagesIndex(dir).dependencies()
}
