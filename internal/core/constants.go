package core

import "time"

// File and directory names
const (
	// ConfigFile is the project configuration filename
	ConfigFile = ".license-auditor.yml"
	// PyprojectFile holds the [tool.license-auditor] table as an alternative config source
	PyprojectFile = "pyproject.toml"
	// PyprojectTable is the pyproject.toml table name read for configuration
	PyprojectTable = "license-auditor"
	// EnvFile is loaded into the process environment at startup
	EnvFile = ".env"
	// CacheDirName is the directory under os.UserCacheDir() holding resolved records
	CacheDirName = "license-auditor"
)

// Lockfile names, in the order they are read.
const (
	UVLockFile     = "uv.lock"
	PoetryLockFile = "poetry.lock"
	NPMLockFile    = "package-lock.json"
)

// LockfileNames lists every recognized lockfile. The watch loop observes these too.
var LockfileNames = []string{UVLockFile, PoetryLockFile, NPMLockFile}

// Resolver defaults
const (
	// DefaultResolveTimeout bounds a single source attempt for one dependency
	DefaultResolveTimeout = 10 * time.Second
	// MaxResolveWorkers caps the resolver worker pool
	MaxResolveWorkers = 8
	// recordCacheSize is the number of records kept in memory in front of the disk cache
	recordCacheSize = 1024
)

// Report schema
const (
	// ReportSchemaVersion is the schema_version field of JSON reports
	ReportSchemaVersion = "1.0"
	// ToolName identifies the tool in SBOM metadata and report output
	ToolName = "license-auditor"
)

// Environment variables read by the registry and hosting API clients.
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGitLabToken = "GITLAB_TOKEN"
	EnvPyPIURL     = "LICENSE_AUDITOR_PYPI_URL"
	EnvNPMURL      = "LICENSE_AUDITOR_NPM_URL"
)

// LicenseFileNames lists standard filenames checked when searching an installed package for license text.
// LicenseFileNames entries are checked in order when detecting licenses via file content.
var LicenseFileNames = []string{
	"LICENSE",
	"LICENSE.txt",
	"LICENSE.md",
	"LICENSE.rst",
	"LICENCE",
	"LICENCE.txt",
	"COPYING",
	"COPYING.txt",
	"LICENSE-MIT",
	"LICENSE-APACHE",
	"NOTICE",
}
