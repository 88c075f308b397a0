package types

// AuditorConfig is the on-disk configuration read from .license-auditor.yml
// or the [tool.license-auditor] table of pyproject.toml.
type AuditorConfig struct {
	// Preset seeds the policy from a built-in preset before Policy is applied.
	Preset string        `yaml:"preset,omitempty" toml:"preset"`
	Policy LicensePolicy `yaml:"policy" toml:"policy"`
	// ExceptionsFile points at a separate YAML file of exceptions, relative to the project root.
	ExceptionsFile string         `yaml:"exceptions_file,omitempty" toml:"exceptions_file"`
	Resolver       ResolverConfig `yaml:"resolver,omitempty" toml:"resolver"`
	Report         ReportConfig   `yaml:"report,omitempty" toml:"report"`
}

// ResolverConfig tunes metadata resolution.
type ResolverConfig struct {
	Offline bool `yaml:"offline,omitempty" toml:"offline"`
	NoCache bool `yaml:"no_cache,omitempty" toml:"no_cache"`
	Workers int  `yaml:"workers,omitempty" toml:"workers"`
	// Timeout is a Go duration string, e.g. "10s".
	Timeout      string `yaml:"timeout,omitempty" toml:"timeout"`
	SitePackages string `yaml:"site_packages,omitempty" toml:"site_packages"`
}

// ReportConfig holds report defaults that CLI flags override.
type ReportConfig struct {
	Format        string `yaml:"format,omitempty" toml:"format"`
	FailOnUnknown bool   `yaml:"fail_on_unknown,omitempty" toml:"fail_on_unknown"`
	FailOnWarn    bool   `yaml:"fail_on_warn,omitempty" toml:"fail_on_warn"`
}

// ExceptionsFile is the document shape of a standalone exceptions file.
type ExceptionsFile struct {
	Exceptions []PolicyException `yaml:"exceptions"`
}
