package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/EmundoT/license-auditor/internal/license"
	"github.com/EmundoT/license-auditor/internal/types"
)

// AuditOptions configures one audit run. Zero values fall back to the
// project configuration and then to built-in defaults.
type AuditOptions struct {
	Root string // Project root (default ".")

	PolicyFile string // --policy; layered over the config policy
	Preset     string // --preset; replaces the config preset

	Offline      bool          // Disable network sources
	NoCache      bool          // Disable the on-disk record cache
	CacheDir     string        // Override the on-disk cache directory (empty = user cache dir)
	Workers      int           // Resolver concurrency (0 = NumCPU capped at MaxResolveWorkers)
	Timeout      time.Duration // Per-attempt timeout (0 = config or DefaultResolveTimeout)
	SitePackages string        // Installed environment (empty = auto-detect .venv)

	FailOnUnknown bool // Count unknown verdicts as failures in the summary
	FailOnWarn    bool // Count warn verdicts as failures in the summary

	// Config is the already-loaded project configuration. Nil loads it from Root.
	Config *types.AuditorConfig
}

// AuditServiceInterface defines the contract for running a license audit.
type AuditServiceInterface interface {
	// Run reads the manifests, resolves and normalizes every license, classifies each
	// dependency and returns the report. Structural problems (missing manifest,
	// invalid policy) are returned as errors; per-dependency problems become unknown verdicts.
	// ctx cancellation is honoured between stages and by the resolver pool.
	Run(ctx context.Context, opts AuditOptions) (*types.AuditReport, error)
}

// Compile-time interface satisfaction check for Auditor.
var _ AuditServiceInterface = (*Auditor)(nil)

// Auditor sequences the manifest reader, resolver, normalizer and policy classifier.
type Auditor struct {
	ui         UICallback
	httpClient *http.Client
	now        func() time.Time
	// extraSources are tried after the built-in sources (tests inject fakes here).
	extraSources []LicenseSource
	// cache overrides the on-disk cache when set.
	cache RecordCache
}

// NewAuditor creates an Auditor reporting diagnostics through ui.
func NewAuditor(ui UICallback) *Auditor {
	if ui == nil {
		ui = &SilentUICallback{}
	}
	return &Auditor{
		ui:         ui,
		httpClient: NewRegistryHTTPClient(),
		now:        time.Now,
	}
}

// LoadConfig reads the project configuration under root.
// A malformed file is reported as a *PolicyConfigError.
func LoadConfig(root string) (types.AuditorConfig, string, error) {
	store := NewFileConfigStore(root)
	cfg, err := store.Load()
	if err != nil {
		return types.AuditorConfig{}, "", &PolicyConfigError{Source: store.Path(), Err: err}
	}
	return cfg, store.Source(), nil
}

// ApplyConfig fills unset options from the project configuration.
// Flags always win; boolean flags can only switch a behaviour on.
func ApplyConfig(opts AuditOptions, cfg types.AuditorConfig) (AuditOptions, error) {
	opts.Offline = opts.Offline || cfg.Resolver.Offline
	opts.NoCache = opts.NoCache || cfg.Resolver.NoCache
	opts.FailOnUnknown = opts.FailOnUnknown || cfg.Report.FailOnUnknown
	opts.FailOnWarn = opts.FailOnWarn || cfg.Report.FailOnWarn
	if opts.Workers <= 0 {
		opts.Workers = cfg.Resolver.Workers
	}
	if opts.SitePackages == "" && cfg.Resolver.SitePackages != "" {
		opts.SitePackages = cfg.Resolver.SitePackages
		if !filepath.IsAbs(opts.SitePackages) {
			opts.SitePackages = filepath.Join(opts.Root, opts.SitePackages)
		}
	}
	if opts.Timeout <= 0 && cfg.Resolver.Timeout != "" {
		d, err := time.ParseDuration(cfg.Resolver.Timeout)
		if err != nil || d <= 0 {
			return opts, &PolicyConfigError{Source: ConfigFile, Err: fmt.Errorf("resolver.timeout %q: not a positive duration", cfg.Resolver.Timeout)}
		}
		opts.Timeout = d
	}
	return opts, nil
}

// Run executes one audit.
func (a *Auditor) Run(ctx context.Context, opts AuditOptions) (*types.AuditReport, error) {
	if opts.Root == "" {
		opts.Root = "."
	}

	configSource := ""
	if opts.Config == nil {
		cfg, source, err := LoadConfig(opts.Root)
		if err != nil {
			return nil, err
		}
		opts.Config = &cfg
		configSource = source
	}
	opts, err := ApplyConfig(opts, *opts.Config)
	if err != nil {
		return nil, err
	}

	policy, err := BuildPolicy(PolicySources{
		Preset:       opts.Preset,
		Config:       *opts.Config,
		ConfigSource: configSource,
		PolicyFile:   opts.PolicyFile,
		Root:         opts.Root,
	})
	if err != nil {
		return nil, err
	}
	classifier := NewLicensePolicyService(&policy)

	// Stage 1: manifests
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit cancelled: %w", err)
	}
	set, err := NewManifestReader(opts.Root, opts.SitePackages).Read()
	if err != nil {
		return nil, err
	}
	if a.ui.GetOutputMode() == OutputVerbose {
		a.ui.ShowInfo(fmt.Sprintf("Read %s from %v", Pluralize(len(set.Dependencies), "dependency", "dependencies"), set.Files))
	}

	// Stage 2: resolution
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit cancelled: %w", err)
	}
	resolver := NewResolver(a.buildSources(opts), ResolverOptions{
		Workers: opts.Workers,
		Timeout: opts.Timeout,
		Cache:   a.recordCache(opts),
	}, a.ui)
	records, err := resolver.ResolveAll(ctx, set.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("audit cancelled: %w", err)
	}

	// Stage 3: normalization and classification
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit cancelled: %w", err)
	}
	verdicts := make([]types.Verdict, len(set.Dependencies))
	for i, dep := range set.Dependencies {
		normalized := license.Normalize(records[i].RawLicense)
		verdicts[i] = classifier.Classify(dep, records[i], normalized)
	}

	return &types.AuditReport{
		SchemaVersion: ReportSchemaVersion,
		GeneratedAt:   a.now().UTC().Format(time.RFC3339),
		Project:       ProjectName(opts.Root),
		Manifests:     set.Files,
		PolicyName:    classifier.PolicyName(),
		Summary:       BuildSummary(verdicts, opts.FailOnUnknown, opts.FailOnWarn),
		Verdicts:      verdicts,
	}, nil
}

// buildSources returns the resolution strategies in priority order.
// Offline runs never touch the network.
func (a *Auditor) buildSources(opts AuditOptions) []LicenseSource {
	sources := []LicenseSource{LockfileSource{}}

	var index *SitePackagesIndex
	dir := opts.SitePackages
	if dir == "" {
		dir = FindSitePackages(opts.Root)
	}
	if dir != "" {
		index = NewSitePackagesIndex(dir)
		sources = append(sources, NewSitePackagesSource(index))
	}

	var nodeModules *NodeModulesSource
	if info, err := os.Stat(filepath.Join(opts.Root, "node_modules")); err == nil && info.IsDir() {
		nodeModules = NewNodeModulesSource(opts.Root)
		sources = append(sources, nodeModules)
	}

	if index != nil || nodeModules != nil {
		sources = append(sources, NewLicenseFileSource(index, nodeModules))
	}

	if !opts.Offline {
		sources = append(sources,
			NewRepositorySource(a.httpClient),
			NewPyPIRegistry(a.httpClient, ""),
			NewNPMRegistry(a.httpClient, ""),
		)
	}

	return append(sources, a.extraSources...)
}

// recordCache returns the persistent cache, or nil when disabled or unavailable.
func (a *Auditor) recordCache(opts AuditOptions) RecordCache {
	if opts.NoCache {
		return nil
	}
	if a.cache != nil {
		return a.cache
	}
	cache, err := NewFileRecordCache(opts.CacheDir)
	if err != nil {
		a.ui.ShowWarning("Cache Disabled", err.Error())
		return nil
	}
	return cache
}

// ExitCode maps a report onto the process exit status: 0 when nothing is denied
// (and nothing unknown or warn when the matching flag is set), 1 otherwise.
func ExitCode(report *types.AuditReport, failOnUnknown, failOnWarn bool) int {
	if BuildSummary(report.Verdicts, failOnUnknown, failOnWarn).Result == types.AuditResultFail {
		return ExitPolicyViolation
	}
	return ExitSuccess
}
