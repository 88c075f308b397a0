package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ConfigService implements the init and config commands and the exception
// writer used by fix.
type ConfigService struct {
	root  string
	store ConfigStore
}

// NewConfigService creates a ConfigService for the project at root
func NewConfigService(root string, store ConfigStore) *ConfigService {
	if store == nil {
		store = NewFileConfigStore(root)
	}
	return &ConfigService{root: root, store: store}
}

// Init writes a configuration seeded with the full rule list of a preset, so the
// rules can be edited in place. An existing file is kept unless force is set.
func (s *ConfigService) Init(preset string, force bool) (string, error) {
	policy, err := PresetPolicy(preset)
	if err != nil {
		return "", err
	}

	path := s.store.Path()
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("check %s: %w", path, err)
	}

	cfg := types.AuditorConfig{
		Preset: policy.Name,
		Policy: policy,
		Report: types.ReportConfig{Format: string(FormatTable)},
	}
	if err := s.store.Save(cfg); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// EffectiveConfig is the resolved configuration shown by config --show
type EffectiveConfig struct {
	Source           string               `json:"source" yaml:"source"`
	Policy           types.LicensePolicy  `json:"policy" yaml:"policy"`
	ExceptedPackages []string             `json:"excepted_packages,omitempty" yaml:"excepted_packages,omitempty"`
	Resolver         types.ResolverConfig `json:"resolver" yaml:"resolver"`
	Report           types.ReportConfig   `json:"report" yaml:"report"`
}

// Show resolves the policy the next check would use. preset and policyFile
// are the --preset and --policy overrides.
func (s *ConfigService) Show(preset, policyFile string) (*EffectiveConfig, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return nil, &PolicyConfigError{Source: s.store.Path(), Err: err}
	}
	source := s.store.Source()

	policy, err := BuildPolicy(PolicySources{
		Preset:       preset,
		Config:       cfg,
		ConfigSource: source,
		PolicyFile:   policyFile,
		Root:         s.root,
	})
	if err != nil {
		return nil, err
	}

	if source == "" {
		source = "(built-in default)"
	}
	return &EffectiveConfig{
		Source:           source,
		Policy:           policy,
		ExceptedPackages: ExceptionNames(&policy),
		Resolver:         cfg.Resolver,
		Report:           cfg.Report,
	}, nil
}

// Validate checks the configuration and returns every problem found.
// The error is non-nil only when the configuration could not be read at all.
func (s *ConfigService) Validate() ([]string, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return nil, &PolicyConfigError{Source: s.store.Path(), Err: err}
	}

	var problems []string
	if cfg.Preset != "" {
		if _, err := PresetPolicy(cfg.Preset); err != nil {
			problems = append(problems, fmt.Sprintf("preset %q is not one of %v", cfg.Preset, PresetNames()))
		}
	}
	if err := ValidatePolicy(&cfg.Policy); err != nil {
		problems = append(problems, PolicyProblems(err)...)
	}
	if cfg.Report.Format != "" {
		if _, err := ParseReportFormat(cfg.Report.Format); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if _, err := ApplyConfig(AuditOptions{Root: s.root}, cfg); err != nil {
		var pce *PolicyConfigError
		if errors.As(err, &pce) {
			problems = append(problems, pce.Err.Error())
		} else {
			problems = append(problems, err.Error())
		}
	}
	if cfg.ExceptionsFile != "" {
		if _, err := BuildPolicy(PolicySources{Config: types.AuditorConfig{ExceptionsFile: cfg.ExceptionsFile}, Root: s.root}); err != nil {
			problems = append(problems, PolicyProblems(err)...)
		}
	}
	if len(problems) > 0 {
		return problems, nil
	}

	// Each part is valid on its own; check the policy check would actually use.
	if _, err := BuildPolicy(PolicySources{Config: cfg, ConfigSource: s.store.Source(), Root: s.root}); err != nil {
		problems = append(problems, PolicyProblems(err)...)
	}
	return problems, nil
}

// AddExceptions appends exceptions to the config file policy, skipping any that
// already exist for the same name and version. Returns the number added.
func (s *ConfigService) AddExceptions(exceptions []types.PolicyException) (int, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return 0, &PolicyConfigError{Source: s.store.Path(), Err: err}
	}

	existing := make(map[string]bool, len(cfg.Policy.Exceptions))
	for _, e := range cfg.Policy.Exceptions {
		existing[exceptionKey(e)] = true
	}

	added := 0
	for _, e := range exceptions {
		if existing[exceptionKey(e)] {
			continue
		}
		existing[exceptionKey(e)] = true
		cfg.Policy.Exceptions = append(cfg.Policy.Exceptions, e)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := ValidatePolicy(&cfg.Policy); err != nil {
		return 0, &PolicyConfigError{Source: s.store.Path(), Err: err}
	}
	if err := s.store.Save(cfg); err != nil {
		return 0, fmt.Errorf("save %s: %w", s.store.Path(), err)
	}
	return added, nil
}

func exceptionKey(e types.PolicyException) string {
	return normalizePyName(e.Name) + "@" + e.Version
}
