package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/EmundoT/license-auditor/internal/types"
)

// Policy preset names accepted by init and --preset.
const (
	PresetGreen  = "green"
	PresetYellow = "yellow"
	PresetRed    = "red"
)

// DefaultPolicyName is the name of the built-in policy used when nothing else is configured
const DefaultPolicyName = "default"

// exceptionDateLayout is the format of PolicyException.Expires
const exceptionDateLayout = "2006-01-02"

var permissiveLicenses = "{MIT,MIT-0,ISC,0BSD,BSD-1-Clause,BSD-2-Clause,BSD-3-Clause,Apache-2.0,Zlib,Unlicense,CC0-1.0,BSL-1.0,PSF-2.0,Python-2.0,WTFPL,X11,NCSA,UPL-1.0,BlueOak-1.0.0}"

var presets = map[string]func() types.LicensePolicy{
	PresetGreen: func() types.LicensePolicy {
		return types.LicensePolicy{
			Name:        PresetGreen,
			Description: "Permissive and weak copyleft licenses allowed; strong copyleft needs review",
			Default:     types.PolicyWarn,
			Rules: []types.PolicyRule{
				{ID: "permissive", License: permissiveLicenses, Action: types.PolicyAllow},
				{ID: "weak-copyleft", License: "{LGPL-*,MPL-*,EPL-*,CDDL-*}", Action: types.PolicyAllow},
				{ID: "strong-copyleft", License: "{GPL-*,AGPL-*,SSPL-*,EUPL-*,OSL-*}", Action: types.PolicyWarn},
			},
		}
	},
	PresetYellow: func() types.LicensePolicy {
		return types.LicensePolicy{
			Name:        PresetYellow,
			Description: "Permissive licenses allowed, weak copyleft needs review, strong copyleft denied",
			Default:     types.PolicyWarn,
			Rules: []types.PolicyRule{
				{ID: "permissive", License: permissiveLicenses, Action: types.PolicyAllow},
				{ID: "weak-copyleft", License: "{LGPL-*,MPL-*,EPL-*,CDDL-*}", Action: types.PolicyWarn},
				{ID: "strong-copyleft", License: "{GPL-*,AGPL-*,SSPL-*,EUPL-*,OSL-*}", Action: types.PolicyDeny},
			},
		}
	},
	PresetRed: func() types.LicensePolicy {
		return types.LicensePolicy{
			Name:        PresetRed,
			Description: "Only well-known permissive licenses allowed; everything else denied",
			Default:     types.PolicyDeny,
			Rules: []types.PolicyRule{
				{ID: "permissive", License: "{MIT,ISC,BSD-2-Clause,BSD-3-Clause,Apache-2.0}", Action: types.PolicyAllow},
				{ID: "unknown", License: types.UnknownPattern, Action: types.PolicyDeny},
			},
		}
	},
}

// PresetNames returns the preset names in a stable order
func PresetNames() []string {
	return []string{PresetGreen, PresetYellow, PresetRed}
}

// PresetPolicy returns the named built-in policy
func PresetPolicy(name string) (types.LicensePolicy, error) {
	build, ok := presets[strings.ToLower(name)]
	if !ok {
		return types.LicensePolicy{}, &PolicyConfigError{
			Source: "preset",
			Err:    fmt.Errorf("unknown preset %q (expected %s)", name, strings.Join(PresetNames(), ", ")),
		}
	}
	return build(), nil
}

// DefaultLicensePolicy returns the policy used when no preset, config or policy file is given.
// It is the balanced preset under the "default" name.
func DefaultLicensePolicy() types.LicensePolicy {
	policy := presets[PresetYellow]()
	policy.Name = DefaultPolicyName
	return policy
}

// LoadLicensePolicy reads a standalone policy file. Files ending in .toml are
// decoded as TOML, everything else as YAML. The document is the policy itself
// (name, default, rules, exceptions).
func LoadLicensePolicy(path string) (types.LicensePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.LicensePolicy{}, &PolicyConfigError{Source: path, Err: err}
	}

	var policy types.LicensePolicy
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &policy)
	} else {
		err = yaml.Unmarshal(data, &policy)
	}
	if err != nil {
		return types.LicensePolicy{}, &PolicyConfigError{Source: path, Err: fmt.Errorf("parse: %w", err)}
	}

	if err := ValidatePolicy(&policy); err != nil {
		return types.LicensePolicy{}, &PolicyConfigError{Source: path, Err: err}
	}
	return policy, nil
}

// LoadExceptionsFile reads a standalone YAML exceptions file
func LoadExceptionsFile(path string) ([]types.PolicyException, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PolicyConfigError{Source: path, Err: err}
	}
	var doc types.ExceptionsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &PolicyConfigError{Source: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return doc.Exceptions, nil
}

// PolicySources names the inputs BuildPolicy layers, lowest precedence first
// after the built-in default.
type PolicySources struct {
	// Preset overrides the config file preset when set (--preset).
	Preset string
	// Config is the project configuration; its policy section layers over the preset.
	Config types.AuditorConfig
	// ConfigSource names the config file for error messages.
	ConfigSource string
	// PolicyFile is an explicit policy file (--policy) layered over the config policy.
	PolicyFile string
	// Root resolves a relative Config.ExceptionsFile.
	Root string
}

// BuildPolicy assembles the effective policy:
// built-in default < preset < config file policy < --policy file.
// Higher layers put their rules first, shadow lower rules with the same id,
// replace the default action and name when set, and add their exceptions.
// Duplicate rule ids are an error only within one layer.
func BuildPolicy(src PolicySources) (types.LicensePolicy, error) {
	policy := DefaultLicensePolicy()

	preset := src.Preset
	if preset == "" {
		preset = src.Config.Preset
	}
	if preset != "" {
		p, err := PresetPolicy(preset)
		if err != nil {
			return types.LicensePolicy{}, err
		}
		policy = p
	}

	configSource := src.ConfigSource
	if configSource == "" {
		configSource = ConfigFile
	}
	if err := ValidatePolicy(&src.Config.Policy); err != nil {
		return types.LicensePolicy{}, &PolicyConfigError{Source: configSource, Err: err}
	}
	policy = layerPolicy(policy, src.Config.Policy)

	if src.Config.ExceptionsFile != "" {
		path := src.Config.ExceptionsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(src.Root, path)
		}
		exceptions, err := LoadExceptionsFile(path)
		if err != nil {
			return types.LicensePolicy{}, err
		}
		policy.Exceptions = append(policy.Exceptions, exceptions...)
	}

	if src.PolicyFile != "" {
		p, err := LoadLicensePolicy(src.PolicyFile)
		if err != nil {
			return types.LicensePolicy{}, err
		}
		policy = layerPolicy(policy, p)
	}

	normalizePolicy(&policy)
	if err := ValidatePolicy(&policy); err != nil {
		return types.LicensePolicy{}, &PolicyConfigError{Source: policy.Name, Err: err}
	}
	return policy, nil
}

// layerPolicy puts top over base
func layerPolicy(base, top types.LicensePolicy) types.LicensePolicy {
	out := base
	if top.Name != "" {
		out.Name = top.Name
	}
	if top.Description != "" {
		out.Description = top.Description
	}
	if top.Default != "" {
		out.Default = top.Default
	}
	if len(top.Rules) > 0 {
		shadowed := make(map[string]bool, len(top.Rules))
		for _, r := range top.Rules {
			if r.ID != "" {
				shadowed[r.ID] = true
			}
		}
		rules := append([]types.PolicyRule{}, top.Rules...)
		for _, r := range base.Rules {
			if r.ID == "" || !shadowed[r.ID] {
				rules = append(rules, r)
			}
		}
		out.Rules = rules
	}
	if len(top.Exceptions) > 0 {
		out.Exceptions = append(append([]types.PolicyException{}, base.Exceptions...), top.Exceptions...)
	}
	return out
}

// normalizePolicy fills defaults: warn for the default action and
// positional ids ("rule-3") for rules without one. A positional id already
// taken by a named rule gets a suffix ("rule-3-2").
func normalizePolicy(policy *types.LicensePolicy) {
	if policy.Default == "" {
		policy.Default = types.PolicyWarn
	}
	if policy.Name == "" {
		policy.Name = DefaultPolicyName
	}
	taken := make(map[string]bool, len(policy.Rules))
	for _, r := range policy.Rules {
		if r.ID != "" {
			taken[r.ID] = true
		}
	}
	for i := range policy.Rules {
		if policy.Rules[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("rule-%d", i+1)
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("rule-%d-%d", i+1, n)
		}
		taken[id] = true
		policy.Rules[i].ID = id
	}
}

func validAction(action string) bool {
	switch action {
	case types.PolicyAllow, types.PolicyDeny, types.PolicyWarn:
		return true
	}
	return false
}

// isVersionConstraint reports whether an exception version is a range rather than an exact version
func isVersionConstraint(v string) bool {
	return strings.ContainsAny(v, "<>=~^,|! ")
}

// ValidatePolicy checks a policy for every problem at once and returns them as a
// *multierror.Error, or nil when the policy is valid.
func ValidatePolicy(policy *types.LicensePolicy) error {
	var result *multierror.Error

	if policy.Default != "" && !validAction(policy.Default) {
		result = multierror.Append(result, fmt.Errorf("default action must be \"allow\", \"warn\", or \"deny\", got %q", policy.Default))
	}

	seenIDs := make(map[string]int)
	for i, rule := range policy.Rules {
		label := fmt.Sprintf("rule %d", i+1)
		if rule.ID != "" {
			label = fmt.Sprintf("rule %d (%s)", i+1, rule.ID)
			if prev, ok := seenIDs[rule.ID]; ok {
				result = multierror.Append(result, fmt.Errorf("%s: duplicate id, already used by rule %d", label, prev))
			} else {
				seenIDs[rule.ID] = i + 1
			}
		}
		if !validAction(rule.Action) {
			result = multierror.Append(result, fmt.Errorf("%s: action must be \"allow\", \"warn\", or \"deny\", got %q", label, rule.Action))
		}
		pattern := strings.TrimSpace(rule.License)
		if pattern == "" {
			result = multierror.Append(result, fmt.Errorf("%s: license pattern is empty", label))
		} else if !doublestar.ValidatePattern(strings.ToLower(pattern)) {
			result = multierror.Append(result, fmt.Errorf("%s: invalid license pattern %q", label, rule.License))
		}
	}

	for i, exc := range policy.Exceptions {
		label := fmt.Sprintf("exception %d", i+1)
		if exc.Name != "" {
			label = fmt.Sprintf("exception %d (%s)", i+1, exc.Name)
		} else {
			result = multierror.Append(result, fmt.Errorf("%s: package name is empty", label))
		}
		if v := strings.TrimSpace(exc.Version); v != "" && v != "*" && isVersionConstraint(v) {
			if _, err := semver.NewConstraint(v); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: invalid version constraint %q: %w", label, exc.Version, err))
			}
		}
		if exc.Expires != "" {
			if _, err := time.Parse(exceptionDateLayout, exc.Expires); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: expires must be YYYY-MM-DD, got %q", label, exc.Expires))
			}
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = policyErrorFormat
	return result
}

// policyErrorFormat renders aggregated validation errors on one line.
// config --validate lists them separately through PolicyProblems.
func policyErrorFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d problems: %s", len(errs), strings.Join(msgs, "; "))
}

// PolicyProblems flattens a validation error into its individual messages
func PolicyProblems(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			out[i] = e.Error()
		}
		return out
	}
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}

// ExceptionNames returns the sorted package names with exceptions
func ExceptionNames(policy *types.LicensePolicy) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range policy.Exceptions {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}
