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

// ============================================================================
// Presets
// ============================================================================

func TestPresetPolicy_AllPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			policy, err := PresetPolicy(name)
			if err != nil {
				t.Fatalf("PresetPolicy(%q) error = %v", name, err)
			}
			if policy.Name != name {
				t.Errorf("Name = %q, want %q", policy.Name, name)
			}
			if err := ValidatePolicy(&policy); err != nil {
				t.Errorf("preset %s does not validate: %v", name, err)
			}
		})
	}
}

func TestPresetPolicy_CaseInsensitive(t *testing.T) {
	if _, err := PresetPolicy("RED"); err != nil {
		t.Errorf("PresetPolicy(RED) error = %v", err)
	}
}

func TestPresetPolicy_Unknown(t *testing.T) {
	_, err := PresetPolicy("purple")
	if !IsPolicyConfigError(err) {
		t.Fatalf("err = %v, want PolicyConfigError", err)
	}
	if !strings.Contains(err.Error(), "green, yellow, red") {
		t.Errorf("error should list the presets: %v", err)
	}
}

func TestDefaultLicensePolicy(t *testing.T) {
	policy := DefaultLicensePolicy()
	yellow, _ := PresetPolicy(PresetYellow)

	if policy.Name != DefaultPolicyName {
		t.Errorf("Name = %q, want %q", policy.Name, DefaultPolicyName)
	}
	if len(policy.Rules) != len(yellow.Rules) || policy.Default != yellow.Default {
		t.Error("default policy should carry the yellow rules")
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestValidatePolicy_CollectsEveryProblem(t *testing.T) {
	policy := types.LicensePolicy{
		Default: "block",
		Rules: []types.PolicyRule{
			{ID: "a", License: "MIT", Action: types.PolicyAllow},
			{ID: "a", License: "ISC", Action: "permit"},
			{License: "  ", Action: types.PolicyDeny},
			{License: "GPL-[", Action: types.PolicyDeny},
		},
		Exceptions: []types.PolicyException{
			{Version: "1.0"},
			{Name: "left-pad", Version: ">= nope"},
			{Name: "lodash", Expires: "31/12/2030"},
		},
	}

	problems := PolicyProblems(ValidatePolicy(&policy))
	want := []string{
		`default action must be "allow", "warn", or "deny", got "block"`,
		"rule 2 (a): duplicate id, already used by rule 1",
		`rule 2 (a): action must be "allow", "warn", or "deny", got "permit"`,
		"rule 3: license pattern is empty",
		`rule 4: invalid license pattern "GPL-["`,
		"exception 1: package name is empty",
		`exception 2 (left-pad): invalid version constraint ">= nope"`,
		"exception 3 (lodash): expires must be YYYY-MM-DD",
	}
	if len(problems) != len(want) {
		t.Fatalf("got %d problems, want %d:\n%s", len(problems), len(want), strings.Join(problems, "\n"))
	}
	for i, w := range want {
		if !strings.HasPrefix(problems[i], w) {
			t.Errorf("problem %d = %q, want prefix %q", i, problems[i], w)
		}
	}
}

func TestValidatePolicy_ErrorFormat(t *testing.T) {
	one := ValidatePolicy(&types.LicensePolicy{Default: "nope"})
	if strings.Contains(one.Error(), "problems") {
		t.Errorf("a single problem should render without a header: %q", one.Error())
	}

	two := ValidatePolicy(&types.LicensePolicy{Default: "nope", Rules: []types.PolicyRule{{License: "MIT"}}})
	if !strings.HasPrefix(two.Error(), "2 problems: ") || strings.Contains(two.Error(), "\n") {
		t.Errorf("Error() = %q, want one line", two.Error())
	}
	if got := len(PolicyProblems(two)); got != 2 {
		t.Errorf("PolicyProblems() = %d entries, want 2", got)
	}
}

func TestValidatePolicy_AcceptsExceptionVersions(t *testing.T) {
	policy := types.LicensePolicy{Exceptions: []types.PolicyException{
		{Name: "a"},
		{Name: "b", Version: "*"},
		{Name: "c", Version: "2.31.0"},
		{Name: "d", Version: ">=1.2, <2"},
		{Name: "e", Version: "^4.17", Expires: "2030-01-31"},
	}}
	if err := ValidatePolicy(&policy); err != nil {
		t.Errorf("ValidatePolicy() = %v", err)
	}
}

func TestPolicyProblems_Nil(t *testing.T) {
	if got := PolicyProblems(nil); got != nil {
		t.Errorf("PolicyProblems(nil) = %v", got)
	}
	if got := PolicyProblems(errors.New("plain")); len(got) != 1 || got[0] != "plain" {
		t.Errorf("PolicyProblems(plain) = %v", got)
	}
}

// ============================================================================
// Loading
// ============================================================================

func TestLoadLicensePolicy_YAML(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "policy.yml", `name: corp
default: deny
rules:
  - id: ok
    license: "{MIT,Apache-2.0}"
    action: allow
exceptions:
  - name: internal-lib
    reason: owned by us
`)

	policy, err := LoadLicensePolicy(path)
	if err != nil {
		t.Fatalf("LoadLicensePolicy() error = %v", err)
	}
	if policy.Name != "corp" || policy.Default != types.PolicyDeny || len(policy.Rules) != 1 || len(policy.Exceptions) != 1 {
		t.Errorf("policy = %+v", policy)
	}
}

func TestLoadLicensePolicy_TOML(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "policy.toml", `name = "corp"
default = "warn"

[[rules]]
id = "copyleft"
license = "GPL-*"
action = "deny"
`)

	policy, err := LoadLicensePolicy(path)
	if err != nil {
		t.Fatalf("LoadLicensePolicy() error = %v", err)
	}
	if len(policy.Rules) != 1 || policy.Rules[0].Action != types.PolicyDeny {
		t.Errorf("rules = %+v", policy.Rules)
	}
}

func TestLoadLicensePolicy_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"missing":   filepath.Join(dir, "absent.yml"),
		"malformed": testutil.WriteFile(t, dir, "bad.yml", "rules: [unclosed"),
		"invalid":   testutil.WriteFile(t, dir, "invalid.yml", "default: maybe\nrules: []\n"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadLicensePolicy(path)
			var pce *PolicyConfigError
			if !errors.As(err, &pce) {
				t.Fatalf("err = %v, want *PolicyConfigError", err)
			}
			if pce.Source != path {
				t.Errorf("Source = %q, want %q", pce.Source, path)
			}
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Error("PolicyConfigError should match ErrInvalidPolicy")
			}
		})
	}
}

func TestLoadExceptionsFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "exceptions.yml", `exceptions:
  - name: certifi
    version: "*"
    reason: MPL reviewed by legal
`)
	excs, err := LoadExceptionsFile(path)
	if err != nil {
		t.Fatalf("LoadExceptionsFile() error = %v", err)
	}
	if len(excs) != 1 || excs[0].Name != "certifi" {
		t.Errorf("exceptions = %+v", excs)
	}
}

// ============================================================================
// Layering
// ============================================================================

func TestBuildPolicy_DefaultOnly(t *testing.T) {
	policy, err := BuildPolicy(PolicySources{})
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}
	if policy.Name != DefaultPolicyName || policy.Default != types.PolicyWarn {
		t.Errorf("policy = %s/%s", policy.Name, policy.Default)
	}
}

func TestBuildPolicy_FlagPresetOverridesConfigPreset(t *testing.T) {
	policy, err := BuildPolicy(PolicySources{
		Preset: PresetRed,
		Config: types.AuditorConfig{Preset: PresetGreen},
	})
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}
	if policy.Name != PresetRed {
		t.Errorf("Name = %q, want red", policy.Name)
	}
}

func TestBuildPolicy_Layers(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "exceptions.yml", "exceptions:\n  - name: from-file\n    reason: file\n")
	policyFile := testutil.WriteFile(t, root, "strict.yml", `name: strict
rules:
  - id: no-mpl
    license: MPL-*
    action: deny
exceptions:
  - name: from-policy
    reason: policy
`)

	policy, err := BuildPolicy(PolicySources{
		Config: types.AuditorConfig{
			Preset: PresetGreen,
			Policy: types.LicensePolicy{
				Default: types.PolicyDeny,
				Rules:   []types.PolicyRule{{License: "Artistic-*", Action: types.PolicyAllow}},
				Exceptions: []types.PolicyException{
					{Name: "from-config", Reason: "config"},
				},
			},
			ExceptionsFile: "exceptions.yml",
		},
		PolicyFile: policyFile,
		Root:       root,
	})
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}

	if policy.Name != "strict" {
		t.Errorf("Name = %q, want strict", policy.Name)
	}
	if policy.Default != types.PolicyDeny {
		t.Errorf("Default = %q, want config's deny", policy.Default)
	}

	var ids []string
	for _, r := range policy.Rules {
		ids = append(ids, r.ID)
	}
	// --policy rules, then config rules (positional id), then the preset.
	want := "no-mpl,rule-2,permissive,weak-copyleft,strong-copyleft"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("rule order = %s, want %s", got, want)
	}

	if got := strings.Join(ExceptionNames(&policy), ","); got != "from-config,from-file,from-policy" {
		t.Errorf("exceptions = %s", got)
	}
}

func TestBuildPolicy_TopRuleShadowsBaseID(t *testing.T) {
	root := t.TempDir()
	policyFile := testutil.WriteFile(t, root, "override.yml", `rules:
  - id: strong-copyleft
    license: "{GPL-*,AGPL-*}"
    action: warn
`)

	policy, err := BuildPolicy(PolicySources{
		Config: types.AuditorConfig{
			Preset: PresetYellow,
			Policy: types.LicensePolicy{Rules: []types.PolicyRule{
				{ID: "permissive", License: "MIT", Action: types.PolicyAllow},
			}},
		},
		PolicyFile: policyFile,
		Root:       root,
	})
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}

	var got []string
	for _, r := range policy.Rules {
		got = append(got, r.ID+"="+r.Action)
	}
	want := "strong-copyleft=warn,permissive=allow,weak-copyleft=warn"
	if strings.Join(got, ",") != want {
		t.Errorf("rules = %s, want %s", strings.Join(got, ","), want)
	}
	if policy.Rules[1].License != "MIT" {
		t.Errorf("config rule should replace the preset's permissive rule, got %q", policy.Rules[1].License)
	}
}

func TestBuildPolicy_FullPresetCopyInConfig(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			preset, _ := PresetPolicy(name)
			policy, err := BuildPolicy(PolicySources{Config: types.AuditorConfig{Policy: preset}})
			if err != nil {
				t.Fatalf("BuildPolicy() error = %v", err)
			}
			if len(policy.Rules) != len(preset.Rules) {
				t.Errorf("rules = %d, want %d (no duplicates from the default)", len(policy.Rules), len(preset.Rules))
			}
		})
	}
}

func TestBuildPolicy_DuplicateIDWithinLayer(t *testing.T) {
	_, err := BuildPolicy(PolicySources{
		Config: types.AuditorConfig{Policy: types.LicensePolicy{Rules: []types.PolicyRule{
			{ID: "mine", License: "MIT", Action: types.PolicyAllow},
			{ID: "mine", License: "ISC", Action: types.PolicyAllow},
		}}},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate id") {
		t.Fatalf("err = %v, want duplicate id", err)
	}
}

func TestBuildPolicy_PositionalIDAvoidsNamedRule(t *testing.T) {
	policy, err := BuildPolicy(PolicySources{
		Config: types.AuditorConfig{Policy: types.LicensePolicy{Rules: []types.PolicyRule{
			{ID: "rule-2", License: "MIT", Action: types.PolicyAllow},
			{License: "ISC", Action: types.PolicyAllow},
		}}},
	})
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}
	if policy.Rules[1].ID != "rule-2-2" {
		t.Errorf("positional id = %q, want rule-2-2", policy.Rules[1].ID)
	}
}

func TestBuildPolicy_InvalidConfigNamesSource(t *testing.T) {
	_, err := BuildPolicy(PolicySources{
		Config:       types.AuditorConfig{Policy: types.LicensePolicy{Default: "nah"}},
		ConfigSource: "/proj/pyproject.toml",
	})
	var pce *PolicyConfigError
	if !errors.As(err, &pce) || pce.Source != "/proj/pyproject.toml" {
		t.Fatalf("err = %v, want PolicyConfigError from pyproject.toml", err)
	}
}

func TestBuildPolicy_MissingExceptionsFile(t *testing.T) {
	_, err := BuildPolicy(PolicySources{
		Config: types.AuditorConfig{ExceptionsFile: "nope.yml"},
		Root:   t.TempDir(),
	})
	if !IsPolicyConfigError(err) {
		t.Fatalf("err = %v, want PolicyConfigError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err should wrap os.ErrNotExist: %v", err)
	}
}
