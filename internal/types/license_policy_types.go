package types

// Policy actions a rule can take.
const (
	PolicyAllow = "allow"
	PolicyDeny  = "deny"
	PolicyWarn  = "warn"
)

// UnknownPattern is the rule pattern that targets licenses nothing could recognize.
const UnknownPattern = "unknown"

// LicensePolicy is an ordered rule list plus package exceptions.
// LicensePolicy is loaded from the policy section of .license-auditor.yml
// and evaluated by LicensePolicyService.
type LicensePolicy struct {
	Name        string            `yaml:"name,omitempty" toml:"name" json:"name,omitempty"`
	Description string            `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
	Default     string            `yaml:"default,omitempty" toml:"default" json:"default,omitempty"`
	Rules       []PolicyRule      `yaml:"rules" toml:"rules" json:"rules"`
	Exceptions  []PolicyException `yaml:"exceptions,omitempty" toml:"exceptions" json:"exceptions,omitempty"`
}

// PolicyRule maps a license pattern to an action.
// License is a case-insensitive glob ("GPL-*", "{AGPL,SSPL}-*") or the literal "unknown".
type PolicyRule struct {
	ID      string `yaml:"id,omitempty" toml:"id" json:"id,omitempty"`
	License string `yaml:"license" toml:"license" json:"license"`
	Action  string `yaml:"action" toml:"action" json:"action"`
}

// PolicyException exempts a package from classification.
// Version is an exact version, "*" or empty for any, or a semver constraint such as ">=1.2, <2".
// Expires is an optional YYYY-MM-DD date after which the exception no longer applies.
type PolicyException struct {
	Name    string `yaml:"name" toml:"name" json:"name"`
	Version string `yaml:"version,omitempty" toml:"version" json:"version,omitempty"`
	Reason  string `yaml:"reason" toml:"reason" json:"reason"`
	Expires string `yaml:"expires,omitempty" toml:"expires" json:"expires,omitempty"`
}

// Classification is the outcome of evaluating a dependency against a policy.
type Classification string

// Classification values.
const (
	ClassAllowed Classification = "allowed"
	ClassDenied  Classification = "denied"
	ClassWarn    Classification = "warn"
	ClassUnknown Classification = "unknown"
)

// ClassificationForAction maps a policy action onto a classification.
func ClassificationForAction(action string) Classification {
	switch action {
	case PolicyAllow:
		return ClassAllowed
	case PolicyDeny:
		return ClassDenied
	case PolicyWarn:
		return ClassWarn
	default:
		return ClassUnknown
	}
}

// Verdict is the classification of a single dependency.
type Verdict struct {
	Dependency     Dependency        `json:"dependency"`
	Record         LicenseRecord     `json:"-"`
	Normalized     NormalizedLicense `json:"normalized"`
	Classification Classification    `json:"classification"`
	// RuleMatched is the deciding rule id, "exception:<name>", or empty when the default applied.
	RuleMatched string `json:"rule_matched,omitempty"`
	Reason      string `json:"reason"`
}
