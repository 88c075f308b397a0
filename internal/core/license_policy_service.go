package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/EmundoT/license-auditor/internal/types"
)

// LicensePolicyServiceInterface defines the contract for license policy evaluation.
type LicensePolicyServiceInterface interface {
	// Evaluate returns the action and deciding rule id for one canonical identifier.
	// ruleID is empty when the default action applied.
	Evaluate(id string) (action, ruleID string)

	// Classify produces the verdict for one dependency.
	Classify(dep types.Dependency, record types.LicenseRecord, normalized types.NormalizedLicense) types.Verdict

	// PolicyName returns the name of the evaluated policy.
	PolicyName() string
}

// Compile-time interface satisfaction check.
var _ LicensePolicyServiceInterface = (*LicensePolicyService)(nil)

// compiledRule is a PolicyRule with its pattern lowercased for case-insensitive matching
type compiledRule struct {
	types.PolicyRule
	pattern string
	unknown bool // pattern is literally "unknown"
}

// LicensePolicyService evaluates normalized licenses against a LicensePolicy.
type LicensePolicyService struct {
	policy types.LicensePolicy
	rules  []compiledRule
	now    func() time.Time
}

// NewLicensePolicyService creates a LicensePolicyService from a validated policy.
func NewLicensePolicyService(policy *types.LicensePolicy) *LicensePolicyService {
	p := *policy
	normalizePolicy(&p)

	rules := make([]compiledRule, len(p.Rules))
	for i, r := range p.Rules {
		pattern := strings.ToLower(strings.TrimSpace(r.License))
		rules[i] = compiledRule{
			PolicyRule: r,
			pattern:    pattern,
			unknown:    pattern == types.UnknownPattern,
		}
	}
	return &LicensePolicyService{policy: p, rules: rules, now: time.Now}
}

// PolicyName returns the name of the evaluated policy.
func (s *LicensePolicyService) PolicyName() string {
	return s.policy.Name
}

// Evaluate scans the rules in declaration order; the first match wins.
func (s *LicensePolicyService) Evaluate(id string) (string, string) {
	lower := strings.ToLower(id)
	for _, r := range s.rules {
		if r.unknown {
			continue
		}
		// Patterns are validated on load; a match error counts as no match.
		if ok, err := doublestar.Match(r.pattern, lower); err == nil && ok {
			return r.Action, r.ID
		}
	}
	return s.policy.Default, ""
}

// unknownRule returns the first rule whose pattern is literally "unknown"
func (s *LicensePolicyService) unknownRule() *compiledRule {
	for i := range s.rules {
		if s.rules[i].unknown {
			return &s.rules[i]
		}
	}
	return nil
}

// outcome is the classification of one expression node
type outcome struct {
	class  types.Classification
	ruleID string
	// license is the leaf that decided the outcome ("" for an unknown leaf)
	license string
	// raw is the unrecognized operand text of an unknown leaf
	raw string
}

// exceptionRulePrefix marks RuleMatched values decided by a package exception
const exceptionRulePrefix = "exception:"

// classificationRank orders outcomes for disjunctions (max) and conjunctions (min).
var classificationRank = map[types.Classification]int{
	types.ClassDenied:  0,
	types.ClassUnknown: 1,
	types.ClassWarn:    2,
	types.ClassAllowed: 3,
}

func (s *LicensePolicyService) evalLeaf(n *types.LicenseNode) outcome {
	if !n.Known() {
		if r := s.unknownRule(); r != nil {
			return outcome{class: types.ClassificationForAction(r.Action), ruleID: r.ID, raw: n.Raw}
		}
		return outcome{class: types.ClassUnknown, raw: n.Raw}
	}
	action, ruleID := s.Evaluate(n.ID)
	return outcome{class: types.ClassificationForAction(action), ruleID: ruleID, license: n.ID}
}

// evalNode applies the disjunctive (best operand) and conjunctive (worst operand) laws.
// Ties keep the first operand.
func (s *LicensePolicyService) evalNode(n *types.LicenseNode) outcome {
	if n == nil {
		return s.evalLeaf(&types.LicenseNode{})
	}
	if n.Op == types.OpLeaf || len(n.Children) == 0 {
		return s.evalLeaf(n)
	}

	best := s.evalNode(n.Children[0])
	for _, child := range n.Children[1:] {
		o := s.evalNode(child)
		switch n.Op {
		case types.OpOr:
			if classificationRank[o.class] > classificationRank[best.class] {
				best = o
			}
		case types.OpAnd:
			if classificationRank[o.class] < classificationRank[best.class] {
				best = o
			}
		}
	}
	return best
}

// matchException returns the first live exception covering dep
func (s *LicensePolicyService) matchException(dep types.Dependency) *types.PolicyException {
	today := s.now().UTC()
	for i := range s.policy.Exceptions {
		exc := &s.policy.Exceptions[i]
		if !exceptionNameMatches(exc.Name, dep) {
			continue
		}
		if !exceptionVersionMatches(exc.Version, dep.Version) {
			continue
		}
		if exc.Expires != "" {
			expires, err := time.Parse(exceptionDateLayout, exc.Expires)
			// An exception is valid through the whole expiry day.
			if err != nil || !today.Before(expires.AddDate(0, 0, 1)) {
				continue
			}
		}
		return exc
	}
	return nil
}

func exceptionNameMatches(name string, dep types.Dependency) bool {
	if dep.Ecosystem == types.EcosystemPyPI {
		return normalizePyName(name) == normalizePyName(dep.Name)
	}
	return strings.EqualFold(strings.TrimSpace(name), dep.Name)
}

// exceptionVersionMatches accepts empty or "*" for any version, a semver
// constraint for ranges, and exact string equality otherwise.
func exceptionVersionMatches(want, have string) bool {
	want = strings.TrimSpace(want)
	if want == "" || want == "*" {
		return true
	}
	if isVersionConstraint(want) {
		c, err := semver.NewConstraint(want)
		if err != nil {
			return false
		}
		v, err := semver.NewVersion(have)
		if err != nil {
			return false
		}
		return c.Check(v)
	}
	return want == have
}

// Classify produces the verdict for one dependency.
// Exceptions win over rules; then the normalized expression tree is evaluated.
func (s *LicensePolicyService) Classify(dep types.Dependency, record types.LicenseRecord, normalized types.NormalizedLicense) types.Verdict {
	verdict := types.Verdict{
		Dependency: dep,
		Record:     record,
		Normalized: normalized,
	}

	if exc := s.matchException(dep); exc != nil {
		verdict.Classification = types.ClassAllowed
		verdict.RuleMatched = exceptionRulePrefix + exc.Name
		verdict.Reason = "exception"
		if exc.Reason != "" {
			verdict.Reason = "exception: " + exc.Reason
		}
		return verdict
	}

	var o outcome
	if normalized.IsUnknown() || normalized.Tree == nil {
		o = s.evalLeaf(&types.LicenseNode{Raw: record.Raw()})
	} else {
		o = s.evalNode(normalized.Tree)
	}

	verdict.Classification = o.class
	verdict.RuleMatched = o.ruleID
	verdict.Reason = s.buildReason(record, normalized, o)
	return verdict
}

// buildReason generates a human-readable reason for the decision.
func (s *LicensePolicyService) buildReason(record types.LicenseRecord, normalized types.NormalizedLicense, o outcome) string {
	var subject string
	switch {
	case o.license != "":
		subject = o.license
	case !record.Resolved():
		subject = "no license metadata found"
	case o.raw != "":
		subject = fmt.Sprintf("unrecognized license %q", o.raw)
	default:
		subject = fmt.Sprintf("unrecognized license %q", record.Raw())
	}

	var decided string
	switch {
	case o.ruleID != "":
		decided = fmt.Sprintf("%s by rule %s", o.class, o.ruleID)
	case o.license != "":
		decided = fmt.Sprintf("no rule matched; default action is %s", s.policy.Default)
	default:
		decided = "not classifiable"
	}

	if normalized.Kind == types.KindSingle || normalized.IsUnknown() || o.license == "" {
		return fmt.Sprintf("%s: %s", subject, decided)
	}
	return fmt.Sprintf("%s decided by %s: %s", normalized.Expression, subject, decided)
}
