package core

import (
	"fmt"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

// FixOptions controls how violations are turned into exceptions
type FixOptions struct {
	DryRun      bool // Report the exceptions without writing them
	Interactive bool // Confirm each exception and ask for its reason
	// Reason is the default reason recorded on every exception.
	Reason string
}

// DefaultFixReason is recorded when no reason is given
const DefaultFixReason = "accepted by license-auditor fix"

// FixService turns the violations of an audit report into package exceptions.
type FixService struct {
	config *ConfigService
	ui     UICallback
}

// NewFixService creates a FixService writing through config
func NewFixService(config *ConfigService, ui UICallback) *FixService {
	if ui == nil {
		ui = &SilentUICallback{}
	}
	return &FixService{config: config, ui: ui}
}

// Plan returns one exception per denied, warn or unknown verdict, in report order.
// Verdicts already decided by an exception are skipped.
func (s *FixService) Plan(report *types.AuditReport, reason string) []types.PolicyException {
	if reason == "" {
		reason = DefaultFixReason
	}
	seen := make(map[string]bool)
	var out []types.PolicyException
	for _, v := range FilterVerdicts(report.Verdicts, types.ClassDenied, types.ClassWarn, types.ClassUnknown) {
		if IsExcepted(v) {
			continue
		}
		exc := types.PolicyException{
			Name:    v.Dependency.Name,
			Version: v.Dependency.Version,
			Reason:  fmt.Sprintf("%s (%s, %s)", reason, displayLicense(v), v.Classification),
		}
		if seen[exceptionKey(exc)] {
			continue
		}
		seen[exceptionKey(exc)] = true
		out = append(out, exc)
	}
	return out
}

// Fix plans the exceptions for report and writes the accepted ones to the config file.
// Returns the exceptions that were (or, in dry-run mode, would be) added.
func (s *FixService) Fix(report *types.AuditReport, opts FixOptions) ([]types.PolicyException, error) {
	planned := s.Plan(report, opts.Reason)
	if len(planned) == 0 {
		s.ui.ShowSuccess("No violations to fix")
		return nil, nil
	}
	if opts.DryRun {
		return planned, nil
	}

	var accepted []types.PolicyException
	if opts.Interactive {
		for _, exc := range planned {
			title := fmt.Sprintf("Add exception for %s@%s?", exc.Name, exc.Version)
			if !s.ui.AskConfirmation(title, exc.Reason) {
				continue
			}
			if reason, ok := s.ui.AskInput("Reason", "Why is this package acceptable?"); ok && strings.TrimSpace(reason) != "" {
				exc.Reason = strings.TrimSpace(reason)
			}
			accepted = append(accepted, exc)
		}
	} else {
		if !s.ui.IsAutoApprove() {
			msg := fmt.Sprintf("Add %s to %s?", Pluralize(len(planned), "exception", "exceptions"), s.config.store.Path())
			if !s.ui.AskConfirmation("Fix Violations", msg) {
				s.ui.ShowWarning("Fix Cancelled", "no exceptions were written")
				return nil, nil
			}
		}
		accepted = planned
	}

	if len(accepted) == 0 {
		return nil, nil
	}
	from := s.config.store.Source()
	added, err := s.config.AddExceptions(accepted)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Added %s to %s", Pluralize(added, "exception", "exceptions"), s.config.store.Path())
	if added > 0 && from != "" && from != s.config.store.Path() {
		// Save always writes YAML, which wins over the pyproject table from now on.
		msg += fmt.Sprintf("; it now takes precedence over [tool.%s] in %s", PyprojectTable, from)
	}
	s.ui.ShowSuccess(msg)
	return accepted, nil
}
