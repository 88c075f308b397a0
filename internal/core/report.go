package core

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ReportFormat selects how an AuditReport is rendered
type ReportFormat string

// Report formats accepted by --format.
const (
	FormatTable     ReportFormat = "table"
	FormatJSON      ReportFormat = "json"
	FormatCSV       ReportFormat = "csv"
	FormatCycloneDX ReportFormat = ReportFormat(SBOMFormatCycloneDX)
	FormatSPDX      ReportFormat = ReportFormat(SBOMFormatSPDX)
)

// ReportFormats returns every supported format name in display order.
func ReportFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatCSV), string(FormatCycloneDX), string(FormatSPDX)}
}

// ParseReportFormat validates a --format value. Empty selects the table.
func ParseReportFormat(s string) (ReportFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range ReportFormats() {
		if s == f {
			return ReportFormat(s), nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, s, strings.Join(ReportFormats(), ", "))
}

// ReportOptions controls report rendering
type ReportOptions struct {
	Format ReportFormat
	// Verbose lists every dependency in table mode instead of only the issues.
	Verbose bool
	// Color enables ANSI styling in table mode.
	Color bool
}

// BuildSummary counts verdicts per classification and derives the overall result.
// FAIL when anything is denied, or unknown/warn with the matching fail flag;
// WARN when anything is warn or unknown; PASS otherwise.
func BuildSummary(verdicts []types.Verdict, failOnUnknown, failOnWarn bool) types.AuditSummary {
	s := types.AuditSummary{Total: len(verdicts)}
	for _, v := range verdicts {
		switch v.Classification {
		case types.ClassAllowed:
			s.Allowed++
		case types.ClassDenied:
			s.Denied++
		case types.ClassWarn:
			s.Warn++
		default:
			s.Unknown++
		}
		if IsExcepted(v) {
			s.Excepted++
		}
	}

	switch {
	case s.Denied > 0, failOnUnknown && s.Unknown > 0, failOnWarn && s.Warn > 0:
		s.Result = types.AuditResultFail
	case s.Warn > 0, s.Unknown > 0:
		s.Result = types.AuditResultWarn
	default:
		s.Result = types.AuditResultPass
	}
	return s
}

// IsExcepted reports whether a package exception decided the verdict.
func IsExcepted(v types.Verdict) bool {
	return strings.HasPrefix(v.RuleMatched, exceptionRulePrefix)
}

// EmitReport renders report to w. The report is not modified.
func EmitReport(w io.Writer, report *types.AuditReport, opts ReportOptions) error {
	switch opts.Format {
	case "", FormatTable:
		return writeTableReport(w, report, opts)
	case FormatJSON:
		return writeJSONReport(w, report)
	case FormatCSV:
		return writeCSVReport(w, report)
	case FormatCycloneDX, FormatSPDX:
		data, err := NewSBOMGenerator().Generate(report, SBOMFormat(opts.Format))
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write %s report: %w", opts.Format, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// jsonVerdict flattens a Verdict with its resolution details for JSON output
type jsonVerdict struct {
	Name             string                  `json:"name"`
	Version          string                  `json:"version"`
	Ecosystem        types.Ecosystem         `json:"ecosystem"`
	Scope            types.Scope             `json:"scope"`
	Manifest         string                  `json:"manifest,omitempty"`
	RawLicense       []string                `json:"raw_license"`
	ResolutionSource types.ResolutionSource  `json:"resolution_source"`
	ResolutionDetail string                  `json:"resolution_detail,omitempty"`
	Normalized       types.NormalizedLicense `json:"normalized"`
	Classification   types.Classification    `json:"classification"`
	RuleMatched      string                  `json:"rule_matched,omitempty"`
	Reason           string                  `json:"reason"`
}

type jsonReport struct {
	SchemaVersion string             `json:"schema_version"`
	GeneratedAt   string             `json:"generated_at"`
	Project       string             `json:"project"`
	Manifests     []string           `json:"manifests"`
	PolicyName    string             `json:"policy"`
	Summary       types.AuditSummary `json:"summary"`
	Verdicts      []jsonVerdict      `json:"verdicts"`
}

func writeJSONReport(w io.Writer, report *types.AuditReport) error {
	out := jsonReport{
		SchemaVersion: report.SchemaVersion,
		GeneratedAt:   report.GeneratedAt,
		Project:       report.Project,
		Manifests:     report.Manifests,
		PolicyName:    report.PolicyName,
		Summary:       report.Summary,
		Verdicts:      make([]jsonVerdict, 0, len(report.Verdicts)),
	}
	if out.Manifests == nil {
		out.Manifests = []string{}
	}
	for _, v := range report.Verdicts {
		raw := v.Record.RawLicense
		if raw == nil {
			raw = []string{}
		}
		normalized := v.Normalized
		if normalized.Identifiers == nil {
			normalized.Identifiers = []string{}
		}
		out.Verdicts = append(out.Verdicts, jsonVerdict{
			Name:             v.Dependency.Name,
			Version:          v.Dependency.Version,
			Ecosystem:        v.Dependency.Ecosystem,
			Scope:            v.Dependency.Scope,
			Manifest:         v.Dependency.Manifest,
			RawLicense:       raw,
			ResolutionSource: v.Record.Source,
			ResolutionDetail: v.Record.Detail,
			Normalized:       normalized,
			Classification:   v.Classification,
			RuleMatched:      v.RuleMatched,
			Reason:           v.Reason,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"name", "version", "ecosystem", "scope", "license", "expression_kind",
	"classification", "rule_matched", "resolution_source", "reason",
}

func writeCSVReport(w io.Writer, report *types.AuditReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	for _, v := range report.Verdicts {
		row := []string{
			v.Dependency.Name,
			v.Dependency.Version,
			string(v.Dependency.Ecosystem),
			v.Dependency.Scope.String(),
			displayLicense(v),
			string(v.Normalized.Kind),
			string(v.Classification),
			v.RuleMatched,
			string(v.Record.Source),
			v.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

// displayLicense prefers the canonical expression and falls back to the raw metadata.
func displayLicense(v types.Verdict) string {
	if v.Normalized.Expression != "" {
		return v.Normalized.Expression
	}
	if raw := v.Record.Raw(); raw != "" {
		return raw
	}
	return "-"
}
