package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/EmundoT/license-auditor/internal/types"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	classStyles = map[types.Classification]lipgloss.Style{
		types.ClassAllowed: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		types.ClassWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		types.ClassDenied:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		types.ClassUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}

	resultStyles = map[string]lipgloss.Style{
		types.AuditResultPass: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		types.AuditResultWarn: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		types.AuditResultFail: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

var tableColumns = []string{"Package", "Version", "Scope", "License", "Status", "Rule", "Source"}

// writeTableReport renders the human-readable report: a table of packages
// (issues only unless verbose) followed by the summary line.
func writeTableReport(w io.Writer, report *types.AuditReport, opts ReportOptions) error {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	var rows [][]string
	for _, v := range report.Verdicts {
		if !opts.Verbose && v.Classification == types.ClassAllowed {
			continue
		}
		rows = append(rows, []string{
			v.Dependency.Name,
			v.Dependency.Version,
			v.Dependency.Scope.String(),
			displayLicense(v),
			style(classStyles[v.Classification], string(v.Classification)),
			ruleColumn(v),
			string(v.Record.Source),
		})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "License audit: %s (policy %s)\n", report.Project, report.PolicyName)

	if len(rows) == 0 {
		if report.Summary.Total == 0 {
			sb.WriteString("No dependencies found.\n")
		} else {
			fmt.Fprintf(&sb, "All %s allowed.\n", Pluralize(report.Summary.Total, "package", "packages"))
		}
	} else {
		headers := make([]string, len(tableColumns))
		for i, h := range tableColumns {
			headers[i] = style(tableHeaderStyle, h)
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(_, _ int) lipgloss.Style { return tableCellStyle })
		sb.WriteString(t.String())
		sb.WriteString("\n")

		if opts.Verbose {
			for _, v := range report.Verdicts {
				if v.Reason != "" {
					fmt.Fprintf(&sb, "  %s: %s\n", v.Dependency.String(), v.Reason)
				}
			}
		}
	}

	sb.WriteString(summaryLine(report.Summary, style))
	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write table report: %w", err)
	}
	return nil
}

func ruleColumn(v types.Verdict) string {
	if v.RuleMatched == "" {
		return "(default)"
	}
	return v.RuleMatched
}

func summaryLine(s types.AuditSummary, style func(lipgloss.Style, string) string) string {
	parts := make([]string, 0, 5)
	for _, c := range []types.Classification{types.ClassAllowed, types.ClassDenied, types.ClassWarn, types.ClassUnknown} {
		parts = append(parts, fmt.Sprintf("%d %s", s.Count(c), c))
	}
	if s.Excepted > 0 {
		parts = append(parts, fmt.Sprintf("%d excepted", s.Excepted))
	}
	return fmt.Sprintf("%s  %s: %s",
		style(resultStyles[s.Result], s.Result),
		Pluralize(s.Total, "package", "packages"),
		strings.Join(parts, ", "))
}
