// Package tui provides terminal user interface components and callbacks for license-auditor.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// diagOut receives diagnostics. Reports go to stdout, so diagnostics never do.
var diagOut io.Writer = os.Stderr

// PrintError displays an error message with styling.
func PrintError(title, msg string) {
	fmt.Fprintln(diagOut, styleErr.Render("✖ "+title))
	fmt.Fprintln(diagOut, msg)
}

// PrintSuccess displays a success message with styling.
func PrintSuccess(msg string) { fmt.Fprintln(diagOut, styleSuccess.Render("✔ "+msg)) }

// PrintInfo displays an informational message.
func PrintInfo(msg string) { fmt.Fprintln(diagOut, styleDim.Render(msg)) }

// PrintWarning displays a warning message with styling.
func PrintWarning(title, msg string) {
	fmt.Fprintln(diagOut, styleWarn.Render("! "+title))
	fmt.Fprintln(diagOut, msg)
}

// StyleTitle applies title styling to the given text string.
func StyleTitle(text string) string { return styleTitle.Render(text) }

// PrintHelp writes usage information for license-auditor commands to w.
func PrintHelp(w io.Writer, version string) {
	fmt.Fprintln(w, styleTitle.Render("license-auditor "+version))
	fmt.Fprintln(w, "Audit the licenses of a project's locked dependencies against a policy")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  check [path] [options]  Audit dependencies (default command)")
	fmt.Fprintln(w, "    --format <fmt>        table, json, csv, cyclonedx or spdx (default: table)")
	fmt.Fprintln(w, "    --output, -o <file>   Write the report to a file instead of stdout")
	fmt.Fprintln(w, "    --policy <file>       Policy file (YAML or TOML) layered over the config")
	fmt.Fprintln(w, "    --preset <name>       Built-in policy: green, yellow or red")
	fmt.Fprintln(w, "    --fail-on-unknown     Fail when a license cannot be classified")
	fmt.Fprintln(w, "    --fail-on-warn        Fail on warn classifications")
	fmt.Fprintln(w, "    --exit-zero           Always exit 0 unless a fatal error occurs")
	fmt.Fprintln(w, "    --offline             Never query registries or hosting APIs")
	fmt.Fprintln(w, "    --no-cache            Do not read or write the on-disk cache")
	fmt.Fprintln(w, "    --workers <N>         Parallel resolution workers (default: NumCPU, max 8)")
	fmt.Fprintln(w, "    --timeout <dur>       Per-source resolution timeout (default: 10s)")
	fmt.Fprintln(w, "    --site-packages <dir> Installed Python environment to read")
	fmt.Fprintln(w, "    --watch               Re-run when a lockfile or the policy changes")
	fmt.Fprintln(w, "    --verbose, -v         List every package and resolution detail")
	fmt.Fprintln(w, "    --quiet, -q           Only print the report and errors")
	fmt.Fprintln(w, "  init <preset> [--force] Write .license-auditor.yml from a preset")
	fmt.Fprintln(w, "  fix [path] [options]    Add exceptions for current violations")
	fmt.Fprintln(w, "    --dry-run             Print the exceptions without writing them")
	fmt.Fprintln(w, "    --interactive         Confirm each exception and enter a reason")
	fmt.Fprintln(w, "    --yes, -y             Do not ask for confirmation")
	fmt.Fprintln(w, "  config [--show|--validate] [--json]")
	fmt.Fprintln(w, "                          Show the effective policy or validate the config")
	fmt.Fprintln(w, "  completion <shell>      Generate shell completion script (bash/zsh/fish/powershell)")
	fmt.Fprintln(w, "  version [--verbose]     Show version information")
	fmt.Fprintln(w, "\nExit codes:")
	fmt.Fprintln(w, "  0  no policy violation")
	fmt.Fprintln(w, "  1  denied dependency (or unknown/warn with --fail-on-unknown/--fail-on-warn)")
	fmt.Fprintln(w, "  2  fatal error: missing or malformed lockfile, invalid policy, bad usage")
	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  license-auditor")
	fmt.Fprintln(w, "  license-auditor check ./service --format json -o licenses.json")
	fmt.Fprintln(w, "  license-auditor check --preset red --fail-on-unknown")
	fmt.Fprintln(w, "  license-auditor check --format cyclonedx --offline > sbom.json")
	fmt.Fprintln(w, "  license-auditor init yellow")
	fmt.Fprintln(w, "  license-auditor fix --interactive")
	fmt.Fprintln(w, "  license-auditor config --validate")
	fmt.Fprintln(w, "  license-auditor completion bash > /etc/bash_completion.d/license-auditor")
}
