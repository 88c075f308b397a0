// Package main implements the license-auditor CLI, which audits the licenses of a
// project's locked dependencies against a policy.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/EmundoT/license-auditor/cmd"
	"github.com/EmundoT/license-auditor/internal/core"
	"github.com/EmundoT/license-auditor/internal/tui"
	"github.com/EmundoT/license-auditor/internal/types"
	"github.com/EmundoT/license-auditor/internal/version"
)

// Version information is managed in internal/version package
// GoReleaser injects version info directly via ldflags

// knownCommands are dispatched by name; anything else runs check
var knownCommands = map[string]bool{
	"check": true, "init": true, "fix": true, "config": true,
	"completion": true, "version": true, "help": true,
}

func usageErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidArguments, fmt.Sprintf(format, args...))
}

// parseCommonFlags extracts common non-interactive flags from args
// Returns: flags, remainingArgs
func parseCommonFlags(args []string) (core.NonInteractiveFlags, []string) {
	flags := core.NonInteractiveFlags{}
	var remaining []string

	for _, arg := range args {
		switch arg {
		case "--yes", "-y":
			flags.Yes = true
		case "--quiet", "-q":
			flags.Mode = core.OutputQuiet
		case "--json":
			flags.Mode = core.OutputJSON
		case "--verbose", "-v":
			if flags.Mode == core.OutputNormal {
				flags.Mode = core.OutputVerbose
			}
		default:
			remaining = append(remaining, arg)
		}
	}

	return flags, remaining
}

// argReader walks command arguments, accepting both "--flag value" and "--flag=value".
type argReader struct {
	args []string
	i    int
}

// next returns the next argument and, for "--flag=value", the inline value
func (r *argReader) next() (arg, inline string, hasInline, ok bool) {
	if r.i >= len(r.args) {
		return "", "", false, false
	}
	arg = r.args[r.i]
	r.i++
	if strings.HasPrefix(arg, "--") {
		if name, value, found := strings.Cut(arg, "="); found {
			return name, value, true, true
		}
	}
	return arg, "", false, true
}

// value returns the flag argument, either inline or the following word
func (r *argReader) value(name, inline string, hasInline bool) (string, error) {
	if hasInline {
		return inline, nil
	}
	if r.i >= len(r.args) || strings.HasPrefix(r.args[r.i], "-") && r.args[r.i] != "-" {
		return "", usageErr("%s requires a value", name)
	}
	v := r.args[r.i]
	r.i++
	return v, nil
}

// checkOptions is the parsed command line of check (and the audit part of fix)
type checkOptions struct {
	audit     core.AuditOptions
	format    string // Empty falls back to the config file, then table
	output    string
	exitZero  bool
	watch     bool
	formatSet bool
}

// parseCheckArgs parses check flags. The first positional argument is the project root.
func parseCheckArgs(args []string) (checkOptions, error) {
	var opts checkOptions
	r := &argReader{args: args}
	for {
		arg, inline, hasInline, ok := r.next()
		if !ok {
			break
		}
		var err error
		switch arg {
		case "--format", "-f":
			opts.format, err = r.value(arg, inline, hasInline)
			opts.formatSet = true
		case "--output", "-o":
			opts.output, err = r.value(arg, inline, hasInline)
		case "--policy":
			opts.audit.PolicyFile, err = r.value(arg, inline, hasInline)
		case "--preset":
			opts.audit.Preset, err = r.value(arg, inline, hasInline)
		case "--site-packages":
			opts.audit.SitePackages, err = r.value(arg, inline, hasInline)
		case "--workers":
			var v string
			if v, err = r.value(arg, inline, hasInline); err == nil {
				opts.audit.Workers, err = strconv.Atoi(v)
				if err != nil || opts.audit.Workers < 1 {
					err = usageErr("--workers requires a positive number, got %q", v)
				}
			}
		case "--timeout":
			var v string
			if v, err = r.value(arg, inline, hasInline); err == nil {
				opts.audit.Timeout, err = time.ParseDuration(v)
				if err != nil || opts.audit.Timeout <= 0 {
					err = usageErr("--timeout requires a positive duration such as 10s, got %q", v)
				}
			}
		case "--fail-on-unknown":
			opts.audit.FailOnUnknown = true
		case "--fail-on-warn":
			opts.audit.FailOnWarn = true
		case "--exit-zero":
			opts.exitZero = true
		case "--offline":
			opts.audit.Offline = true
		case "--no-cache":
			opts.audit.NoCache = true
		case "--watch":
			opts.watch = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, usageErr("unknown flag %s", arg)
			}
			if opts.audit.Root != "" {
				return opts, usageErr("unexpected argument %q (project path already set to %q)", arg, opts.audit.Root)
			}
			opts.audit.Root = arg
		}
		if err != nil {
			return opts, err
		}
	}

	if opts.audit.PolicyFile != "" && opts.audit.Preset != "" {
		return opts, usageErr("--policy and --preset cannot be combined")
	}
	if opts.audit.Root == "" {
		opts.audit.Root = "."
	}
	return opts, nil
}

// fatal reports err and returns the exit code for it. JSON mode writes the
// structured envelope to stdout.
func fatal(stdout io.Writer, ui core.UICallback, title string, err error) int {
	if ui.GetOutputMode() == core.OutputJSON {
		return core.EmitCLIError(stdout, err)
	}
	ui.ShowError(title, err.Error())
	return core.CLIExitCodeForError(err)
}

func main() {
	// Tokens and registry overrides may live in .env; a missing file is fine.
	if err := godotenv.Load(core.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		tui.PrintWarning("Environment", fmt.Sprintf("could not load %s: %v", core.EnvFile, err))
	}

	if err := core.CheckEnvironment(runtime.GOOS, runtime.GOARCH); err != nil {
		tui.PrintError("Unsupported Environment", fmt.Sprintf("%v (supported: %s)", err, strings.Join(core.SupportedPlatforms(), ", ")))
		os.Exit(core.ExitFatal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run dispatches one command line and returns the process exit code
func run(ctx context.Context, args []string, stdout io.Writer) int {
	command := "check"
	if len(args) > 0 {
		switch {
		case args[0] == "--help" || args[0] == "-h":
			command = "help"
		case args[0] == "--version":
			command = "version"
		case knownCommands[args[0]]:
			command = args[0]
		}
		if command != "check" || args[0] == "check" {
			args = args[1:]
		}
	}

	flags, rest := parseCommonFlags(args)
	ui := tui.NewCallback(flags)

	switch command {
	case "help":
		tui.PrintHelp(stdout, version.GetVersion())
		return core.ExitSuccess
	case "version":
		return runVersion(stdout, flags)
	case "completion":
		return runCompletion(stdout, ui, rest)
	case "init":
		return runInit(stdout, ui, rest)
	case "config":
		return runConfig(stdout, ui, flags, rest)
	case "fix":
		return runFix(ctx, stdout, ui, rest)
	default:
		return runCheck(ctx, stdout, ui, flags, rest)
	}
}

// ============================================================================
// check
// ============================================================================

func runCheck(ctx context.Context, stdout io.Writer, ui core.UICallback, flags core.NonInteractiveFlags, args []string) int {
	opts, err := parseCheckArgs(args)
	if err != nil {
		return fatal(stdout, ui, "Invalid Arguments", err)
	}

	cfg, _, err := core.LoadConfig(opts.audit.Root)
	if err != nil {
		return fatal(stdout, ui, "Invalid Configuration", err)
	}
	opts.audit.Config = &cfg
	if opts.audit, err = core.ApplyConfig(opts.audit, cfg); err != nil {
		return fatal(stdout, ui, "Invalid Configuration", err)
	}

	formatName := opts.format
	if !opts.formatSet {
		formatName = cfg.Report.Format
	}
	format, err := core.ParseReportFormat(formatName)
	if err != nil {
		return fatal(stdout, ui, "Invalid Format", err)
	}

	auditor := core.NewAuditor(ui)
	audit := func(ctx context.Context) (int, error) {
		report, err := auditor.Run(ctx, opts.audit)
		if err != nil {
			return core.CLIExitCodeForError(err), err
		}

		reportOpts := core.ReportOptions{
			Format:  format,
			Verbose: flags.Mode == core.OutputVerbose,
			Color:   opts.output == "" && tui.IsTerminal(os.Stdout),
		}
		if err := writeReport(stdout, opts.output, report, reportOpts); err != nil {
			return core.ExitFatal, err
		}
		if opts.output != "" {
			ui.ShowSuccess(fmt.Sprintf("Report written to %s (%s)", opts.output, report.Summary.Result))
		}

		if opts.exitZero {
			return core.ExitSuccess, nil
		}
		return core.ExitCode(report, opts.audit.FailOnUnknown, opts.audit.FailOnWarn), nil
	}

	if opts.watch {
		var extra []string
		if opts.audit.PolicyFile != "" {
			extra = append(extra, opts.audit.PolicyFile)
		}
		watcher := core.NewWatchService(opts.audit.Root, extra, ui)
		err := watcher.Watch(ctx, func(ctx context.Context) error {
			// Reload the config so edits to it take effect.
			cfg, _, err := core.LoadConfig(opts.audit.Root)
			if err != nil {
				return err
			}
			opts.audit.Config = &cfg
			_, err = audit(ctx)
			return err
		})
		if err != nil {
			return fatal(stdout, ui, "Watch Failed", err)
		}
		return core.ExitSuccess
	}

	code, err := audit(ctx)
	if err != nil {
		return fatal(stdout, ui, "Audit Failed", err)
	}
	return code
}

// writeReport renders report to path, or to stdout when path is empty
func writeReport(stdout io.Writer, path string, report *types.AuditReport, opts core.ReportOptions) error {
	if path == "" {
		return core.EmitReport(stdout, report, opts)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := core.EmitReport(f, report, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ============================================================================
// fix
// ============================================================================

func runFix(ctx context.Context, stdout io.Writer, ui core.UICallback, args []string) int {
	var fixOpts core.FixOptions
	var auditArgs []string
	r := &argReader{args: args}
	for {
		arg, inline, hasInline, ok := r.next()
		if !ok {
			break
		}
		switch arg {
		case "--dry-run":
			fixOpts.DryRun = true
		case "--interactive", "-i":
			fixOpts.Interactive = true
		case "--reason":
			v, err := r.value(arg, inline, hasInline)
			if err != nil {
				return fatal(stdout, ui, "Invalid Arguments", err)
			}
			fixOpts.Reason = v
		default:
			auditArgs = append(auditArgs, r.args[r.i-1])
		}
	}

	opts, err := parseCheckArgs(auditArgs)
	if err != nil {
		return fatal(stdout, ui, "Invalid Arguments", err)
	}
	if opts.watch || opts.output != "" || opts.formatSet {
		return fatal(stdout, ui, "Invalid Arguments", usageErr("fix does not take --watch, --output or --format"))
	}

	report, err := core.NewAuditor(ui).Run(ctx, opts.audit)
	if err != nil {
		return fatal(stdout, ui, "Audit Failed", err)
	}

	svc := core.NewFixService(core.NewConfigService(opts.audit.Root, nil), ui)
	added, err := svc.Fix(report, fixOpts)
	if err != nil {
		return fatal(stdout, ui, "Fix Failed", err)
	}

	switch {
	case ui.GetOutputMode() == core.OutputJSON:
		_ = core.EmitCLISuccess(stdout, map[string]interface{}{ //nolint:errcheck
			"dry_run":    fixOpts.DryRun,
			"exceptions": added,
		})
	case fixOpts.DryRun && len(added) > 0:
		out, err := yaml.Marshal(map[string]interface{}{"exceptions": added})
		if err != nil {
			return fatal(stdout, ui, "Fix Failed", err)
		}
		fmt.Fprint(stdout, string(out))
		ui.ShowInfo(fmt.Sprintf("Dry run: %s not written", core.Pluralize(len(added), "exception", "exceptions")))
	}
	return core.ExitSuccess
}

// ============================================================================
// init / config
// ============================================================================

func runInit(stdout io.Writer, ui core.UICallback, args []string) int {
	preset := ""
	force := false
	for _, arg := range args {
		switch {
		case arg == "--force" || arg == "-f":
			force = true
		case strings.HasPrefix(arg, "-"):
			return fatal(stdout, ui, "Invalid Arguments", usageErr("unknown flag %s", arg))
		case preset == "":
			preset = arg
		default:
			return fatal(stdout, ui, "Invalid Arguments", usageErr("unexpected argument %q", arg))
		}
	}
	if preset == "" {
		return fatal(stdout, ui, "Usage", usageErr("license-auditor init <%s> [--force]", strings.Join(core.PresetNames(), "|")))
	}

	path, err := core.NewConfigService(".", nil).Init(preset, force)
	if err != nil {
		return fatal(stdout, ui, "Initialization Failed", err)
	}
	ui.ShowSuccess(fmt.Sprintf("Wrote %s (%s preset)", path, strings.ToLower(preset)))
	return core.ExitSuccess
}

func runConfig(stdout io.Writer, ui core.UICallback, flags core.NonInteractiveFlags, args []string) int {
	validate := false
	var preset, policyFile string
	root := "."
	r := &argReader{args: args}
	for {
		arg, inline, hasInline, ok := r.next()
		if !ok {
			break
		}
		var err error
		switch {
		case arg == "--show":
			validate = false
		case arg == "--validate":
			validate = true
		case arg == "--preset":
			preset, err = r.value(arg, inline, hasInline)
		case arg == "--policy":
			policyFile, err = r.value(arg, inline, hasInline)
		case strings.HasPrefix(arg, "-"):
			err = usageErr("unknown flag %s", arg)
		default:
			root = arg
		}
		if err != nil {
			return fatal(stdout, ui, "Invalid Arguments", err)
		}
	}

	svc := core.NewConfigService(root, nil)

	if validate {
		problems, err := svc.Validate()
		if err != nil {
			return fatal(stdout, ui, "Invalid Configuration", err)
		}
		if flags.Mode == core.OutputJSON {
			_ = core.EmitCLISuccess(stdout, map[string]interface{}{"valid": len(problems) == 0, "problems": problems}) //nolint:errcheck
		} else if len(problems) == 0 {
			ui.ShowSuccess("Configuration is valid")
		} else {
			ui.ShowError("Invalid Configuration", core.Pluralize(len(problems), "problem", "problems")+":\n  - "+strings.Join(problems, "\n  - "))
		}
		if len(problems) > 0 {
			return core.ExitFatal
		}
		return core.ExitSuccess
	}

	effective, err := svc.Show(preset, policyFile)
	if err != nil {
		return fatal(stdout, ui, "Invalid Configuration", err)
	}
	if flags.Mode == core.OutputJSON {
		if err := core.EmitCLISuccess(stdout, effective); err != nil {
			return fatal(stdout, ui, "Output Failed", err)
		}
		return core.ExitSuccess
	}
	out, err := yaml.Marshal(effective)
	if err != nil {
		return fatal(stdout, ui, "Output Failed", err)
	}
	fmt.Fprint(stdout, string(out))
	return core.ExitSuccess
}

// ============================================================================
// version / completion
// ============================================================================

func runVersion(stdout io.Writer, flags core.NonInteractiveFlags) int {
	switch flags.Mode {
	case core.OutputJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(version.GetInfo()) //nolint:errcheck
	case core.OutputVerbose:
		fmt.Fprintf(stdout, "%s %s\n", version.Name, version.GetFullVersion())
		info := version.GetInfo()
		fmt.Fprintf(stdout, "  go:       %s\n", info.GoVersion)
		if binary, err := core.PlatformBinaryName(runtime.GOOS, runtime.GOARCH); err == nil {
			fmt.Fprintf(stdout, "  binary:   %s\n", binary)
		}
		fmt.Fprintf(stdout, "  supports: %s\n", strings.Join(core.SupportedPlatforms(), ", "))
	default:
		fmt.Fprintf(stdout, "%s %s\n", version.Name, version.GetVersion())
	}
	return core.ExitSuccess
}

func runCompletion(stdout io.Writer, ui core.UICallback, args []string) int {
	if len(args) != 1 {
		return fatal(stdout, ui, "Usage", usageErr("license-auditor completion <%s>", strings.Join(cmd.Shells, "|")))
	}
	script, err := cmd.GenerateCompletion(args[0])
	if err != nil {
		return fatal(stdout, ui, "Invalid Shell", usageErr("%v", err))
	}
	fmt.Fprint(stdout, script)
	return core.ExitSuccess
}
