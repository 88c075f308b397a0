// Package cmd provides shell completion scripts for license-auditor
package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// program is the binary name completions are registered for
const program = "license-auditor"

// flag is one completable option of a command
type flag struct {
	long  string
	short string
	desc  string
	// values lists the fixed choices for the flag argument; takesArg without
	// values completes a free-form argument.
	values   []string
	takesArg bool
}

// command is one completable subcommand
type command struct {
	name  string
	desc  string
	args  []string // Fixed positional choices (e.g. preset names)
	flags []flag
}

var outputFlags = []flag{
	{long: "verbose", short: "v", desc: "Show every package and resolution detail"},
	{long: "quiet", short: "q", desc: "Only print the report and errors"},
	{long: "json", desc: "JSON diagnostics"},
}

var commands = []command{
	{
		name: "check",
		desc: "Audit dependency licenses against the policy",
		flags: append([]flag{
			{long: "format", desc: "Report format", values: []string{"table", "json", "csv", "cyclonedx", "spdx"}},
			{long: "output", short: "o", desc: "Write the report to a file", takesArg: true},
			{long: "policy", desc: "Policy file", takesArg: true},
			{long: "preset", desc: "Built-in policy", values: []string{"green", "yellow", "red"}},
			{long: "fail-on-unknown", desc: "Fail on unclassifiable licenses"},
			{long: "fail-on-warn", desc: "Fail on warn classifications"},
			{long: "exit-zero", desc: "Exit 0 on policy violations"},
			{long: "offline", desc: "Never query the network"},
			{long: "no-cache", desc: "Skip the on-disk cache"},
			{long: "workers", desc: "Parallel resolution workers", takesArg: true},
			{long: "timeout", desc: "Per-source timeout", takesArg: true},
			{long: "site-packages", desc: "Installed Python environment", takesArg: true},
			{long: "watch", desc: "Re-run on lockfile or policy changes"},
		}, outputFlags...),
	},
	{
		name: "init",
		desc: "Write a config file from a preset",
		args: []string{"green", "yellow", "red"},
		flags: []flag{
			{long: "force", desc: "Overwrite an existing config"},
		},
	},
	{
		name: "fix",
		desc: "Add exceptions for current violations",
		flags: append([]flag{
			{long: "dry-run", desc: "Print exceptions without writing them"},
			{long: "interactive", desc: "Confirm each exception"},
			{long: "yes", short: "y", desc: "Skip confirmation"},
			{long: "reason", desc: "Reason recorded on each exception", takesArg: true},
			{long: "offline", desc: "Never query the network"},
		}, outputFlags...),
	},
	{
		name: "config",
		desc: "Show or validate the configuration",
		flags: []flag{
			{long: "show", desc: "Print the effective policy"},
			{long: "validate", desc: "Check the config for problems"},
			{long: "json", desc: "JSON output"},
		},
	},
	{
		name: "completion",
		desc: "Generate shell completion script",
		args: []string{"bash", "zsh", "fish", "powershell"},
	},
	{
		name: "version",
		desc: "Show version information",
		flags: []flag{
			{long: "verbose", short: "v", desc: "Include platform details"},
			{long: "json", desc: "JSON output"},
		},
	},
	{name: "help", desc: "Show help information"},
}

// Shells lists the supported completion shells
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// CommandNames returns the completable command names in declaration order
func CommandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

// GenerateCompletion returns the completion script for shell
func GenerateCompletion(shell string) (string, error) {
	switch shell {
	case "bash":
		return GenerateBashCompletion(), nil
	case "zsh":
		return GenerateZshCompletion(), nil
	case "fish":
		return GenerateFishCompletion(), nil
	case "powershell":
		return GeneratePowerShellCompletion(), nil
	default:
		return "", fmt.Errorf("unsupported shell %q (use %s)", shell, strings.Join(Shells, ", "))
	}
}

// words returns every word completable after the command name
func (c command) words() []string {
	out := append([]string{}, c.args...)
	for _, f := range c.flags {
		out = append(out, "--"+f.long)
		if f.short != "" {
			out = append(out, "-"+f.short)
		}
	}
	return out
}

// GenerateBashCompletion generates bash completion script
func GenerateBashCompletion() string {
	var cases strings.Builder
	for _, c := range commands {
		for _, f := range c.flags {
			if len(f.values) > 0 {
				fmt.Fprintf(&cases, "        --%s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
					f.long, strings.Join(f.values, " "))
			}
		}
	}
	// Option values are shared between commands, so list each once.
	valueCases := dedupeCases(cases.String())

	var cmdCases strings.Builder
	for _, c := range commands {
		if w := c.words(); len(w) > 0 {
			fmt.Fprintf(&cmdCases, "        %s)\n            opts=\"%s\"\n            ;;\n", c.name, strings.Join(w, " "))
		}
	}

	return fmt.Sprintf(`# bash completion for %[1]s
_license_auditor_completions() {
    local cur prev cmd opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    cmd="${COMP_WORDS[1]}"

    case "${prev}" in
%[2]s    esac

    if [ "${COMP_CWORD}" -eq 1 ]; then
        COMPREPLY=( $(compgen -W "%[3]s" -- "${cur}") )
        return 0
    fi

    opts=""
    case "${cmd}" in
%[4]s    esac

    COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
    return 0
}

complete -o default -F _license_auditor_completions %[1]s
`, program, valueCases, strings.Join(CommandNames(), " "), cmdCases.String())
}

// dedupeCases drops repeated case arms produced by flags shared across commands
func dedupeCases(s string) string {
	arms := strings.SplitAfter(s, ";;\n")
	seen := make(map[string]bool)
	var out strings.Builder
	for _, arm := range arms {
		if arm == "" || seen[arm] {
			continue
		}
		seen[arm] = true
		out.WriteString(arm)
	}
	return out.String()
}

// GenerateZshCompletion generates zsh completion script
func GenerateZshCompletion() string {
	cmdList := make([]string, len(commands))
	for i, c := range commands {
		cmdList[i] = fmt.Sprintf("        '%s:%s'", c.name, c.desc)
	}

	var cases strings.Builder
	for _, c := range commands {
		var specs []string
		for _, f := range c.flags {
			specs = append(specs, zshSpec("--"+f.long, f))
			if f.short != "" {
				specs = append(specs, zshSpec("-"+f.short, f))
			}
		}
		if len(c.args) > 0 {
			specs = append(specs, fmt.Sprintf("'1:%s:(%s)'", c.name, strings.Join(c.args, " ")))
		}
		if len(specs) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "                %s)\n                    _arguments \\\n                        %s\n                    ;;\n",
			c.name, strings.Join(specs, " \\\n                        "))
	}

	return fmt.Sprintf(`#compdef %[1]s

_license_auditor() {
    local -a commands
    commands=(
%[2]s
    )

    _arguments -C \
        '1: :->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
%[3]s            esac
            ;;
    esac
}

_license_auditor "$@"
`, program, strings.Join(cmdList, "\n"), cases.String())
}

func zshSpec(name string, f flag) string {
	switch {
	case len(f.values) > 0:
		return fmt.Sprintf("'%s[%s]:%s:(%s)'", name, f.desc, f.long, strings.Join(f.values, " "))
	case f.takesArg:
		return fmt.Sprintf("'%s[%s]:%s:_files'", name, f.desc, f.long)
	default:
		return fmt.Sprintf("'%s[%s]'", name, f.desc)
	}
}

// GenerateFishCompletion generates fish completion script
func GenerateFishCompletion() string {
	var lines []string
	for _, c := range commands {
		lines = append(lines, fmt.Sprintf("complete -c %s -f -n '__fish_use_subcommand' -a '%s' -d '%s'", program, c.name, c.desc))
	}

	for _, c := range commands {
		if len(c.args) == 0 && len(c.flags) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("# %s", c.name))
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.name)
		if len(c.args) > 0 {
			lines = append(lines, fmt.Sprintf("complete -c %s -f -n %s -a '%s'", program, cond, strings.Join(c.args, " ")))
		}
		for _, f := range c.flags {
			line := fmt.Sprintf("complete -c %s -n %s -l %s", program, cond, f.long)
			if f.short != "" {
				line += " -s " + f.short
			}
			switch {
			case len(f.values) > 0:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.values, " "))
			case f.takesArg:
				line += " -r"
			}
			lines = append(lines, line+fmt.Sprintf(" -d '%s'", f.desc))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// GeneratePowerShellCompletion generates PowerShell completion script
func GeneratePowerShellCompletion() string {
	quote := func(words []string) string {
		q := make([]string, len(words))
		for i, w := range words {
			q[i] = "'" + w + "'"
		}
		return strings.Join(q, ", ")
	}

	names := make([]string, 0, len(commands))
	byName := make(map[string]command, len(commands))
	for _, c := range commands {
		if len(c.words()) > 0 {
			names = append(names, c.name)
			byName[c.name] = c
		}
	}
	sort.Strings(names)

	var cases strings.Builder
	for _, name := range names {
		fmt.Fprintf(&cases, "            '%s' { $words = @(%s) }\n", name, quote(byName[name].words()))
	}

	return fmt.Sprintf(`# PowerShell completion for %[1]s
Register-ArgumentCompleter -Native -CommandName %[1]s -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @(%[2]s)
    $tokens = $commandAst.ToString().Split(' ')

    $words = @()
    if ($tokens.Count -le 2) {
        $words = $commands
    }
    else {
        switch ($tokens[1]) {
%[3]s        }
    }

    $words | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`, program, quote(CommandNames()), cases.String())
}
