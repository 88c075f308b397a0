package tui

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/EmundoT/license-auditor/internal/core"
)

// TUICallback implements UICallback for interactive terminal use with styled output.
//
//nolint:revive // Name TUICallback is intentional and descriptive
type TUICallback struct {
	verbose bool
}

var _ core.UICallback = (*TUICallback)(nil)

// NewTUICallback creates a new interactive terminal UI callback.
func NewTUICallback(verbose bool) *TUICallback {
	return &TUICallback{verbose: verbose}
}

// ShowError displays an error message with styled output.
func (t *TUICallback) ShowError(title, message string) {
	PrintError(title, message)
}

// ShowSuccess displays a success message with styled output.
func (t *TUICallback) ShowSuccess(message string) {
	PrintSuccess(message)
}

// ShowWarning displays a warning message with styled output.
func (t *TUICallback) ShowWarning(title, message string) {
	PrintWarning(title, message)
}

// ShowInfo displays a dimmed informational line.
func (t *TUICallback) ShowInfo(message string) {
	PrintInfo(message)
}

// AskConfirmation prompts the user for yes/no confirmation.
func (t *TUICallback) AskConfirmation(title, message string) bool {
	var confirm bool
	err := huh.NewConfirm().
		Title(title).
		Description(message).
		Value(&confirm).
		Affirmative("Yes").
		Negative("No").
		Run()
	if err != nil {
		return false
	}
	return confirm
}

// AskInput prompts for a single line of text.
func (t *TUICallback) AskInput(title, description string) (string, bool) {
	var value string
	err := huh.NewInput().
		Title(title).
		Description(description).
		Value(&value).
		Run()
	if err != nil {
		return "", false
	}
	return value, true
}

// StyleTitle returns a styled title string for terminal output.
func (t *TUICallback) StyleTitle(title string) string {
	return StyleTitle(title)
}

// GetOutputMode returns normal, or verbose when requested
func (t *TUICallback) GetOutputMode() core.OutputMode {
	if t.verbose {
		return core.OutputVerbose
	}
	return core.OutputNormal
}

// IsAutoApprove returns whether auto-approve is enabled (always false for interactive mode)
func (t *TUICallback) IsAutoApprove() bool {
	return false
}

// FormatJSON is not used in interactive mode
func (t *TUICallback) FormatJSON(_ core.JSONOutput) error {
	return nil
}

// StartProgress renders a bubbletea progress bar on stderr.
func (t *TUICallback) StartProgress(total int, label string) core.ProgressTracker {
	if total == 0 {
		return NewNoOpProgressTracker()
	}
	return NewBubbletaeProgressTracker(total, label)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewCallback picks the interactive callback when stdin and stderr are terminals
// and the mode is normal or verbose; otherwise the non-interactive one.
func NewCallback(flags core.NonInteractiveFlags) core.UICallback {
	interactive := (flags.Mode == core.OutputNormal || flags.Mode == core.OutputVerbose) &&
		!flags.Yes && IsTerminal(os.Stdin) && IsTerminal(os.Stderr)
	if interactive {
		return NewTUICallback(flags.Mode == core.OutputVerbose)
	}
	return NewNonInteractiveTUICallback(flags)
}
