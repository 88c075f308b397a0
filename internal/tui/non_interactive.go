package tui

import (
	"encoding/json"
	"fmt"

	"github.com/EmundoT/license-auditor/internal/core"
)

// NonInteractiveTUICallback handles non-interactive mode output.
// Diagnostics are plain lines, or JSON lines in JSON mode, on stderr.
type NonInteractiveTUICallback struct {
	flags core.NonInteractiveFlags
}

var _ core.UICallback = (*NonInteractiveTUICallback)(nil)

// NewNonInteractiveTUICallback creates a new non-interactive callback
func NewNonInteractiveTUICallback(flags core.NonInteractiveFlags) *NonInteractiveTUICallback {
	return &NonInteractiveTUICallback{flags: flags}
}

// ShowError displays an error message. Errors are shown even in quiet mode.
func (n *NonInteractiveTUICallback) ShowError(title, message string) {
	if n.flags.Mode == core.OutputJSON {
		_ = n.FormatJSON(core.JSONOutput{ //nolint:errcheck
			Status: "error",
			Error: &core.JSONError{
				Title:   title,
				Message: message,
			},
		})
		return
	}
	fmt.Fprintf(diagOut, "Error: %s - %s\n", title, message)
}

// ShowSuccess displays a success message
func (n *NonInteractiveTUICallback) ShowSuccess(message string) {
	switch n.flags.Mode {
	case core.OutputJSON:
		_ = n.FormatJSON(core.JSONOutput{Status: "success", Message: message}) //nolint:errcheck
	case core.OutputQuiet:
	default:
		fmt.Fprintln(diagOut, message)
	}
}

// ShowWarning displays a warning message
func (n *NonInteractiveTUICallback) ShowWarning(title, message string) {
	switch n.flags.Mode {
	case core.OutputJSON:
		_ = n.FormatJSON(core.JSONOutput{ //nolint:errcheck
			Status:  "warning",
			Message: fmt.Sprintf("%s: %s", title, message),
		})
	case core.OutputQuiet:
	default:
		fmt.Fprintf(diagOut, "Warning: %s - %s\n", title, message)
	}
}

// ShowInfo displays an informational line (not in quiet or JSON mode)
func (n *NonInteractiveTUICallback) ShowInfo(message string) {
	if n.flags.Mode == core.OutputNormal || n.flags.Mode == core.OutputVerbose {
		fmt.Fprintln(diagOut, message)
	}
}

// AskConfirmation handles confirmation prompts
func (n *NonInteractiveTUICallback) AskConfirmation(title, message string) bool {
	if n.flags.Yes {
		return true // Auto-approve
	}
	// In non-interactive mode without --yes, fail for safety
	n.ShowError("Interactive Prompt Required",
		fmt.Sprintf("%s: %s\nUse --yes to auto-approve", title, message))
	return false
}

// AskInput cannot prompt; callers keep their default value.
func (n *NonInteractiveTUICallback) AskInput(_, _ string) (string, bool) {
	return "", false
}

// StyleTitle returns a styled title (no styling in non-interactive mode)
func (n *NonInteractiveTUICallback) StyleTitle(title string) string {
	// Return plain text in non-interactive mode
	return title
}

// GetOutputMode returns the current output mode
func (n *NonInteractiveTUICallback) GetOutputMode() core.OutputMode {
	return n.flags.Mode
}

// IsAutoApprove returns whether auto-approve is enabled
func (n *NonInteractiveTUICallback) IsAutoApprove() bool {
	return n.flags.Yes
}

// FormatJSON writes one JSON diagnostic line to stderr
func (n *NonInteractiveTUICallback) FormatJSON(output core.JSONOutput) error {
	return json.NewEncoder(diagOut).Encode(output)
}

// StartProgress prints text progress in verbose mode only; CI logs stay short otherwise.
func (n *NonInteractiveTUICallback) StartProgress(total int, label string) core.ProgressTracker {
	if n.flags.Mode != core.OutputVerbose || total == 0 {
		return NewNoOpProgressTracker()
	}
	return NewTextProgressTracker(total, label)
}
