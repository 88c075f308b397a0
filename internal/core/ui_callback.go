package core

import "github.com/EmundoT/license-auditor/internal/types"

// UICallback handles user interaction and diagnostics during an audit.
// Diagnostics go to stderr; the report itself is written by EmitReport.
type UICallback interface {
	ShowError(title, message string)
	ShowSuccess(message string)
	ShowWarning(title, message string)
	ShowInfo(message string)
	AskConfirmation(title, message string) bool
	// AskInput prompts for a line of text. ok is false when the user aborted
	// or no prompt is possible.
	AskInput(title, description string) (value string, ok bool)
	StyleTitle(title string) string

	GetOutputMode() OutputMode
	IsAutoApprove() bool
	FormatJSON(output JSONOutput) error
	StartProgress(total int, label string) ProgressTracker
}

// ProgressTracker follows license resolution. Resolved is called once per
// dependency, in completion order.
type ProgressTracker interface {
	Resolved(record types.LicenseRecord)
	Complete()
	Fail(err error)
}

// SilentUICallback is a no-op implementation (for testing/CI)
type SilentUICallback struct{}

var _ UICallback = (*SilentUICallback)(nil)

func (s *SilentUICallback) ShowError(_, _ string)               {}
func (s *SilentUICallback) ShowSuccess(_ string)                {}
func (s *SilentUICallback) ShowWarning(_, _ string)             {}
func (s *SilentUICallback) ShowInfo(_ string)                   {}
func (s *SilentUICallback) AskConfirmation(_, _ string) bool    { return false }
func (s *SilentUICallback) AskInput(_, _ string) (string, bool) { return "", false }
func (s *SilentUICallback) StyleTitle(title string) string      { return title }
func (s *SilentUICallback) GetOutputMode() OutputMode           { return OutputQuiet }
func (s *SilentUICallback) IsAutoApprove() bool                 { return false }
func (s *SilentUICallback) FormatJSON(_ JSONOutput) error       { return nil }
func (s *SilentUICallback) StartProgress(_ int, _ string) ProgressTracker {
	return silentProgress{}
}

type silentProgress struct{}

func (silentProgress) Resolved(types.LicenseRecord) {}
func (silentProgress) Complete()                    {}
func (silentProgress) Fail(error)                   {}
