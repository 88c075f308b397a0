package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EmundoT/license-auditor/internal/types"
)

var (
	progressStyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	progressStyleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	progressStyleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	progressStyleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// ========================================
// Resolution Tally
// ========================================

// resolutionTally counts resolved records by the source that answered.
type resolutionTally struct {
	done       int
	total      int
	unresolved int
	bySource   map[types.ResolutionSource]int
}

func newResolutionTally(total int) resolutionTally {
	return resolutionTally{total: total, bySource: make(map[types.ResolutionSource]int)}
}

func (t *resolutionTally) add(record types.LicenseRecord) {
	t.done++
	if !record.Resolved() {
		t.unresolved++
		return
	}
	if t.bySource == nil {
		t.bySource = make(map[types.ResolutionSource]int)
	}
	t.bySource[record.Source]++
}

// summary renders "12/14 (metadata 9, repo 1, registry 2, unresolved 2)".
// Sources that answered nothing are left out.
func (t resolutionTally) summary() string {
	parts := make([]string, 0, 4)
	for _, s := range []struct {
		source types.ResolutionSource
		label  string
	}{
		{types.SourcePackageMetadata, "metadata"},
		{types.SourceRepo, "repo"},
		{types.SourceRegistryFallback, "registry"},
	} {
		if n := t.bySource[s.source]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", s.label, n))
		}
	}
	if t.unresolved > 0 {
		parts = append(parts, fmt.Sprintf("unresolved %d", t.unresolved))
	}
	counts := fmt.Sprintf("%d/%d", t.done, t.total)
	if len(parts) == 0 {
		return counts
	}
	return counts + " (" + strings.Join(parts, ", ") + ")"
}

// recordLine describes one resolved record, e.g. "requests@2.31.0 Apache-2.0 [package_metadata]".
func recordLine(record types.LicenseRecord) string {
	if !record.Resolved() {
		return record.Dependency.String() + " (unresolved)"
	}
	return fmt.Sprintf("%s %s [%s]", record.Dependency, strings.Join(record.RawLicense, "; "), record.Source)
}

// ========================================
// Bubbletea Progress Model
// ========================================

// progressModel renders a resolution progress bar with the last resolved dependency
type progressModel struct {
	tally  resolutionTally
	label  string
	last   string
	done   bool
	failed bool
	err    error
	width  int
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case resolvedMsg:
		m.tally.add(msg.record)
		m.last = recordLine(msg.record)
	case progressCompleteMsg:
		m.done = true
		return m, tea.Quit
	case progressFailMsg:
		m.failed = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return progressStyleSuccess.Render(fmt.Sprintf("✓ %s: %s", m.label, m.tally.summary()))
	}
	if m.failed {
		return progressStyleErr.Render(fmt.Sprintf("✗ %s stopped at %d/%d: %v", m.label, m.tally.done, m.tally.total, m.err))
	}

	percent := 0.0
	if m.tally.total > 0 {
		percent = float64(m.tally.done) / float64(m.tally.total)
	}
	if percent > 1 {
		percent = 1
	}
	barWidth := 40
	if m.width < 80 {
		barWidth = 20
	}
	filled := int(percent * float64(barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	status := fmt.Sprintf("[%s] %s", bar, m.tally.summary())
	if m.last != "" {
		status += "\n" + progressStyleMuted.Render(m.last)
	}
	return fmt.Sprintf("%s\n%s", progressStyleTitle.Render(m.label), status)
}

// ========================================
// Bubbletea Messages
// ========================================

type resolvedMsg struct {
	record types.LicenseRecord
}

type progressCompleteMsg struct{}

type progressFailMsg struct {
	err error
}

// ========================================
// BubbletaeProgressTracker Implementation
// ========================================

// BubbletaeProgressTracker renders resolution progress with bubbletea on stderr
type BubbletaeProgressTracker struct {
	program *tea.Program
}

// NewBubbletaeProgressTracker starts the progress program for total dependencies
func NewBubbletaeProgressTracker(total int, label string) *BubbletaeProgressTracker {
	m := progressModel{
		tally: newResolutionTally(total),
		label: label,
		width: 80,
	}

	// The report owns stdout and prompts own stdin.
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	go func() {
		_, _ = p.Run()
	}()

	return &BubbletaeProgressTracker{program: p}
}

// Resolved records one finished dependency.
func (t *BubbletaeProgressTracker) Resolved(record types.LicenseRecord) {
	t.program.Send(resolvedMsg{record: record})
}

// Complete renders the final tally.
func (t *BubbletaeProgressTracker) Complete() {
	t.program.Send(progressCompleteMsg{})
	time.Sleep(100 * time.Millisecond) // Allow final render
}

// Fail renders the interruption.
func (t *BubbletaeProgressTracker) Fail(err error) {
	t.program.Send(progressFailMsg{err: err})
	time.Sleep(100 * time.Millisecond) // Allow final render
}

// ========================================
// Text Progress (Non-TTY)
// ========================================

// TextProgressTracker prints one line per resolved dependency
type TextProgressTracker struct {
	tally resolutionTally
	label string
}

// NewTextProgressTracker creates a new text progress tracker
func NewTextProgressTracker(total int, label string) *TextProgressTracker {
	fmt.Fprintf(diagOut, "%s: %d dependencies\n", label, total)
	return &TextProgressTracker{tally: newResolutionTally(total), label: label}
}

// Resolved prints "[n/total] <dependency> <license> [source]".
func (t *TextProgressTracker) Resolved(record types.LicenseRecord) {
	t.tally.add(record)
	fmt.Fprintf(diagOut, "  [%d/%d] %s\n", t.tally.done, t.tally.total, recordLine(record))
}

// Complete prints the tally by resolution source.
func (t *TextProgressTracker) Complete() {
	fmt.Fprintf(diagOut, "✓ %s: %s\n", t.label, t.tally.summary())
}

// Fail prints how far resolution got.
func (t *TextProgressTracker) Fail(err error) {
	fmt.Fprintf(diagOut, "✗ %s stopped at %d/%d: %v\n", t.label, t.tally.done, t.tally.total, err)
}

// ========================================
// No-Op Progress (Quiet/JSON)
// ========================================

// NoOpProgressTracker does nothing (for quiet/JSON/testing modes)
type NoOpProgressTracker struct{}

// NewNoOpProgressTracker creates a new no-op progress tracker
func NewNoOpProgressTracker() *NoOpProgressTracker {
	return &NoOpProgressTracker{}
}

func (t *NoOpProgressTracker) Resolved(_ types.LicenseRecord) {}
func (t *NoOpProgressTracker) Complete()                      {}
func (t *NoOpProgressTracker) Fail(_ error)                   {}
