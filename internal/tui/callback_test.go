package tui

import (
	"strings"
	"testing"

	"github.com/EmundoT/license-auditor/internal/core"
)

func TestTUICallback_ShowError(t *testing.T) {
	cb := NewTUICallback(false)
	output := captureOutput(func() {
		cb.ShowError("Manifest Error", "uv.lock: bad toml")
	})
	if !strings.Contains(output, "Manifest Error") {
		t.Errorf("ShowError output missing title, got: %q", output)
	}
	if !strings.Contains(output, "uv.lock: bad toml") {
		t.Errorf("ShowError output missing message, got: %q", output)
	}
}

func TestTUICallback_ShowSuccess(t *testing.T) {
	cb := NewTUICallback(false)
	output := captureOutput(func() {
		cb.ShowSuccess("all good")
	})
	if !strings.Contains(output, "all good") {
		t.Errorf("ShowSuccess output missing message, got: %q", output)
	}
}

func TestTUICallback_ShowWarning(t *testing.T) {
	cb := NewTUICallback(false)
	output := captureOutput(func() {
		cb.ShowWarning("Resolution Timeout", "requests@2.31.0 via pypi")
	})
	if !strings.Contains(output, "Resolution Timeout") {
		t.Errorf("ShowWarning output missing title, got: %q", output)
	}
	if !strings.Contains(output, "requests@2.31.0 via pypi") {
		t.Errorf("ShowWarning output missing message, got: %q", output)
	}
}

func TestTUICallback_ShowInfo(t *testing.T) {
	cb := NewTUICallback(true)
	output := captureOutput(func() {
		cb.ShowInfo("Read 12 dependencies")
	})
	if !strings.Contains(output, "Read 12 dependencies") {
		t.Errorf("ShowInfo output missing message, got: %q", output)
	}
}

func TestTUICallback_StyleTitle(t *testing.T) {
	cb := NewTUICallback(false)
	result := cb.StyleTitle("Section Header")
	if !strings.Contains(result, "Section Header") {
		t.Errorf("StyleTitle result missing text, got: %q", result)
	}
}

func TestTUICallback_GetOutputMode(t *testing.T) {
	if mode := NewTUICallback(false).GetOutputMode(); mode != core.OutputNormal {
		t.Errorf("GetOutputMode = %v, want OutputNormal", mode)
	}
	if mode := NewTUICallback(true).GetOutputMode(); mode != core.OutputVerbose {
		t.Errorf("GetOutputMode = %v, want OutputVerbose", mode)
	}
}

func TestTUICallback_IsAutoApprove(t *testing.T) {
	if NewTUICallback(false).IsAutoApprove() {
		t.Error("IsAutoApprove should return false for interactive mode")
	}
}

func TestTUICallback_FormatJSON(t *testing.T) {
	cb := NewTUICallback(false)
	if err := cb.FormatJSON(core.JSONOutput{Status: "test"}); err != nil {
		t.Errorf("FormatJSON should return nil in interactive mode, got: %v", err)
	}
}

func TestTUICallback_StartProgress_ZeroTotal(t *testing.T) {
	tracker := NewTUICallback(false).StartProgress(0, "Resolving licenses")
	if _, ok := tracker.(*NoOpProgressTracker); !ok {
		t.Errorf("StartProgress(0) = %T, want *NoOpProgressTracker", tracker)
	}
}

func TestNewCallback_NonTerminal(t *testing.T) {
	// Test binaries never run with a terminal on stdin and stderr.
	cb := NewCallback(core.NonInteractiveFlags{Mode: core.OutputNormal})
	if _, ok := cb.(*NonInteractiveTUICallback); !ok {
		t.Errorf("NewCallback = %T, want *NonInteractiveTUICallback", cb)
	}

	cb = NewCallback(core.NonInteractiveFlags{Mode: core.OutputJSON, Yes: true})
	if !cb.IsAutoApprove() {
		t.Error("NewCallback should keep the --yes flag")
	}
	if cb.GetOutputMode() != core.OutputJSON {
		t.Errorf("GetOutputMode = %v, want OutputJSON", cb.GetOutputMode())
	}
}

func TestPrintHelp(t *testing.T) {
	var sb strings.Builder
	PrintHelp(&sb, "1.2.3")
	out := sb.String()
	for _, want := range []string{"1.2.3", "check", "init", "fix", "config", "completion", "--fail-on-unknown", "Exit codes"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintHelp output missing %q", want)
		}
	}
}
