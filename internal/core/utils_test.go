package core

import (
	"testing"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ============================================================================
// FilterVerdicts Tests
// ============================================================================

func TestFilterVerdicts(t *testing.T) {
	verdicts := []types.Verdict{
		{Dependency: types.Dependency{Name: "a"}, Classification: types.ClassAllowed},
		{Dependency: types.Dependency{Name: "b"}, Classification: types.ClassDenied},
		{Dependency: types.Dependency{Name: "c"}, Classification: types.ClassUnknown},
		{Dependency: types.Dependency{Name: "d"}, Classification: types.ClassDenied},
	}

	got := FilterVerdicts(verdicts, types.ClassDenied, types.ClassUnknown)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d verdicts, got %d", len(want), len(got))
	}
	for i, v := range got {
		if v.Dependency.Name != want[i] {
			t.Errorf("Expected verdict[%d] = %s, got %s", i, want[i], v.Dependency.Name)
		}
	}

	if got := FilterVerdicts(verdicts); len(got) != 0 {
		t.Errorf("Expected no verdicts without classes, got %d", len(got))
	}
}

// ============================================================================
// ProjectName Tests
// ============================================================================

func TestProjectName(t *testing.T) {
	dir := t.TempDir()
	if got := ProjectName(dir); got == "" || got == "project" {
		t.Errorf("ProjectName(%q) = %q, want directory base name", dir, got)
	}
	if got := ProjectName("/"); got != "project" {
		t.Errorf("ProjectName(\"/\") = %q, want \"project\"", got)
	}
}

// ============================================================================
// Pluralize Tests
// ============================================================================

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 packages"},
		{1, "1 package"},
		{2, "2 packages"},
		{100, "100 packages"},
	}

	for _, tt := range tests {
		if got := Pluralize(tt.count, "package", "packages"); got != tt.want {
			t.Errorf("Pluralize(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}
