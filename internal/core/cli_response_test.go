package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestCLIErrorCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"manifest", &ManifestError{Path: ".", Err: ErrManifestNotFound}, ErrCodeManifest},
		{"wrapped manifest", fmt.Errorf("audit: %w", &ManifestError{Path: "uv.lock", Err: errors.New("bad")}), ErrCodeManifest},
		{"policy", &PolicyConfigError{Source: "p.yml", Err: errors.New("bad rule")}, ErrCodePolicy},
		{"environment", &UnsupportedEnvironmentError{OS: "plan9", Arch: "386"}, ErrCodeEnvironment},
		{"format", fmt.Errorf("%w: %q", ErrUnknownFormat, "xml"), ErrCodeInvalidArguments},
		{"usage", fmt.Errorf("%w: --workers needs a number", ErrInvalidArguments), ErrCodeInvalidArguments},
		{"cancelled", fmt.Errorf("audit cancelled: %w", context.Canceled), ErrCodeCancelled},
		{"deadline", context.DeadlineExceeded, ErrCodeCancelled},
		{"other", errors.New("disk on fire"), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CLIErrorCodeForError(tt.err); got != tt.wantCode {
				t.Errorf("CLIErrorCodeForError() = %s, want %s", got, tt.wantCode)
			}
			if got := CLIExitCodeForError(tt.err); got != ExitFatal {
				t.Errorf("CLIExitCodeForError() = %d, want %d", got, ExitFatal)
			}
		})
	}

	if got := CLIExitCodeForError(nil); got != ExitSuccess {
		t.Errorf("CLIExitCodeForError(nil) = %d", got)
	}
}

func TestEmitCLIError(t *testing.T) {
	var buf bytes.Buffer
	code := EmitCLIError(&buf, &PolicyConfigError{Source: "strict.yml", Err: errors.New("rule 1: license pattern is empty")})
	if code != ExitFatal {
		t.Errorf("exit code = %d", code)
	}

	var resp CLIResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if resp.Success || resp.Data != nil || resp.Error == nil {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Error.Code != ErrCodePolicy || resp.Error.Message != "policy strict.yml: rule 1: license pattern is empty" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestEmitCLISuccess(t *testing.T) {
	var buf bytes.Buffer
	if err := EmitCLISuccess(&buf, map[string]int{"added": 2}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"success\": true,\n  \"data\": {\n    \"added\": 2\n  }\n}\n"
	if buf.String() != want {
		t.Errorf("EmitCLISuccess() =\n%s\nwant\n%s", buf.String(), want)
	}
}
