package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// CLIResponse is the structured JSON envelope for command results that are not reports
// (config --show, fix --dry-run, and fatal errors in JSON mode).
//
// Schema:
//
//	{
//	  "success": true|false,
//	  "data": { ... },          // Command-specific payload (omitted on error)
//	  "error": {                 // Present only on failure
//	    "code": "MANIFEST_ERROR",
//	    "message": "Human-readable description"
//	  }
//	}
type CLIResponse struct {
	Success bool            `json:"success"`
	Data    interface{}     `json:"data,omitempty"`
	Error   *CLIErrorDetail `json:"error,omitempty"`
}

// CLIErrorDetail contains machine-readable error code and human-readable message.
type CLIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CLI exit codes.
const (
	ExitSuccess         = 0
	ExitPolicyViolation = 1
	ExitFatal           = 2
)

// CLI error codes for structured JSON error responses.
const (
	ErrCodeManifest         = "MANIFEST_ERROR"
	ErrCodePolicy           = "POLICY_ERROR"
	ErrCodeEnvironment      = "UNSUPPORTED_ENVIRONMENT"
	ErrCodeInvalidArguments = "INVALID_ARGUMENTS"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// EmitCLISuccess writes a successful CLIResponse as JSON.
func EmitCLISuccess(w io.Writer, data interface{}) error {
	return writeCLIResponse(w, CLIResponse{Success: true, Data: data})
}

// EmitCLIError writes an error CLIResponse for err as JSON and returns the exit code to use.
func EmitCLIError(w io.Writer, err error) int {
	_ = writeCLIResponse(w, CLIResponse{ //nolint:errcheck
		Success: false,
		Error:   &CLIErrorDetail{Code: CLIErrorCodeForError(err), Message: err.Error()},
	})
	return CLIExitCodeForError(err)
}

func writeCLIResponse(w io.Writer, resp CLIResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// CLIExitCodeForError maps a run error to the process exit code.
// Every error that aborts a run is fatal.
func CLIExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFatal
}

// CLIErrorCodeForError maps structured error types to CLI error code strings.
func CLIErrorCodeForError(err error) string {
	switch {
	case IsManifestError(err):
		return ErrCodeManifest
	case IsPolicyConfigError(err):
		return ErrCodePolicy
	case IsUnsupportedEnvironment(err):
		return ErrCodeEnvironment
	case errors.Is(err, ErrUnknownFormat), errors.Is(err, ErrInvalidArguments):
		return ErrCodeInvalidArguments
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCancelled
	default:
		return ErrCodeInternalError
	}
}
