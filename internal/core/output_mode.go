package core

// OutputMode controls how diagnostics are displayed
type OutputMode int

// OutputMode constants define available output formatting modes.
const (
	OutputNormal  OutputMode = iota // Default: styled output
	OutputQuiet                     // Errors only
	OutputJSON                      // Structured JSON diagnostics
	OutputVerbose                   // Normal plus per-source resolution detail
)

// NonInteractiveFlags groups all non-interactive options
type NonInteractiveFlags struct {
	Yes  bool       // Auto-approve prompts
	Mode OutputMode // Output formatting mode
}

// JSONOutput represents a structured diagnostic line
type JSONOutput struct {
	Status  string                 `json:"status"`            // "success", "error", "warning", "info"
	Message string                 `json:"message,omitempty"` // Optional message
	Data    map[string]interface{} `json:"data,omitempty"`    // Command-specific data
	Error   *JSONError             `json:"error,omitempty"`   // Error details
}

// JSONError represents error information in JSON output
type JSONError struct {
	Title   string `json:"title"`   // Error title
	Message string `json:"message"` // Error message
}
