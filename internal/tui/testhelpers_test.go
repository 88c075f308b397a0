package tui

import (
	"bytes"
)

// captureOutput runs fn with diagnostics redirected to a buffer.
func captureOutput(fn func()) string {
	old := diagOut
	var buf bytes.Buffer
	diagOut = &buf
	defer func() { diagOut = old }()
	fn()
	return buf.String()
}
