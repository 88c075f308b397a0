package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common error conditions.
// These can be used with errors.Is() for error type checking.
var (
	// ErrManifestNotFound indicates no recognized lockfile or installed environment exists
	ErrManifestNotFound = errors.New("no recognized lockfile found (uv.lock, poetry.lock, package-lock.json) and no installed environment")

	// ErrUnsupportedEnvironment indicates the OS/architecture pair is not supported
	ErrUnsupportedEnvironment = errors.New("unsupported platform")

	// ErrInvalidPolicy indicates the policy configuration failed validation
	ErrInvalidPolicy = errors.New("invalid policy configuration")

	// ErrUnknownFormat indicates an unsupported report format was requested
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrInvalidArguments indicates a malformed command line
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ManifestError reports an unreadable, missing or malformed manifest.
// ManifestError is fatal: the run aborts before resolution.
type ManifestError struct {
	Path string // File or directory the error refers to
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest: %v", e.Err)
	}
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// PolicyConfigError reports an invalid policy. Err is usually a *multierror.Error
// listing every problem found.
type PolicyConfigError struct {
	Source string // Policy file path, preset name or "default"
	Err    error
}

func (e *PolicyConfigError) Error() string {
	return fmt.Sprintf("policy %s: %v", e.Source, e.Err)
}

func (e *PolicyConfigError) Unwrap() []error { return []error{ErrInvalidPolicy, e.Err} }

// ResolutionTimeout reports a resolution attempt that exceeded its deadline.
// ResolutionTimeout is recovered locally: the source is treated as having no answer.
type ResolutionTimeout struct {
	Package string
	Source  string
	After   time.Duration
	Err     error
}

func (e *ResolutionTimeout) Error() string {
	return fmt.Sprintf("resolving %s via %s timed out after %s", e.Package, e.Source, e.After)
}

func (e *ResolutionTimeout) Unwrap() error { return e.Err }

// UnsupportedEnvironmentError reports an OS/architecture pair outside the supported table.
type UnsupportedEnvironmentError struct {
	OS   string
	Arch string
}

func (e *UnsupportedEnvironmentError) Error() string {
	return fmt.Sprintf("%v: %s/%s (supported: %s)", ErrUnsupportedEnvironment, e.OS, e.Arch, strings.Join(SupportedPlatforms(), ", "))
}

func (e *UnsupportedEnvironmentError) Unwrap() error { return ErrUnsupportedEnvironment }

// IsManifestError reports whether err is or wraps a *ManifestError.
func IsManifestError(err error) bool {
	var e *ManifestError
	return errors.As(err, &e)
}

// IsPolicyConfigError reports whether err is or wraps a *PolicyConfigError.
func IsPolicyConfigError(err error) bool {
	var e *PolicyConfigError
	return errors.As(err, &e)
}

// IsResolutionTimeout reports whether err is or wraps a *ResolutionTimeout.
func IsResolutionTimeout(err error) bool {
	var e *ResolutionTimeout
	return errors.As(err, &e)
}

// IsUnsupportedEnvironment reports whether err is or wraps an unsupported platform error.
func IsUnsupportedEnvironment(err error) bool {
	return errors.Is(err, ErrUnsupportedEnvironment)
}
