package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ============================================================================
// Gomock Test Helpers
// ============================================================================

// setupMocks creates two ordered license sources and a record cache with gomock
func setupMocks(t *testing.T) (
	*gomock.Controller,
	*MockLicenseSource,
	*MockLicenseSource,
	*MockRecordCache,
) {
	ctrl := gomock.NewController(t)

	first := NewMockLicenseSource(ctrl)
	second := NewMockLicenseSource(ctrl)
	cache := NewMockRecordCache(ctrl)

	return ctrl, first, second, cache
}

// createTestResolver creates a Resolver with a short timeout and no persistent cache
// unless one is given.
func createTestResolver(cache RecordCache, ui UICallback, sources ...LicenseSource) *Resolver {
	return NewResolver(sources, ResolverOptions{
		Workers: 4,
		Timeout: 200 * time.Millisecond,
		Cache:   cache,
	}, ui)
}

// ============================================================================
// Fixtures
// ============================================================================

func pypiDep(name, version string) types.Dependency {
	return types.Dependency{Name: name, Version: version, Ecosystem: types.EcosystemPyPI, Scope: types.ScopeDirect}
}

func npmDep(name, version string) types.Dependency {
	return types.Dependency{Name: name, Version: version, Ecosystem: types.EcosystemNPM, Scope: types.ScopeDirect}
}

func resolvedRecord(dep types.Dependency, source types.ResolutionSource, raw ...string) *types.LicenseRecord {
	return &types.LicenseRecord{Dependency: dep, RawLicense: raw, Source: source, Detail: "test"}
}

// funcSource adapts a function to LicenseSource for tests that need real
// concurrency or blocking behaviour, which gomock expectations express poorly.
type funcSource struct {
	name string
	fn   func(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error)
}

func (s *funcSource) Name() string { return s.name }

func (s *funcSource) Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error) {
	return s.fn(ctx, dep)
}

// ============================================================================
// Recording UI
// ============================================================================

// recordingUI captures diagnostics and answers prompts from preset values.
type recordingUI struct {
	SilentUICallback

	mode    OutputMode
	confirm bool
	input   string
	yes     bool

	mu        sync.Mutex
	warnings  []string
	errors    []string
	infos     []string
	successes []string
	prompts   []string
}

func (r *recordingUI) ShowWarning(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf("%s: %s", title, message))
}

func (r *recordingUI) ShowError(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf("%s: %s", title, message))
}

func (r *recordingUI) ShowInfo(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *recordingUI) ShowSuccess(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, message)
}

func (r *recordingUI) AskConfirmation(title, _ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, title)
	return r.confirm
}

func (r *recordingUI) AskInput(title, _ string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, title)
	return r.input, r.input != ""
}

func (r *recordingUI) GetOutputMode() OutputMode { return r.mode }
func (r *recordingUI) IsAutoApprove() bool       { return r.yes }

func (r *recordingUI) warningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}
