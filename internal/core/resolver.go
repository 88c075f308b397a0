package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EmundoT/license-auditor/internal/types"
)

//go:generate mockgen -source=resolver.go -destination=license_source_mock_test.go -package=core

// LicenseSource is one metadata resolution strategy.
// Attempt returns a nil record when the source has no answer for dep.
type LicenseSource interface {
	Name() string
	Attempt(ctx context.Context, dep types.Dependency) (*types.LicenseRecord, error)
}

// ResolverOptions configures a Resolver
type ResolverOptions struct {
	// Workers bounds ResolveAll concurrency; 0 selects the default.
	Workers int
	// Timeout bounds each source attempt; 0 selects DefaultResolveTimeout.
	Timeout time.Duration
	// Cache is consulted before the sources. Nil disables persistent caching.
	Cache RecordCache
}

// Resolver turns dependencies into license records by trying an ordered list of sources.
type Resolver struct {
	sources  []LicenseSource
	cache    RecordCache
	timeout  time.Duration
	executor *ParallelExecutor
	ui       UICallback
	run      runCache
}

// NewResolver creates a Resolver trying sources in order.
func NewResolver(sources []LicenseSource, opts ResolverOptions, ui UICallback) *Resolver {
	if ui == nil {
		ui = &SilentUICallback{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Resolver{
		sources:  sources,
		cache:    opts.Cache,
		timeout:  timeout,
		executor: NewParallelExecutor(opts.Workers, ui),
		ui:       ui,
	}
}

// Sources returns the source names in resolution order
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the license record for dep. The first resolution of a
// dependency is memoized for the lifetime of the Resolver.
func (r *Resolver) Resolve(ctx context.Context, dep types.Dependency) types.LicenseRecord {
	return r.run.getOrResolve(dep.Key(), func() types.LicenseRecord {
		return r.resolve(ctx, dep)
	})
}

// ResolveAll resolves deps on the worker pool and returns records in input order.
// The only error is ctx's when the run is cancelled.
func (r *Resolver) ResolveAll(ctx context.Context, deps []types.Dependency) ([]types.LicenseRecord, error) {
	return r.executor.ExecuteParallelResolve(ctx, deps, r.Resolve)
}

func (r *Resolver) resolve(ctx context.Context, dep types.Dependency) types.LicenseRecord {
	if r.cache != nil {
		if rec, ok := r.cache.Get(dep); ok {
			return rec
		}
	}

	for _, src := range r.sources {
		if ctx.Err() != nil {
			break
		}

		rec, err := r.attempt(ctx, src, dep)
		if err != nil {
			if IsResolutionTimeout(err) {
				r.ui.ShowWarning("Resolution Timeout", err.Error())
			} else if r.ui.GetOutputMode() == OutputVerbose {
				r.ui.ShowWarning("Resolution Failed", fmt.Sprintf("%s via %s: %v", dep, src.Name(), err))
			}
			continue
		}
		if rec == nil || !rec.Resolved() {
			continue
		}

		rec.Dependency = dep
		if r.cache != nil {
			if err := r.cache.Put(*rec); err != nil && r.ui.GetOutputMode() == OutputVerbose {
				r.ui.ShowWarning("Cache Write Failed", err.Error())
			}
		}
		return *rec
	}

	detail := "no source reported a license"
	if err := ctx.Err(); err != nil {
		detail = err.Error()
	}
	return types.LicenseRecord{
		Dependency: dep,
		Source:     types.SourceUnresolved,
		Detail:     detail,
	}
}

// attempt runs one source under the per-attempt deadline. A deadline hit while
// the parent context is still live becomes a *ResolutionTimeout.
func (r *Resolver) attempt(ctx context.Context, src LicenseSource, dep types.Dependency) (*types.LicenseRecord, error) {
	actx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := src.Attempt(actx, dep)
	if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		if err == nil {
			err = actx.Err()
		}
		if rec == nil || !rec.Resolved() {
			return nil, &ResolutionTimeout{
				Package: dep.String(),
				Source:  src.Name(),
				After:   r.timeout,
				Err:     err,
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
