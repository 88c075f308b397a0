package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ResolveFunc resolves a single dependency. It never fails: an unanswered
// dependency yields an unresolved record.
type ResolveFunc func(ctx context.Context, dep types.Dependency) types.LicenseRecord

// ParallelExecutor runs dependency resolution on a bounded worker pool
type ParallelExecutor struct {
	maxWorkers int
	ui         UICallback
}

// NewParallelExecutor creates a new parallel executor.
// maxWorkers <= 0 selects runtime.NumCPU(); the pool never exceeds MaxResolveWorkers.
func NewParallelExecutor(maxWorkers int, ui UICallback) *ParallelExecutor {
	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxResolveWorkers {
		workers = MaxResolveWorkers
	}
	if ui == nil {
		ui = &SilentUICallback{}
	}

	return &ParallelExecutor{
		maxWorkers: workers,
		ui:         ui,
	}
}

// Workers returns the effective pool size
func (p *ParallelExecutor) Workers() int {
	return p.maxWorkers
}

type resolveJob struct {
	index int
	dep   types.Dependency
}

type resolveResult struct {
	index  int
	record types.LicenseRecord
}

// ExecuteParallelResolve resolves deps concurrently and returns the records in input order.
// ctx controls cancellation: once cancelled, remaining jobs are recorded as unresolved
// and ctx.Err() is returned alongside the partial results.
func (p *ParallelExecutor) ExecuteParallelResolve(
	ctx context.Context,
	deps []types.Dependency,
	resolveFunc ResolveFunc,
) ([]types.LicenseRecord, error) {
	if len(deps) == 0 {
		return nil, nil
	}

	workerCount := p.maxWorkers
	if workerCount > len(deps) {
		workerCount = len(deps)
	}

	jobs := make(chan resolveJob, len(deps))
	results := make(chan resolveResult, len(deps))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go p.resolveWorker(ctx, &wg, jobs, results, resolveFunc)
	}

	for i, dep := range deps {
		jobs <- resolveJob{index: i, dep: dep}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	progress := p.ui.StartProgress(len(deps), "Resolving licenses")
	records := make([]types.LicenseRecord, len(deps))
	for result := range results {
		records[result.index] = result.record
		progress.Resolved(result.record)
	}

	if err := ctx.Err(); err != nil {
		progress.Fail(err)
		return records, err
	}
	progress.Complete()
	return records, nil
}

// resolveWorker processes jobs until the channel is drained.
// ctx is checked before each dependency.
func (p *ParallelExecutor) resolveWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan resolveJob,
	results chan<- resolveResult,
	resolveFunc ResolveFunc,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- resolveResult{
				index: job.index,
				record: types.LicenseRecord{
					Dependency: job.dep,
					Source:     types.SourceUnresolved,
					Detail:     err.Error(),
				},
			}
			continue
		}

		results <- resolveResult{
			index:  job.index,
			record: resolveFunc(ctx, job.dep),
		}
	}
}
