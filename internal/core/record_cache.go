package core

import (
	"sync"

	"github.com/EmundoT/license-auditor/internal/types"
)

//go:generate mockgen -source=record_cache.go -destination=record_cache_mock_test.go -package=core

// RecordCache persists resolved license records across runs.
type RecordCache interface {
	// Get returns the cached record for dep, with ok=false on a miss.
	Get(dep types.Dependency) (types.LicenseRecord, bool)
	// Put stores a resolved record. Unresolved records are ignored.
	Put(record types.LicenseRecord) error
}

// runCache memoizes one resolution per dependency key for the lifetime of a run.
// Concurrent callers for the same key block on the first caller's resolution
// and share its record.
type runCache struct {
	entries sync.Map // key -> *runEntry
}

type runEntry struct {
	once   sync.Once
	record types.LicenseRecord
}

func (c *runCache) getOrResolve(key string, resolve func() types.LicenseRecord) types.LicenseRecord {
	v, _ := c.entries.LoadOrStore(key, &runEntry{})
	entry := v.(*runEntry)
	entry.once.Do(func() {
		entry.record = resolve()
	})
	return entry.record
}
