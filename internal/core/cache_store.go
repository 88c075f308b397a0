package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/EmundoT/license-auditor/internal/types"
)

var _ RecordCache = (*FileRecordCache)(nil)

// cachedRecord is the on-disk form of a resolved LicenseRecord.
type cachedRecord struct {
	Key        string                 `json:"key"`
	RawLicense []string               `json:"raw_license"`
	Source     types.ResolutionSource `json:"resolution_source"`
	Detail     string                 `json:"detail,omitempty"`
	CachedAt   string                 `json:"cached_at"`
}

// FileRecordCache implements RecordCache using one JSON file per dependency,
// with an in-memory LRU in front of the directory.
type FileRecordCache struct {
	dir    string
	memory *lru.Cache[string, types.LicenseRecord]
}

// DefaultCacheDir returns the per-user record cache directory
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache directory: %w", err)
	}
	return filepath.Join(base, CacheDirName, "records"), nil
}

// NewFileRecordCache creates a cache rooted at dir. An empty dir selects DefaultCacheDir.
func NewFileRecordCache(dir string) (*FileRecordCache, error) {
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	memory, err := lru.New[string, types.LicenseRecord](recordCacheSize)
	if err != nil {
		return nil, err
	}
	return &FileRecordCache{dir: dir, memory: memory}, nil
}

// Dir returns the cache directory
func (c *FileRecordCache) Dir() string {
	return c.dir
}

// cachePath returns the cache file path for a dependency key
func (c *FileRecordCache) cachePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached record for dep. Corrupted or mismatched files count as misses.
func (c *FileRecordCache) Get(dep types.Dependency) (types.LicenseRecord, bool) {
	key := dep.Key()
	if rec, ok := c.memory.Get(key); ok {
		rec.Dependency = dep
		return rec, true
	}

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return types.LicenseRecord{}, false
	}

	var cached cachedRecord
	if err := json.Unmarshal(data, &cached); err != nil || cached.Key != key || len(cached.RawLicense) == 0 {
		return types.LicenseRecord{}, false
	}

	rec := types.LicenseRecord{
		Dependency: dep,
		RawLicense: cached.RawLicense,
		Source:     cached.Source,
		Detail:     cached.Detail,
	}
	c.memory.Add(key, rec)
	return rec, true
}

// Put writes a resolved record. Unresolved records are not persisted so that a
// later run retries them.
func (c *FileRecordCache) Put(record types.LicenseRecord) error {
	if !record.Resolved() {
		return nil
	}
	key := record.Dependency.Key()

	data, err := json.MarshalIndent(cachedRecord{
		Key:        key,
		RawLicense: record.RawLicense,
		Source:     record.Source,
		Detail:     record.Detail,
		CachedAt:   time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache record: %w", err)
	}

	if err := writeFileAtomic(c.cachePath(key), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	c.memory.Add(key, record)
	return nil
}
