// Package cache persists per-file findings keyed by modification time
// so unchanged files skip the detector pass on repeat scans.
package cache

import (
	"encoding/json"
	"os"

	"github.com/dehvCurtis/RustDefend/internal/model"
)

const formatVersion = 1

// Entry holds one file's cached findings. Findings are stored after
// suppression markers are applied but before confidence filtering.
type Entry struct {
	MtimeUnix int64           `json:"mtimeUnix"`
	Findings  []model.Finding `json:"findings"`
}

// ScanCache is the on-disk cache document.
type ScanCache struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

func New() *ScanCache {
	return &ScanCache{Version: formatVersion, Entries: map[string]Entry{}}
}

// Lookup returns cached findings when the stored mtime matches
// exactly. Any drift counts as a full miss.
func (c *ScanCache) Lookup(path string, mtimeUnix int64) ([]model.Finding, bool) {
	entry, ok := c.Entries[path]
	if !ok || entry.MtimeUnix != mtimeUnix {
		return nil, false
	}
	return entry.Findings, true
}

func (c *ScanCache) Store(path string, mtimeUnix int64, findings []model.Finding) {
	c.Entries[path] = Entry{MtimeUnix: mtimeUnix, Findings: findings}
}

// Load reads a cache file. A missing, unreadable, corrupt, or
// version-mismatched file degrades to an empty cache, never an error.
func Load(path string) *ScanCache {
	raw, err := os.ReadFile(path)
	if err != nil {
		return New()
	}
	var c ScanCache
	if err := json.Unmarshal(raw, &c); err != nil || c.Version != formatVersion || c.Entries == nil {
		return New()
	}
	return &c
}

func Save(c *ScanCache, path string) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
