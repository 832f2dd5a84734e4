package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/otcheck/pkg/core"
)

const indexVersion = 1

// indexEntry is the remembered verdict of one case file.
type indexEntry struct {
	Name         string       `json:"name"`
	Verdict      core.Verdict `json:"verdict"`
	LastModified time.Time    `json:"lastModified"`
}

// index is the persistent cache state.
type index struct {
	Version int `json:"version"`
	// Profile identifies the validator settings the verdicts were computed with.
	Profile string                 `json:"profile"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by slash separated relative path
	dirty   bool
	gen     uint64 // bumped on every change; Save only clears dirty for the generation it wrote
	mu      sync.RWMutex
}

// cache manages the loading, updating and saving of the verdict index.
type cache struct {
	Path    string // {root}/{systemDir}/index.json
	profile string
	index   *index
	saveMu  sync.Mutex // orders concurrent writers of the file
}

func newCache(root, systemDir, profile string) *cache {
	return &cache{
		Path:    filepath.Join(root, systemDir, "index.json"),
		profile: profile,
		index: &index{
			Version: indexVersion,
			Profile: profile,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing, corrupt or foreign index yields
// an empty cache, not an error.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded struct {
		Version int                    `json:"version"`
		Profile string                 `json:"profile"`
		Entries map[string]*indexEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != indexVersion || loaded.Profile != c.profile {
		c.index.Entries = make(map[string]*indexEntry)
		c.index.touch()
		return nil
	}
	if loaded.Entries == nil {
		loaded.Entries = make(map[string]*indexEntry)
	}

	c.index.Entries = loaded.Entries
	c.index.dirty = false
	return nil
}

// Save persists the cache if it changed since the last Load or Save.
func (c *cache) Save() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	data, gen, ok, err := c.snapshot()
	if err != nil || !ok {
		return err
	}

	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.markSaved(gen)
	return nil
}

// snapshot encodes the index and returns the generation it reflects.
// ok is false when there is nothing to write.
func (c *cache) snapshot() (data []byte, gen uint64, ok bool, err error) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	if !c.index.dirty {
		return nil, 0, false, nil
	}
	data, err = json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return nil, 0, false, err
	}
	return data, c.index.gen, true, nil
}

// markSaved clears dirty unless the index changed after the snapshot of gen.
func (c *cache) markSaved(gen uint64) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if c.index.gen == gen {
		c.index.dirty = false
	}
}

// touch records a change. Callers hold the write lock.
func (idx *index) touch() {
	idx.dirty = true
	idx.gen++
}

// Get returns the entry for relPath when it was recorded for currentMtime.
func (c *cache) Get(relPath string, currentMtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok {
		return nil, false
	}
	if !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}
	return entry, true
}

// Set updates an entry in the cache.
func (c *cache) Set(relPath string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[relPath] = entry
	c.index.touch()
}

// Prune removes entries that are not in the keep set.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for path := range c.index.Entries {
		if !keep[path] {
			delete(c.index.Entries, path)
			c.index.touch()
		}
	}
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(relPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.index.touch()
	}
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
