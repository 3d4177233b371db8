package driver

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"svelab/internal/source"
)

// Bump when DiskPayload changes shape.
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists per-file pipeline metadata keyed by content hash,
// so repeated runs can tell untouched inputs from changed ones without
// re-reading diagnostics. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached record.
type DiskPayload struct {
	Schema uint16

	Path       string
	Hash       [32]byte
	TokenCount int
	DiagCount  int
	HasErrors  bool
}

// OpenDiskCache initializes the cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt uses an explicit directory (tests).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(hash [32]byte) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(hash[:])+".bin")
}

// Record stores the pipeline outcome for one file.
func (c *DiskCache) Record(file *source.File, res *FileResult) {
	if c == nil || file == nil || res == nil {
		return
	}
	payload := DiskPayload{
		Schema:     diskCacheSchemaVersion,
		Path:       file.Path,
		Hash:       file.Hash,
		TokenCount: len(res.Tokens),
		DiagCount:  res.Bag.Len(),
		HasErrors:  res.Bag.HasErrors(),
	}

	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.pathFor(file.Hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}

// Lookup fetches the record for a content hash, if present and current.
func (c *DiskCache) Lookup(hash [32]byte) (*DiskPayload, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(hash))
	if err != nil {
		return nil, false
	}
	var payload DiskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	return &payload, true
}

// Clear removes every cached record.
func (c *DiskCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.RemoveAll(filepath.Join(c.dir, "files"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
