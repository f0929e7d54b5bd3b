package workspace

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ftex/internal/index"
)

// diskCacheSchemaVersion is bumped whenever CachePayload's shape changes,
// so a stale on-disk entry is rejected rather than misread.
const diskCacheSchemaVersion uint16 = 1

// CachePayload is what gets persisted per content hash: the symbols
// internal/index.Extract produced for one file's CST. Re-running
// cst.Build+index.Extract is deterministic in the file's bytes apart from
// the FileID stamped on each symbol, which the workspace rebinds on a hit,
// so a cache hit can skip both stages entirely for unchanged content.
type CachePayload struct {
	Schema  uint16
	Symbols []index.Symbol
}

// DiskCache stores CachePayload blobs keyed by content hash (source.File.Hash)
// under a workspace-app cache directory: schema-versioned msgpack payloads,
// atomic write via a temp file plus rename, content-hash keys so a stale
// entry simply never matches instead of needing explicit invalidation.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if necessary) the on-disk cache for app at
// the standard XDG cache location (e.g. OpenDiskCache("ftex")).
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

func (c *DiskCache) pathFor(hash [32]byte) string {
	return filepath.Join(c.dir, "docs", hex.EncodeToString(hash[:])+".mp")
}

// Put serializes and atomically writes payload for hash.
func (c *DiskCache) Put(hash [32]byte, symbols []index.Symbol) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	payload := &CachePayload{Schema: diskCacheSchemaVersion, Symbols: symbols}
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads back the symbols cached for hash, if present and of the
// current schema version.
func (c *DiskCache) Get(hash [32]byte) ([]index.Symbol, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return payload.Symbols, true, nil
}

// DropAll invalidates the entire cache, e.g. after a schema bump.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
