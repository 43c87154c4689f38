package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quartz/internal/project"
	"quartz/internal/templates"
)

// SnapshotCache stores instantiation snapshots on disk, keyed by a request
// digest. Safe for concurrent use.
type SnapshotCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenSnapshotCache initializes a cache rooted at dir.
func OpenSnapshotCache(dir string) (*SnapshotCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotCache{dir: dir}, nil
}

func (c *SnapshotCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "inst", hexKey+".mp")
}

// Put serializes and writes a snapshot, replacing the file atomically.
func (c *SnapshotCache) Put(key project.Digest, snap templates.Snapshot) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	if err := templates.WriteSnapshot(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a snapshot back. ok is false on a clean miss.
func (c *SnapshotCache) Get(key project.Digest) (templates.Snapshot, bool, error) {
	if c == nil {
		return templates.Snapshot{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return templates.Snapshot{}, false, nil
		}
		return templates.Snapshot{}, false, err
	}
	defer func() { _ = f.Close() }()

	snap, err := templates.ReadSnapshot(f)
	if err != nil {
		// A corrupt or stale-format entry is a miss, not a failure.
		return templates.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *SnapshotCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
