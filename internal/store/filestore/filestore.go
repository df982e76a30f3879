// Package filestore keeps each collection as a pretty-printed JSON file
// (<dir>/<collection>.json).
//
// Read-modify-write cycles are serialised per collection inside one process.
// Several processes sharing a directory are not coordinated.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/frahmantamala/shiftboard/internal/store"
)

type Backend struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func New(dir string, logger *slog.Logger) *Backend {
	return &Backend{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.RWMutex),
	}
}

func (b *Backend) Path(collection string) string {
	return filepath.Join(b.dir, collection+".json")
}

func (b *Backend) lock(collection string) *sync.RWMutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[collection]
	if !ok {
		l = &sync.RWMutex{}
		b.locks[collection] = l
	}
	return l
}

func (b *Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := b.lock(collection)
	l.RLock()
	defer l.RUnlock()
	return b.read(collection)
}

func (b *Backend) Save(ctx context.Context, collection string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := b.lock(collection)
	l.Lock()
	defer l.Unlock()
	return b.write(collection, data)
}

func (b *Backend) Mutate(ctx context.Context, collection string, fn store.MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := b.lock(collection)
	l.Lock()
	defer l.Unlock()

	current, err := b.read(collection)
	if errors.Is(err, store.ErrNotExist) {
		current = nil
	} else if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return b.write(collection, next)
}

// Ping reports whether the data directory is usable. A directory that does
// not exist yet is fine; the first write creates it.
func (b *Backend) Ping(ctx context.Context) error {
	info, err := os.Stat(b.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

func (b *Backend) read(collection string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotExist
	}
	if err != nil {
		b.logger.Error("filestore: read failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("read %s: %w", b.Path(collection), err)
	}
	return data, nil
}

// write replaces the file through a temp file and rename so readers never
// see a half written document.
func (b *Backend) write(collection string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+collection+"-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.Path(collection)); err != nil {
		b.logger.Error("filestore: rename failed", "collection", collection, "error", err)
		return fmt.Errorf("replace %s: %w", b.Path(collection), err)
	}

	b.logger.Debug("filestore: collection written", "collection", collection, "bytes", len(data))
	return nil
}
