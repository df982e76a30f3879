// Package memory keeps collections in process memory. Nothing survives a
// restart.
package memory

import (
	"context"
	"sync"

	"github.com/frahmantamala/shiftboard/internal/store"
)

type Backend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func New() *Backend {
	return &Backend{docs: make(map[string][]byte)}
}

func (b *Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.docs[collection]
	if !ok {
		return nil, store.ErrNotExist
	}
	return clone(data), nil
}

func (b *Backend) Save(ctx context.Context, collection string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[collection] = clone(data)
	return nil
}

func (b *Backend) Mutate(ctx context.Context, collection string, fn store.MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var current []byte
	if data, ok := b.docs[collection]; ok {
		current = clone(data)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	b.docs[collection] = clone(next)
	return nil
}

// Put stores raw bytes as-is, bypassing encoding. Useful to plant broken
// documents in tests.
func (b *Backend) Put(collection string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[collection] = clone(data)
}

func (b *Backend) Close() error {
	return nil
}

func clone(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
