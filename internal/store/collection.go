package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection is a typed view over one backend document.
type Collection[T any] struct {
	backend  Backend
	name     string
	defaults func() []T
}

// NewCollection binds name on backend. defaults seeds the collection the first
// time it is touched; nil means an empty array.
func NewCollection[T any](backend Backend, name string, defaults func() []T) *Collection[T] {
	return &Collection[T]{
		backend:  backend,
		name:     name,
		defaults: defaults,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// ReadAll returns every record. A collection that does not exist yet is
// created with its defaults first. Any read or decode failure is returned;
// it is never reported as an empty collection.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	data, err := c.backend.Load(ctx, c.name)
	if errors.Is(err, ErrNotExist) {
		var items []T
		err = c.Update(ctx, func(current []T) ([]T, error) {
			items = current
			return current, nil
		})
		return items, err
	}
	if err != nil {
		return nil, Wrap("read", c.name, err)
	}
	return c.decode(data)
}

// WriteAll replaces the collection. It is not atomic with a previous ReadAll;
// use Update for read-modify-write.
func (c *Collection[T]) WriteAll(ctx context.Context, items []T) error {
	data, err := c.encode(items)
	if err != nil {
		return err
	}
	return Wrap("write", c.name, c.backend.Save(ctx, c.name, data))
}

type abortError struct {
	err error
}

func (a *abortError) Error() string {
	return a.err.Error()
}

// Update runs fn over the current records and stores the result as one unit.
// An error from fn aborts the write and is returned unchanged.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	err := c.backend.Mutate(ctx, c.name, func(current []byte) ([]byte, error) {
		var items []T
		if current == nil {
			items = c.initial()
		} else {
			decoded, err := c.decode(current)
			if err != nil {
				return nil, err
			}
			items = decoded
		}

		next, err := fn(items)
		if err != nil {
			return nil, &abortError{err: err}
		}
		return c.encode(next)
	})

	var abort *abortError
	if errors.As(err, &abort) {
		return abort.err
	}
	return Wrap("update", c.name, err)
}

func (c *Collection[T]) initial() []T {
	if c.defaults == nil {
		return []T{}
	}
	items := c.defaults()
	if items == nil {
		return []T{}
	}
	return items
}

func (c *Collection[T]) decode(data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Op: "decode", Collection: c.name, Err: fmt.Errorf("%w: empty document", ErrCorrupt)}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{Op: "decode", Collection: c.name, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, &Error{Op: "encode", Collection: c.name, Err: err}
	}
	return append(data, '\n'), nil
}
