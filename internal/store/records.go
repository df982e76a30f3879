package store

import (
	"context"
	"fmt"
)

// Keyed is implemented by records addressable by id.
type Keyed interface {
	Key() string
}

// Records adds id based access on top of a Collection. Lookups are linear.
type Records[T Keyed] struct {
	*Collection[T]
}

func NewRecords[T Keyed](c *Collection[T]) *Records[T] {
	return &Records[T]{Collection: c}
}

func (r *Records[T]) All(ctx context.Context) ([]T, error) {
	return r.ReadAll(ctx)
}

func (r *Records[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := r.ReadAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.Key() == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %q: %w", r.name, id, ErrRecordNotFound)
}

// Find returns the first record matching pred.
func (r *Records[T]) Find(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := r.ReadAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if pred(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

func (r *Records[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := r.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Insert appends item. check, when non nil, runs against the current records
// inside the same write and can veto the insert.
func (r *Records[T]) Insert(ctx context.Context, item T, check func([]T) error) error {
	return r.Update(ctx, func(items []T) ([]T, error) {
		for _, existing := range items {
			if existing.Key() == item.Key() {
				return nil, fmt.Errorf("%s %q: %w", r.name, item.Key(), ErrDuplicateKey)
			}
		}
		if check != nil {
			if err := check(items); err != nil {
				return nil, err
			}
		}
		return append(items, item), nil
	})
}

// Modify applies fn to the record with the given id and stores the result.
// Nothing is written when fn fails.
func (r *Records[T]) Modify(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var updated T
	err := r.Update(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if items[i].Key() != id {
				continue
			}
			next := items[i]
			if err := fn(&next); err != nil {
				return nil, err
			}
			items[i] = next
			updated = next
			return items, nil
		}
		return nil, fmt.Errorf("%s %q: %w", r.name, id, ErrRecordNotFound)
	})
	return updated, err
}

// Remove deletes the record with the given id. guard, when non nil, can veto
// the deletion.
func (r *Records[T]) Remove(ctx context.Context, id string, guard func(T) error) (T, error) {
	var removed T
	err := r.Update(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if items[i].Key() != id {
				continue
			}
			if guard != nil {
				if err := guard(items[i]); err != nil {
					return nil, err
				}
			}
			removed = items[i]
			return append(items[:i:i], items[i+1:]...), nil
		}
		return nil, fmt.Errorf("%s %q: %w", r.name, id, ErrRecordNotFound)
	})
	return removed, err
}

// RemoveWhere deletes every record matching pred and reports how many went.
func (r *Records[T]) RemoveWhere(ctx context.Context, pred func(T) bool) (int, error) {
	removed := 0
	err := r.Update(ctx, func(items []T) ([]T, error) {
		removed = 0
		kept := make([]T, 0, len(items))
		for _, item := range items {
			if pred(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
