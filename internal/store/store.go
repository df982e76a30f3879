// Package store persists typed collections of records as JSON documents.
//
// A collection is a single JSON array. Backends only move opaque bytes around;
// encoding, lazy initialisation and keyed access live in Collection and Records.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Collection names used by the application.
const (
	Users     = "users"
	Employees = "employees"
	Schedules = "schedules"
	Sessions  = "sessions"
)

var (
	// ErrNotExist is returned by Backend.Load for a collection never written.
	ErrNotExist = errors.New("collection does not exist")
	// ErrCorrupt marks a stored document that cannot be decoded.
	ErrCorrupt = errors.New("collection is corrupt")
	// ErrConflict is returned when an optimistic write kept losing the race.
	ErrConflict = errors.New("concurrent modification")

	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// MutateFunc receives the current document, nil when the collection does not
// exist yet, and returns the document to store.
type MutateFunc func(current []byte) ([]byte, error)

// Backend stores one document per collection.
//
// Mutate must run fn and the following write as one unit with respect to
// other Mutate calls on the same collection. Errors returned by fn are handed
// back without being retried.
type Backend interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, data []byte) error
	Mutate(ctx context.Context, collection string, fn MutateFunc) error
	Close() error
}

// Error reports a failed store operation on a collection.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *Error unless it already is one or is nil.
func Wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// IsStoreError reports whether err came out of the persistence layer.
func IsStoreError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
