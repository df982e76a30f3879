package storage

import (
	"context"
	"errors"

	"github.com/frahmantamala/shiftboard/internal"
	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
)

type SessionRepository struct {
	records *store.Records[sessionDatamodel.Session]
}

func NewSessionRepository(backend store.Backend) session.Repository {
	return &SessionRepository{
		records: store.NewRecords(store.NewCollection[sessionDatamodel.Session](backend, store.Sessions, nil)),
	}
}

func (r *SessionRepository) Find(ctx context.Context, pred func(sessionDatamodel.Session) bool) ([]sessionDatamodel.Session, error) {
	return r.records.Filter(ctx, pred)
}

func (r *SessionRepository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	return r.records.Insert(ctx, *s, nil)
}

func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*sessionDatamodel.Session) error) (*sessionDatamodel.Session, error) {
	s, err := r.records.Modify(ctx, id, fn)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string, guard func(sessionDatamodel.Session) error) error {
	_, err := r.records.Remove(ctx, id, guard)
	return mapError(err)
}

func (r *SessionRepository) DeleteWhere(ctx context.Context, pred func(sessionDatamodel.Session) bool) (int, error) {
	return r.records.RemoveWhere(ctx, pred)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrRecordNotFound):
		return internal.ErrSessionNotFound
	default:
		return err
	}
}
