package storage

import (
	"context"
	"errors"

	"github.com/frahmantamala/shiftboard/internal"
	scheduleDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/schedule"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	"github.com/frahmantamala/shiftboard/internal/store"
)

type ScheduleRepository struct {
	records *store.Records[scheduleDatamodel.Schedule]
}

func NewScheduleRepository(backend store.Backend) schedule.Repository {
	return &ScheduleRepository{
		records: store.NewRecords(store.NewCollection[scheduleDatamodel.Schedule](backend, store.Schedules, nil)),
	}
}

func owned(ownerID string) func(scheduleDatamodel.Schedule) bool {
	return func(s scheduleDatamodel.Schedule) bool {
		return ownerID == "" || s.OwnerID == ownerID
	}
}

func (r *ScheduleRepository) GetAll(ctx context.Context, ownerID string) ([]scheduleDatamodel.Schedule, error) {
	return r.records.Filter(ctx, owned(ownerID))
}

func (r *ScheduleRepository) GetByID(ctx context.Context, ownerID, id string) (*scheduleDatamodel.Schedule, error) {
	s, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !owned(ownerID)(s) {
		return nil, internal.ErrScheduleNotFound
	}
	return &s, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, s *scheduleDatamodel.Schedule) error {
	return r.records.Insert(ctx, *s, nil)
}

// Update runs fn against the stored schedule inside one write. When fn
// fails the stored schedule is left as it was.
func (r *ScheduleRepository) Update(ctx context.Context, ownerID, id string, fn func(*scheduleDatamodel.Schedule) error) (*scheduleDatamodel.Schedule, error) {
	s, err := r.records.Modify(ctx, id, func(s *scheduleDatamodel.Schedule) error {
		if !owned(ownerID)(*s) {
			return internal.ErrScheduleNotFound
		}
		return fn(s)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, ownerID, id string, guard func(scheduleDatamodel.Schedule) error) error {
	_, err := r.records.Remove(ctx, id, func(s scheduleDatamodel.Schedule) error {
		if !owned(ownerID)(s) {
			return internal.ErrScheduleNotFound
		}
		if guard != nil {
			return guard(s)
		}
		return nil
	})
	return mapError(err)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrRecordNotFound):
		return internal.ErrScheduleNotFound
	default:
		return err
	}
}
