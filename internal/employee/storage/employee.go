package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/shiftboard/internal"
	employeeDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/employee"
	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/store"
)

type EmployeeRepository struct {
	records *store.Records[employeeDatamodel.Employee]
}

func NewEmployeeRepository(backend store.Backend) employee.Repository {
	return &EmployeeRepository{
		records: store.NewRecords(store.NewCollection[employeeDatamodel.Employee](backend, store.Employees, nil)),
	}
}

func owned(ownerID string) func(employeeDatamodel.Employee) bool {
	return func(e employeeDatamodel.Employee) bool {
		return ownerID == "" || e.OwnerID == ownerID
	}
}

func (r *EmployeeRepository) GetAll(ctx context.Context, ownerID string) ([]employeeDatamodel.Employee, error) {
	return r.records.Filter(ctx, owned(ownerID))
}

func (r *EmployeeRepository) GetByID(ctx context.Context, ownerID, id string) (*employeeDatamodel.Employee, error) {
	e, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !owned(ownerID)(e) {
		return nil, internal.ErrEmployeeNotFound
	}
	return &e, nil
}

// Create appends all employees in one write; nothing is stored if any id is
// already taken.
func (r *EmployeeRepository) Create(ctx context.Context, batch ...*employeeDatamodel.Employee) error {
	return r.records.Update(ctx, func(items []employeeDatamodel.Employee) ([]employeeDatamodel.Employee, error) {
		taken := make(map[string]struct{}, len(items)+len(batch))
		for _, existing := range items {
			taken[existing.ID] = struct{}{}
		}
		for _, e := range batch {
			if _, dup := taken[e.ID]; dup {
				return nil, fmt.Errorf("%s %q: %w", store.Employees, e.ID, store.ErrDuplicateKey)
			}
			taken[e.ID] = struct{}{}
			items = append(items, *e)
		}
		return items, nil
	})
}

func (r *EmployeeRepository) Update(ctx context.Context, ownerID, id string, fn func(*employeeDatamodel.Employee) error) (*employeeDatamodel.Employee, error) {
	e, err := r.records.Modify(ctx, id, func(e *employeeDatamodel.Employee) error {
		if !owned(ownerID)(*e) {
			return internal.ErrEmployeeNotFound
		}
		return fn(e)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.records.Remove(ctx, id, func(e employeeDatamodel.Employee) error {
		if !owned(ownerID)(e) {
			return internal.ErrEmployeeNotFound
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
		return internal.ErrEmployeeNotFound
	default:
		return err
	}
}
