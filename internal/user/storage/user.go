package storage

import (
	"context"
	"errors"

	"github.com/frahmantamala/shiftboard/internal"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/user"
)

type UserRepository struct {
	records *store.Records[userDatamodel.User]
}

// NewUserRepository stores users in the users collection. seed is written the
// first time the collection is created.
func NewUserRepository(backend store.Backend, seed ...userDatamodel.User) user.Repository {
	var defaults func() []userDatamodel.User
	if len(seed) > 0 {
		defaults = func() []userDatamodel.User {
			return append([]userDatamodel.User(nil), seed...)
		}
	}
	return &UserRepository{
		records: store.NewRecords(store.NewCollection(backend, store.Users, defaults)),
	}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]userDatamodel.User, error) {
	return r.records.All(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	u, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	u, ok, err := r.records.Find(ctx, func(u userDatamodel.User) bool { return u.Email == email })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return &u, nil
}

// Create inserts u unless another account already uses its email. Both
// checks happen in the same write.
func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return mapError(r.records.Insert(ctx, *u, func(existing []userDatamodel.User) error {
		for _, other := range existing {
			if other.Email == u.Email {
				return internal.ErrEmailTaken
			}
		}
		return nil
	}))
}

func (r *UserRepository) Update(ctx context.Context, id string, fn func(*userDatamodel.User) error) (*userDatamodel.User, error) {
	u, err := r.records.Modify(ctx, id, fn)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrRecordNotFound):
		return internal.ErrUserNotFound
	default:
		return err
	}
}
