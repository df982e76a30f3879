package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetAll(ctx context.Context) ([]userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, id string, fn func(*userDatamodel.User) error) (*userDatamodel.User, error)
}

type Service struct {
	repo       Repository
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func WithBCryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetAll(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	users := make([]*User, 0, len(rows))
	for i := range rows {
		users = append(users, FromDataModel(&rows[i]))
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(u), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return FromDataModel(u), nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	u := &User{
		ID:           s.newID(),
		Email:        dto.Email,
		PasswordHash: string(hash),
		CompanyName:  dto.CompanyName,
		Phone:        dto.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, ToDataModel(u)); err != nil {
		if errors.Is(err, internal.ErrEmailTaken) {
			s.logger.Warn("signup with existing email", "email", dto.Email)
		} else {
			s.logger.Error("failed to create user", "error", err)
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "company", u.CompanyName)
	return u, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, func(u *userDatamodel.User) error {
		if dto.CompanyName != nil {
			u.CompanyName = *dto.CompanyName
		}
		if dto.Phone != nil {
			u.Phone = *dto.Phone
		}
		if dto.Settings != nil {
			if dto.Settings.Profile != nil {
				u.Settings.Profile = dto.Settings.Profile
			}
			if dto.Settings.Company != nil {
				u.Settings.Company = dto.Settings.Company
			}
			if dto.Settings.Notifications != nil {
				u.Settings.Notifications = dto.Settings.Notifications
			}
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user settings updated", "user_id", id)
	return FromDataModel(updated), nil
}

func (s *Service) ChangePassword(ctx context.Context, id string, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	_, err = s.repo.Update(ctx, id, func(u *userDatamodel.User) error {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)) != nil {
			return internal.ErrInvalidCredentials.WithMessage("Current password is incorrect")
		}
		u.PasswordHash = string(hash)
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", id)
	return nil
}

// Authenticate returns the user owning email when password matches.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, internal.ErrUserNotFound) {
		return nil, internal.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, internal.ErrInvalidCredentials
	}
	return FromDataModel(u), nil
}
