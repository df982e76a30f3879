package employee

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	employeeDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/employee"
	"github.com/google/uuid"
)

// Repository scopes every call by owner. An empty owner matches every record.
type Repository interface {
	GetAll(ctx context.Context, ownerID string) ([]employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, ownerID, id string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e ...*employeeDatamodel.Employee) error
	Update(ctx context.Context, ownerID, id string, fn func(*employeeDatamodel.Employee) error) (*employeeDatamodel.Employee, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetAll(ctx context.Context, ownerID string) ([]*Employee, error) {
	rows, err := s.repo.GetAll(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list employees", "owner_id", ownerID, "error", err)
		return nil, err
	}
	employees := make([]*Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, FromDataModel(&rows[i]))
	}
	return employees, nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(e), nil
}

func (s *Service) Create(ctx context.Context, ownerID string, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := s.build(ownerID, dto, s.now().UTC())
	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		s.logger.Error("failed to create employee", "owner_id", ownerID, "error", err)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", e.ID, "owner_id", ownerID, "role", e.Role)
	return e, nil
}

func (s *Service) build(ownerID string, dto CreateEmployeeDTO, now time.Time) *Employee {
	prefs := DefaultPreferences(dto.Email, dto.Phone)
	if dto.NotificationPreferences != nil {
		prefs = *dto.NotificationPreferences
	}
	return &Employee{
		ID:                      s.newID(),
		OwnerID:                 ownerID,
		FirstName:               dto.FirstName,
		LastName:                dto.LastName,
		Email:                   dto.Email,
		Phone:                   dto.Phone,
		Role:                    dto.Role,
		ContractType:            dto.ContractType,
		WeeklyHours:             dto.WeeklyHours,
		HourlyRate:              dto.HourlyRate,
		StartDate:               dto.StartDate,
		Notes:                   dto.Notes,
		NotificationPreferences: prefs,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func (s *Service) Update(ctx context.Context, ownerID, id string, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, ownerID, id, func(e *employeeDatamodel.Employee) error {
		applyUpdate(e, dto)
		e.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id, "owner_id", ownerID)
	return FromDataModel(updated), nil
}

func applyUpdate(e *employeeDatamodel.Employee, dto UpdateEmployeeDTO) {
	if dto.FirstName != nil {
		e.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		e.LastName = *dto.LastName
	}
	if dto.Email != nil {
		e.Email = *dto.Email
	}
	if dto.Phone != nil {
		e.Phone = *dto.Phone
	}
	if dto.Role != nil {
		e.Role = *dto.Role
	}
	if dto.ContractType != nil {
		e.ContractType = *dto.ContractType
	}
	if dto.WeeklyHours != nil {
		e.WeeklyHours = dto.WeeklyHours
	}
	if dto.HourlyRate != nil {
		e.HourlyRate = dto.HourlyRate
	}
	if dto.StartDate != nil {
		e.StartDate = *dto.StartDate
	}
	if dto.Notes != nil {
		e.Notes = *dto.Notes
	}
	if dto.NotificationPreferences != nil {
		e.NotificationPreferences = *dto.NotificationPreferences
	}
}

// Delete removes the employee. Shifts that reference it are left in place.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", "employee_id", id, "owner_id", ownerID)
	return nil
}

// Import validates every roster row and creates the valid ones in a single
// write. Rows that fail validation are reported by line number.
func (s *Service) Import(ctx context.Context, ownerID string, rows []RosterRow) (*ImportResult, error) {
	result := &ImportResult{Created: []*Employee{}, Rejected: []RowError{}}
	now := s.now().UTC()

	batch := make([]*employeeDatamodel.Employee, 0, len(rows))
	for _, row := range rows {
		if err := row.DTO.Validate(); err != nil {
			result.Rejected = append(result.Rejected, RowError{Line: row.Line, Error: describe(err)})
			continue
		}
		e := s.build(ownerID, row.DTO, now)
		result.Created = append(result.Created, e)
		batch = append(batch, ToDataModel(e))
	}

	if len(batch) > 0 {
		if err := s.repo.Create(ctx, batch...); err != nil {
			s.logger.Error("failed to import roster", "owner_id", ownerID, "error", err)
			return nil, err
		}
	}

	s.logger.Info("roster imported", "owner_id", ownerID,
		"created", len(result.Created), "rejected", len(result.Rejected))
	return result, nil
}

// ImportFile reads a roster spreadsheet and imports it. Unreadable files are
// a validation error; bad lines land in Rejected next to the lines Import
// refused.
func (s *Service) ImportFile(ctx context.Context, ownerID string, r io.Reader, filename string) (*ImportResult, error) {
	rows, parseErrors, err := ReadRoster(r, filename)
	if err != nil {
		s.logger.Warn("unreadable roster upload", "owner_id", ownerID, "filename", filename, "error", err)
		return nil, internal.NewValidationError("Could not read roster: "+err.Error(), internal.ErrCodeInvalidFile)
	}

	result, err := s.Import(ctx, ownerID, rows)
	if err != nil {
		return nil, err
	}
	result.Rejected = append(result.Rejected, parseErrors...)
	sort.Slice(result.Rejected, func(i, j int) bool { return result.Rejected[i].Line < result.Rejected[j].Line })
	return result, nil
}

func describe(err *internal.AppError) string {
	details, ok := err.Details.(internal.ValidationErrors)
	if !ok || len(details.Errors) == 0 {
		return err.Message
	}
	return details.Errors[0].Message
}
