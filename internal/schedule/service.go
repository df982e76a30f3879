package schedule

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	scheduleDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/schedule"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/google/uuid"
)

const generationTimeout = 2 * time.Minute

type Repository interface {
	GetAll(ctx context.Context, ownerID string) ([]scheduleDatamodel.Schedule, error)
	GetByID(ctx context.Context, ownerID, id string) (*scheduleDatamodel.Schedule, error)
	Create(ctx context.Context, s *scheduleDatamodel.Schedule) error
	Update(ctx context.Context, ownerID, id string, fn func(*scheduleDatamodel.Schedule) error) (*scheduleDatamodel.Schedule, error)
	Delete(ctx context.Context, ownerID, id string, guard func(scheduleDatamodel.Schedule) error) error
}

// Roster is the employee lookup generation needs.
type Roster interface {
	GetAll(ctx context.Context, ownerID string) ([]*employee.Employee, error)
}

// Runner starts a background job. It returns an error when it no longer
// accepts jobs.
type Runner func(job func()) error

type Service struct {
	repo      Repository
	roster    Roster
	publisher events.Publisher
	generator *Generator
	logger    *slog.Logger
	run       Runner
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithRoster(r Roster) Option {
	return func(s *Service) { s.roster = r }
}

func WithGenerator(g *Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithRunner replaces the goroutine used for generation jobs.
func WithRunner(run Runner) Option {
	return func(s *Service) { s.run = run }
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		logger:    logger,
		generator: NewGenerator(),
		run: func(job func()) error {
			go job()
			return nil
		},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetAll(ctx context.Context, ownerID string) ([]*Schedule, error) {
	rows, err := s.repo.GetAll(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list schedules", "owner_id", ownerID, "error", err)
		return nil, err
	}
	schedules := make([]*Schedule, 0, len(rows))
	for i := range rows {
		schedules = append(schedules, FromDataModel(&rows[i]))
	}
	return schedules, nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Schedule, error) {
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Create stores a new draft schedule.
func (s *Service) Create(ctx context.Context, ownerID string, dto CreateScheduleDTO) (*Schedule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sch := &Schedule{
		ID:                  s.newID(),
		OwnerID:             ownerID,
		Name:                dto.Name,
		StartDate:           dto.StartDate,
		EndDate:             dto.EndDate,
		Status:              StatusDraft,
		Shifts:              make([]Shift, 0, len(dto.Shifts)),
		MinHoursPerEmployee: dto.MinHoursPerEmployee,
		MaxHoursPerEmployee: dto.MaxHoursPerEmployee,
		Constraints:         dto.Constraints,
		RespectPreferences:  dto.RespectPreferences,
		BalanceWorkload:     dto.BalanceWorkload,
		MinimizeCosts:       dto.MinimizeCosts,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, sd := range dto.Shifts {
		sch.Shifts = append(sch.Shifts, sd.toShift(s.newID()))
	}
	if err := sch.validateDates(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ToDataModel(sch)); err != nil {
		s.logger.Error("failed to create schedule", "owner_id", ownerID, "error", err)
		return nil, err
	}

	s.logger.Info("schedule created", "schedule_id", sch.ID, "owner_id", ownerID, "shifts", len(sch.Shifts))
	return sch, nil
}

// mutate loads the schedule, applies fn to its domain form and stores the
// result, all inside one write.
func (s *Service) mutate(ctx context.Context, ownerID, id string, fn func(*Schedule) error) (*Schedule, error) {
	row, err := s.repo.Update(ctx, ownerID, id, func(row *scheduleDatamodel.Schedule) error {
		sch := FromDataModel(row)
		if err := fn(sch); err != nil {
			return err
		}
		*row = *ToDataModel(sch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, dto UpdateScheduleDTO) (*Schedule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		return sch.Apply(dto, s.now().UTC(), s.newID)
	})
	if err != nil {
		s.logRejection("update", id, err)
		return nil, err
	}

	s.logger.Info("schedule updated", "schedule_id", id, "status", sch.Status)
	return sch, nil
}

func (s *Service) Publish(ctx context.Context, ownerID, id string) (*Schedule, error) {
	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		return sch.Publish(s.now().UTC())
	})
	if err != nil {
		s.logRejection("publish", id, err)
		return nil, err
	}

	s.logger.Info("schedule published", "schedule_id", id, "shifts", len(sch.Shifts))
	s.emit(ctx, events.NewSchedulePublishedEvent(sch.ID, sch.OwnerID, sch.Name, sch.StartDate, sch.EndDate, sch.EmployeeIDs()))
	return sch, nil
}

// Unpublish always succeeds for an existing schedule and leaves it in draft.
// Employees are only notified when it was actually published.
func (s *Service) Unpublish(ctx context.Context, ownerID, id string) (*Schedule, error) {
	var wasPublished bool
	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		wasPublished = sch.Unpublish(s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule unpublished", "schedule_id", id, "was_published", wasPublished)
	if wasPublished {
		s.emit(ctx, events.NewScheduleUnpublishedEvent(sch.ID, sch.OwnerID, sch.Name, sch.StartDate, sch.EndDate, sch.EmployeeIDs()))
	}
	return sch, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	err := s.repo.Delete(ctx, ownerID, id, func(row scheduleDatamodel.Schedule) error {
		return FromDataModel(&row).CanDelete()
	})
	if err != nil {
		s.logRejection("delete", id, err)
		return err
	}
	s.logger.Info("schedule deleted", "schedule_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) AddShift(ctx context.Context, ownerID, id string, dto ShiftDTO) (*Schedule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	shift := dto.toShift(s.newID())

	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		return sch.AddShift(shift, s.now().UTC())
	})
	if err != nil {
		s.logRejection("add shift", id, err)
		return nil, err
	}
	return sch, nil
}

func (s *Service) RemoveShift(ctx context.Context, ownerID, id, shiftID string) (*Schedule, error) {
	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		return sch.RemoveShift(shiftID, s.now().UTC())
	})
	if err != nil {
		s.logRejection("remove shift", id, err)
		return nil, err
	}
	return sch, nil
}

// Generate moves the schedule to generating and fills it in the background.
// The returned schedule is in the generating state.
func (s *Service) Generate(ctx context.Context, ownerID, id string) (*Schedule, error) {
	if s.roster == nil {
		return nil, internal.NewInternalError("schedule generation is not configured", nil)
	}

	sch, err := s.mutate(ctx, ownerID, id, func(sch *Schedule) error {
		return sch.StartGeneration(s.now().UTC())
	})
	if err != nil {
		s.logRejection("generate", id, err)
		return nil, err
	}

	s.logger.Info("schedule generation started", "schedule_id", id, "owner_id", ownerID)
	jobCtx := context.WithoutCancel(ctx)
	snapshot := *sch
	if err := s.run(func() { s.generate(jobCtx, snapshot) }); err != nil {
		s.logger.Warn("schedule generation refused", "schedule_id", id, "error", err)
		if _, rerr := s.mutate(context.WithoutCancel(ctx), ownerID, id, func(sch *Schedule) error {
			sch.FailGeneration(s.now().UTC())
			return nil
		}); rerr != nil {
			s.logger.Error("failed to reset schedule after refused generation", "schedule_id", id, "error", rerr)
		}
		return nil, err
	}
	return sch, nil
}

func (s *Service) generate(ctx context.Context, sch Schedule) {
	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	shifts, err := s.buildShifts(ctx, &sch)
	if err != nil {
		s.logger.Error("schedule generation failed", "schedule_id", sch.ID, "error", err)
		if _, ferr := s.mutate(ctx, sch.OwnerID, sch.ID, func(cur *Schedule) error {
			cur.FailGeneration(s.now().UTC())
			return nil
		}); ferr != nil {
			s.logger.Error("failed to reset schedule after generation failure", "schedule_id", sch.ID, "error", ferr)
		}
		return
	}

	done, err := s.mutate(ctx, sch.OwnerID, sch.ID, func(cur *Schedule) error {
		return cur.CompleteGeneration(shifts, s.now().UTC())
	})
	if err != nil {
		s.logger.Warn("generated shifts discarded", "schedule_id", sch.ID, "error", err)
		return
	}

	s.logger.Info("schedule generation completed", "schedule_id", sch.ID, "shifts", len(done.Shifts))
	s.emit(ctx, events.NewScheduleGeneratedEvent(done.ID, done.OwnerID, done.Name, done.StartDate, done.EndDate, done.EmployeeIDs()))
}

func (s *Service) buildShifts(ctx context.Context, sch *Schedule) ([]Shift, error) {
	roster, err := s.roster.GetAll(ctx, sch.OwnerID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(sch, roster, s.newID)
}

// EmployeeShifts lists an employee's shifts across published schedules,
// in date order.
func (s *Service) EmployeeShifts(ctx context.Context, ownerID, employeeID string) ([]EmployeeShift, error) {
	rows, err := s.repo.GetAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := []EmployeeShift{}
	for _, row := range rows {
		if row.Status != StatusPublished {
			continue
		}
		for _, shift := range row.Shifts {
			if shift.EmployeeID == employeeID {
				out = append(out, EmployeeShift{Shift: shift, ScheduleID: row.ID, ScheduleName: row.Name})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func (s *Service) logRejection(op, id string, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < 500 {
		s.logger.Warn("schedule "+op+" rejected", "schedule_id", id, "code", appErr.Code)
		return
	}
	s.logger.Error("schedule "+op+" failed", "schedule_id", id, "error", err)
}
