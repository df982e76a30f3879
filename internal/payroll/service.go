package payroll

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/schedule"
)

type ScheduleSource interface {
	GetByID(ctx context.Context, ownerID, id string) (*schedule.Schedule, error)
}

type EmployeeSource interface {
	GetAll(ctx context.Context, ownerID string) ([]*employee.Employee, error)
}

type Service struct {
	schedules ScheduleSource
	employees EmployeeSource
	logger    *slog.Logger
}

func NewService(schedules ScheduleSource, employees EmployeeSource, logger *slog.Logger) *Service {
	return &Service{schedules: schedules, employees: employees, logger: logger}
}

func (s *Service) Summary(ctx context.Context, ownerID, scheduleID string) (*Summary, error) {
	sch, err := s.schedules.GetByID(ctx, ownerID, scheduleID)
	if err != nil {
		return nil, err
	}
	roster, err := s.employees.GetAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(sch, roster)
	s.logger.Debug("payroll computed", "schedule_id", scheduleID, "lines", len(summary.Lines), "total_cost", summary.TotalCost)
	return summary, nil
}
