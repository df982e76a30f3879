package schedule

import (
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

// Transition rules:
//
//	draft, completed        -> published   Publish, needs at least one shift
//	any                     -> draft       Unpublish, always
//	draft, completed        -> generating  StartGeneration
//	generating              -> completed   CompleteGeneration
//	generating              -> draft       FailGeneration
//	non published           -> draft, completed  generic update
//
// A published schedule accepts generic updates only when they leave status
// and shifts alone.

func (s *Schedule) CanPublish() error {
	switch s.Status {
	case StatusPublished:
		return internal.ErrInvalidStatus.WithMessage("Schedule %q is already published", s.Name)
	case StatusGenerating:
		return internal.ErrGenerationInProgress
	}
	if len(s.Shifts) == 0 {
		return internal.ErrScheduleEmpty
	}
	return nil
}

func (s *Schedule) Publish(now time.Time) error {
	if err := s.CanPublish(); err != nil {
		return err
	}
	s.Status = StatusPublished
	s.PublishedAt = &now
	s.UpdatedAt = now
	return nil
}

// Unpublish resets to draft whatever the current state. It reports whether
// the schedule was published.
func (s *Schedule) Unpublish(now time.Time) bool {
	wasPublished := s.IsPublished()
	s.Status = StatusDraft
	s.PublishedAt = nil
	s.UpdatedAt = now
	return wasPublished
}

func (s *Schedule) StartGeneration(now time.Time) error {
	switch s.Status {
	case StatusPublished:
		return internal.ErrScheduleLocked
	case StatusGenerating:
		return internal.ErrGenerationInProgress
	}
	s.Status = StatusGenerating
	s.UpdatedAt = now
	return nil
}

// CompleteGeneration stores the generated shifts. It fails if someone moved
// the schedule out of generating while the job ran.
func (s *Schedule) CompleteGeneration(shifts []Shift, now time.Time) error {
	if s.Status != StatusGenerating {
		return internal.ErrInvalidStatus.WithMessage("Schedule %q is no longer being generated", s.Name)
	}
	s.Status = StatusCompleted
	s.Shifts = copyShifts(shifts)
	s.UpdatedAt = now
	return nil
}

func (s *Schedule) FailGeneration(now time.Time) {
	if s.Status != StatusGenerating {
		return
	}
	s.Status = StatusDraft
	s.UpdatedAt = now
}

func (s *Schedule) checkStatusChange(next string) error {
	if next == s.Status {
		return nil
	}
	if s.IsPublished() {
		return internal.ErrScheduleLocked.WithMessage(
			"Schedule %q is published; unpublish it before changing its status to %q", s.Name, next)
	}
	switch next {
	case StatusPublished:
		return internal.ErrInvalidStatus.WithMessage("Use the publish action to publish a schedule")
	case StatusGenerating:
		return internal.ErrInvalidStatus.WithMessage("Use the generate action to generate a schedule")
	}
	return nil
}

// Apply merges a generic update. Nothing is changed when it returns an error.
func (s *Schedule) Apply(dto UpdateScheduleDTO, now time.Time, newID func() string) error {
	if dto.Status != nil {
		if err := s.checkStatusChange(*dto.Status); err != nil {
			return err
		}
	}
	if dto.Shifts != nil && s.IsPublished() {
		return internal.ErrScheduleLocked
	}

	next := *s
	if dto.Name != nil {
		next.Name = *dto.Name
	}
	if dto.StartDate != nil {
		next.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		next.EndDate = *dto.EndDate
	}
	if dto.Status != nil {
		next.Status = *dto.Status
	}
	if dto.Shifts != nil {
		next.Shifts = make([]Shift, 0, len(*dto.Shifts))
		for _, sd := range *dto.Shifts {
			next.Shifts = append(next.Shifts, sd.toShift(newID()))
		}
	}
	if dto.MinHoursPerEmployee != nil {
		next.MinHoursPerEmployee = dto.MinHoursPerEmployee
	}
	if dto.MaxHoursPerEmployee != nil {
		next.MaxHoursPerEmployee = dto.MaxHoursPerEmployee
	}
	if dto.Constraints != nil {
		next.Constraints = *dto.Constraints
	}
	if dto.RespectPreferences != nil {
		next.RespectPreferences = *dto.RespectPreferences
	}
	if dto.BalanceWorkload != nil {
		next.BalanceWorkload = *dto.BalanceWorkload
	}
	if dto.MinimizeCosts != nil {
		next.MinimizeCosts = *dto.MinimizeCosts
	}

	if err := next.validateDates(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*s = next
	return nil
}

func (s *Schedule) AddShift(shift Shift, now time.Time) error {
	if s.IsPublished() {
		return internal.ErrScheduleLocked
	}
	if !s.covers(shift.Date) {
		return outOfRange("date", shift.Date)
	}
	for _, existing := range s.Shifts {
		if existing.ID == shift.ID {
			return internal.ErrShiftExists.WithMessage("Shift %q already exists in this schedule", shift.ID)
		}
	}
	s.Shifts = append(copyShifts(s.Shifts), shift)
	s.UpdatedAt = now
	return nil
}

func (s *Schedule) RemoveShift(shiftID string, now time.Time) error {
	if s.IsPublished() {
		return internal.ErrScheduleLocked
	}
	for i, shift := range s.Shifts {
		if shift.ID == shiftID {
			kept := make([]Shift, 0, len(s.Shifts)-1)
			kept = append(kept, s.Shifts[:i]...)
			s.Shifts = append(kept, s.Shifts[i+1:]...)
			s.UpdatedAt = now
			return nil
		}
	}
	return internal.ErrShiftNotFound
}

func (s *Schedule) CanDelete() error {
	if s.IsPublished() {
		return internal.ErrScheduleLocked.WithMessage("Schedule %q is published; unpublish it before deleting", s.Name)
	}
	return nil
}

// validateDates checks the range and that every shift falls inside it.
func (s *Schedule) validateDates() error {
	if err := validation.DateRange(s.StartDate, s.EndDate); err != nil {
		return err
	}
	for _, shift := range s.Shifts {
		if !s.covers(shift.Date) {
			return outOfRange("shifts", shift.Date)
		}
	}
	return nil
}

// covers compares ISO dates as strings, which orders them correctly.
func (s *Schedule) covers(date string) bool {
	return date >= s.StartDate && date <= s.EndDate
}

func outOfRange(field, date string) error {
	return internal.NewValidationFieldError(field,
		"shift date "+date+" is outside the schedule period", internal.ErrCodeInvalidDate)
}
