package schedule

import (
	"fmt"

	errors "github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

type ShiftDTO struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Role       string `json:"role"`
	Service    string `json:"service,omitempty"`
}

func (dto ShiftDTO) rules(v *validation.ValidationBuilder, prefix string) {
	v.Field(prefix+"employeeId", dto.EmployeeID).Required()
	v.Field(prefix+"date", dto.Date).Required().Date()
	v.Field(prefix+"startTime", dto.StartTime).Required().TimeOfDay()
	v.Field(prefix+"endTime", dto.EndTime).Required().TimeOfDay()
	v.Field(prefix+"role", dto.Role).MaxLength(100)
	v.Field(prefix+"service", dto.Service).MaxLength(50)
}

func (dto ShiftDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	dto.rules(v, "")
	return v.Validate()
}

func (dto ShiftDTO) toShift(id string) Shift {
	if dto.ID != "" {
		id = dto.ID
	}
	return Shift{
		ID:         id,
		EmployeeID: dto.EmployeeID,
		Date:       dto.Date,
		StartTime:  dto.StartTime,
		EndTime:    dto.EndTime,
		Role:       dto.Role,
		Service:    dto.Service,
	}
}

// validateShifts also rejects a client supplied id used twice in the list.
func validateShifts(v *validation.ValidationBuilder, shifts []ShiftDTO) {
	seen := make(map[string]bool, len(shifts))
	for i, s := range shifts {
		prefix := fmt.Sprintf("shifts[%d].", i)
		s.rules(v, prefix)
		if s.ID == "" {
			continue
		}
		dup := seen[s.ID]
		seen[s.ID] = true
		field := prefix + "id"
		v.Field(field, s.ID).Custom(func(interface{}) *errors.AppError {
			if dup {
				return errors.NewValidationFieldError(field, fmt.Sprintf("shift id %q is used more than once", s.ID), errors.ErrCodeDuplicateShift)
			}
			return nil
		})
	}
}

type CreateScheduleDTO struct {
	Name                string     `json:"name"`
	StartDate           string     `json:"startDate"`
	EndDate             string     `json:"endDate"`
	Shifts              []ShiftDTO `json:"shifts,omitempty"`
	MinHoursPerEmployee *float64   `json:"minHoursPerEmployee,omitempty"`
	MaxHoursPerEmployee *float64   `json:"maxHoursPerEmployee,omitempty"`
	Constraints         string     `json:"constraints,omitempty"`
	RespectPreferences  bool       `json:"respectPreferences"`
	BalanceWorkload     bool       `json:"balanceWorkload"`
	MinimizeCosts       bool       `json:"minimizeCosts"`
}

func (dto CreateScheduleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("startDate", dto.StartDate).Required().Date()
	v.Field("endDate", dto.EndDate).Required().Date()
	v.Field("minHoursPerEmployee", dto.MinHoursPerEmployee).NonNegative()
	v.Field("maxHoursPerEmployee", dto.MaxHoursPerEmployee).NonNegative()
	v.Field("constraints", dto.Constraints).MaxLength(5000)
	validateShifts(v, dto.Shifts)
	return v.Validate()
}

// UpdateScheduleDTO is a generic partial update. Status and Shifts are
// subject to the status machine; see Schedule.Apply.
type UpdateScheduleDTO struct {
	Name                *string     `json:"name,omitempty"`
	StartDate           *string     `json:"startDate,omitempty"`
	EndDate             *string     `json:"endDate,omitempty"`
	Status              *string     `json:"status,omitempty"`
	Shifts              *[]ShiftDTO `json:"shifts,omitempty"`
	MinHoursPerEmployee *float64    `json:"minHoursPerEmployee,omitempty"`
	MaxHoursPerEmployee *float64    `json:"maxHoursPerEmployee,omitempty"`
	Constraints         *string     `json:"constraints,omitempty"`
	RespectPreferences  *bool       `json:"respectPreferences,omitempty"`
	BalanceWorkload     *bool       `json:"balanceWorkload,omitempty"`
	MinimizeCosts       *bool       `json:"minimizeCosts,omitempty"`
}

func (dto UpdateScheduleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).NotBlank().MaxLength(200)
	v.Field("startDate", dto.StartDate).NotBlank().Date()
	v.Field("endDate", dto.EndDate).NotBlank().Date()
	v.Field("status", dto.Status).NotBlank().OneOf(Statuses...)
	v.Field("minHoursPerEmployee", dto.MinHoursPerEmployee).NonNegative()
	v.Field("maxHoursPerEmployee", dto.MaxHoursPerEmployee).NonNegative()
	v.Field("constraints", dto.Constraints).MaxLength(5000)
	if dto.Shifts != nil {
		validateShifts(v, *dto.Shifts)
	}
	return v.Validate()
}

// EmployeeShift is a shift seen from the employee's side.
type EmployeeShift struct {
	Shift
	ScheduleID   string `json:"scheduleId"`
	ScheduleName string `json:"scheduleName"`
}
