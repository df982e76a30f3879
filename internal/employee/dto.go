package employee

import (
	errors "github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

var contractTypes = []string{"CDI", "CDD", "Extra", "Saisonnier", "Apprentissage", "Stage", "Temps partiel"}

type CreateEmployeeDTO struct {
	FirstName               string                   `json:"firstName"`
	LastName                string                   `json:"lastName"`
	Email                   string                   `json:"email,omitempty"`
	Phone                   string                   `json:"phone,omitempty"`
	Role                    string                   `json:"role"`
	ContractType            string                   `json:"contractType,omitempty"`
	WeeklyHours             *float64                 `json:"weeklyHours,omitempty"`
	HourlyRate              *float64                 `json:"hourlyRate,omitempty"`
	StartDate               string                   `json:"startDate,omitempty"`
	Notes                   string                   `json:"notes,omitempty"`
	NotificationPreferences *NotificationPreferences `json:"notificationPreferences,omitempty"`
}

func (dto CreateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("firstName", dto.FirstName).Required().MaxLength(100)
	v.Field("lastName", dto.LastName).Required().MaxLength(100)
	v.Field("email", dto.Email).Email()
	v.Field("phone", dto.Phone).MaxLength(30)
	v.Field("role", dto.Role).Required().MaxLength(100)
	v.Field("contractType", dto.ContractType).OneOf(contractTypes...)
	v.Field("weeklyHours", dto.WeeklyHours).NonNegative()
	v.Field("hourlyRate", dto.HourlyRate).NonNegative()
	v.Field("startDate", dto.StartDate).Date()
	v.Field("notes", dto.Notes).MaxLength(2000)
	return v.Validate()
}

// UpdateEmployeeDTO is a partial update; nil fields are left unchanged.
type UpdateEmployeeDTO struct {
	FirstName               *string                  `json:"firstName,omitempty"`
	LastName                *string                  `json:"lastName,omitempty"`
	Email                   *string                  `json:"email,omitempty"`
	Phone                   *string                  `json:"phone,omitempty"`
	Role                    *string                  `json:"role,omitempty"`
	ContractType            *string                  `json:"contractType,omitempty"`
	WeeklyHours             *float64                 `json:"weeklyHours,omitempty"`
	HourlyRate              *float64                 `json:"hourlyRate,omitempty"`
	StartDate               *string                  `json:"startDate,omitempty"`
	Notes                   *string                  `json:"notes,omitempty"`
	NotificationPreferences *NotificationPreferences `json:"notificationPreferences,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("firstName", dto.FirstName).NotBlank().MaxLength(100)
	v.Field("lastName", dto.LastName).NotBlank().MaxLength(100)
	v.Field("email", dto.Email).Email()
	v.Field("phone", dto.Phone).MaxLength(30)
	v.Field("role", dto.Role).NotBlank().MaxLength(100)
	v.Field("contractType", dto.ContractType).OneOf(contractTypes...)
	v.Field("weeklyHours", dto.WeeklyHours).NonNegative()
	v.Field("hourlyRate", dto.HourlyRate).NonNegative()
	v.Field("startDate", dto.StartDate).Date()
	v.Field("notes", dto.Notes).MaxLength(2000)
	return v.Validate()
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}
