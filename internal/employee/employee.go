package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/employee"
)

// Conventional role labels. Role stays free text; these feed the UI picker
// and the schedule generator.
const (
	RoleServeur    = "Serveur"
	RoleChefDeRang = "Chef de rang"
	RoleCuisinier  = "Cuisinier"
	RoleCommis     = "Commis"
	RolePlongeur   = "Plongeur"
	RoleBarman     = "Barman"
	RoleHote       = "Hôte d'accueil"
	RoleManager    = "Manager"
)

var Roles = []string{
	RoleServeur, RoleChefDeRang, RoleCuisinier, RoleCommis,
	RolePlongeur, RoleBarman, RoleHote, RoleManager,
}

type NotificationPreferences = employeeDatamodel.NotificationPreferences

type Employee struct {
	ID                      string                  `json:"id"`
	OwnerID                 string                  `json:"ownerId,omitempty"`
	FirstName               string                  `json:"firstName"`
	LastName                string                  `json:"lastName"`
	Email                   string                  `json:"email,omitempty"`
	Phone                   string                  `json:"phone,omitempty"`
	Role                    string                  `json:"role"`
	ContractType            string                  `json:"contractType,omitempty"`
	WeeklyHours             *float64                `json:"weeklyHours,omitempty"`
	HourlyRate              *float64                `json:"hourlyRate,omitempty"`
	StartDate               string                  `json:"startDate,omitempty"`
	Notes                   string                  `json:"notes,omitempty"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	CreatedAt               time.Time               `json:"createdAt"`
	UpdatedAt               time.Time               `json:"updatedAt"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// DefaultPreferences enables each channel the employee can be reached on.
func DefaultPreferences(email, phone string) NotificationPreferences {
	return NotificationPreferences{
		EmailEnabled: email != "",
		SMSEnabled:   phone != "",
	}
}

func (e *Employee) CanReceiveEmail() bool {
	return e.Email != "" && e.NotificationPreferences.EmailEnabled
}

func (e *Employee) CanReceiveSMS() bool {
	return e.Phone != "" && e.NotificationPreferences.SMSEnabled
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:                      e.ID,
		OwnerID:                 e.OwnerID,
		FirstName:               e.FirstName,
		LastName:                e.LastName,
		Email:                   e.Email,
		Phone:                   e.Phone,
		Role:                    e.Role,
		ContractType:            e.ContractType,
		WeeklyHours:             e.WeeklyHours,
		HourlyRate:              e.HourlyRate,
		StartDate:               e.StartDate,
		Notes:                   e.Notes,
		NotificationPreferences: e.NotificationPreferences,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:                      e.ID,
		OwnerID:                 e.OwnerID,
		FirstName:               e.FirstName,
		LastName:                e.LastName,
		Email:                   e.Email,
		Phone:                   e.Phone,
		Role:                    e.Role,
		ContractType:            e.ContractType,
		WeeklyHours:             e.WeeklyHours,
		HourlyRate:              e.HourlyRate,
		StartDate:               e.StartDate,
		Notes:                   e.Notes,
		NotificationPreferences: e.NotificationPreferences,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}
