package employee

import "time"

// Employee is the stored shape of a staff member in employees.json.
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

func (e Employee) Key() string { return e.ID }

type NotificationPreferences struct {
	EmailEnabled bool `json:"emailEnabled"`
	SMSEnabled   bool `json:"smsEnabled"`
}
