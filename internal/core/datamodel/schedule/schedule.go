package schedule

import "time"

// Schedule is the stored shape of a planning period in schedules.json.
type Schedule struct {
	ID                  string     `json:"id"`
	OwnerID             string     `json:"ownerId,omitempty"`
	Name                string     `json:"name"`
	StartDate           string     `json:"startDate"`
	EndDate             string     `json:"endDate"`
	Status              string     `json:"status"`
	Shifts              []Shift    `json:"shifts"`
	MinHoursPerEmployee *float64   `json:"minHoursPerEmployee,omitempty"`
	MaxHoursPerEmployee *float64   `json:"maxHoursPerEmployee,omitempty"`
	Constraints         string     `json:"constraints"`
	RespectPreferences  bool       `json:"respectPreferences"`
	BalanceWorkload     bool       `json:"balanceWorkload"`
	MinimizeCosts       bool       `json:"minimizeCosts"`
	PublishedAt         *time.Time `json:"publishedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (s Schedule) Key() string { return s.ID }

type Shift struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Role       string `json:"role"`
	Service    string `json:"service,omitempty"`
}
