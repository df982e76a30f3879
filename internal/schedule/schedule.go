package schedule

import (
	"time"

	scheduleDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/schedule"
)

const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusPublished  = "published"
)

var Statuses = []string{StatusDraft, StatusGenerating, StatusCompleted, StatusPublished}

type Shift = scheduleDatamodel.Shift

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

func (s *Schedule) IsPublished() bool {
	return s.Status == StatusPublished
}

// EmployeeIDs lists the employees holding shifts, in order of first shift.
func (s *Schedule) EmployeeIDs() []string {
	seen := make(map[string]bool, len(s.Shifts))
	ids := make([]string, 0, len(s.Shifts))
	for _, shift := range s.Shifts {
		if shift.EmployeeID == "" || seen[shift.EmployeeID] {
			continue
		}
		seen[shift.EmployeeID] = true
		ids = append(ids, shift.EmployeeID)
	}
	return ids
}

func ToDataModel(s *Schedule) *scheduleDatamodel.Schedule {
	return &scheduleDatamodel.Schedule{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		Status:              s.Status,
		Shifts:              copyShifts(s.Shifts),
		MinHoursPerEmployee: s.MinHoursPerEmployee,
		MaxHoursPerEmployee: s.MaxHoursPerEmployee,
		Constraints:         s.Constraints,
		RespectPreferences:  s.RespectPreferences,
		BalanceWorkload:     s.BalanceWorkload,
		MinimizeCosts:       s.MinimizeCosts,
		PublishedAt:         s.PublishedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func FromDataModel(s *scheduleDatamodel.Schedule) *Schedule {
	return &Schedule{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		Status:              s.Status,
		Shifts:              copyShifts(s.Shifts),
		MinHoursPerEmployee: s.MinHoursPerEmployee,
		MaxHoursPerEmployee: s.MaxHoursPerEmployee,
		Constraints:         s.Constraints,
		RespectPreferences:  s.RespectPreferences,
		BalanceWorkload:     s.BalanceWorkload,
		MinimizeCosts:       s.MinimizeCosts,
		PublishedAt:         s.PublishedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// copyShifts never returns nil so an empty schedule serialises as [].
func copyShifts(shifts []Shift) []Shift {
	out := make([]Shift, len(shifts))
	copy(out, shifts)
	return out
}
