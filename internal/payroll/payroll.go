// Package payroll turns a schedule into hours and gross cost per employee.
package payroll

import (
	"math"
	"sort"

	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/schedule"
)

type Line struct {
	EmployeeID string   `json:"employeeId"`
	Name       string   `json:"name"`
	Role       string   `json:"role,omitempty"`
	Shifts     int      `json:"shifts"`
	Hours      float64  `json:"hours"`
	HourlyRate *float64 `json:"hourlyRate,omitempty"`
	GrossCost  float64  `json:"grossCost"`
	// Unknown marks shifts whose employee no longer exists.
	Unknown bool `json:"unknown,omitempty"`
}

type Summary struct {
	ScheduleID   string  `json:"scheduleId"`
	ScheduleName string  `json:"scheduleName"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Status       string  `json:"status"`
	Lines        []Line  `json:"lines"`
	TotalShifts  int     `json:"totalShifts"`
	TotalHours   float64 `json:"totalHours"`
	TotalCost    float64 `json:"totalCost"`
}

// Summarize adds up the shifts of s per employee. Employees without an hourly
// rate contribute hours but no cost.
func Summarize(s *schedule.Schedule, employees []*employee.Employee) *Summary {
	byID := make(map[string]*employee.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	lines := map[string]*Line{}
	for _, shift := range s.Shifts {
		line, ok := lines[shift.EmployeeID]
		if !ok {
			line = &Line{EmployeeID: shift.EmployeeID, Name: shift.EmployeeID, Role: shift.Role, Unknown: true}
			if e, found := byID[shift.EmployeeID]; found {
				line.Name = e.FullName()
				line.Role = e.Role
				line.HourlyRate = e.HourlyRate
				line.Unknown = false
			}
			lines[shift.EmployeeID] = line
		}
		line.Shifts++
		line.Hours += schedule.ShiftHours(shift.StartTime, shift.EndTime)
	}

	summary := &Summary{
		ScheduleID:   s.ID,
		ScheduleName: s.Name,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		Status:       s.Status,
		Lines:        make([]Line, 0, len(lines)),
	}
	for _, line := range lines {
		line.Hours = round2(line.Hours)
		if line.HourlyRate != nil {
			line.GrossCost = round2(line.Hours * *line.HourlyRate)
		}
		summary.TotalShifts += line.Shifts
		summary.TotalHours += line.Hours
		summary.TotalCost += line.GrossCost
		summary.Lines = append(summary.Lines, *line)
	}
	summary.TotalHours = round2(summary.TotalHours)
	summary.TotalCost = round2(summary.TotalCost)

	sort.Slice(summary.Lines, func(i, j int) bool {
		a, b := summary.Lines[i], summary.Lines[j]
		if a.Unknown != b.Unknown {
			return !a.Unknown
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.EmployeeID < b.EmployeeID
	})
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
