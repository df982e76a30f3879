package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
	"github.com/frahmantamala/shiftboard/internal/employee"
)

// maxGenerationDays bounds the period a single generation covers.
const maxGenerationDays = 62

// Slot is a fixed daily service the generator staffs.
type Slot struct {
	Name  string
	Start string
	End   string
}

var DefaultSlots = []Slot{
	{Name: "midi", Start: "11:30", End: "15:00"},
	{Name: "soir", Start: "18:30", End: "23:00"},
}

// Generator builds shifts for a schedule period from the employee roster.
type Generator struct {
	Slots []Slot
}

func NewGenerator() *Generator {
	return &Generator{Slots: DefaultSlots}
}

type candidate struct {
	emp   *employee.Employee
	hours float64
	limit float64
	order int
}

// Generate staffs every service of every day with one employee per role
// present in the roster. Each slot goes to the eligible employee with the
// fewest hours so far when balancing, or to the first eligible one otherwise;
// minimizing costs prefers the lowest hourly rate among equals. An employee
// is never pushed past maxHoursPerEmployee, nor past their weekly hours
// scaled to the period when preferences are respected.
func (g *Generator) Generate(s *Schedule, roster []*employee.Employee, newID func() string) ([]Shift, error) {
	start, err := time.Parse(validation.DateLayout, s.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", s.StartDate, err)
	}
	end, err := time.Parse(validation.DateLayout, s.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", s.EndDate, err)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return nil, fmt.Errorf("end date %s is before start date %s", s.EndDate, s.StartDate)
	}
	if days > maxGenerationDays {
		return nil, fmt.Errorf("period of %d days exceeds the %d day limit", days, maxGenerationDays)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("no employees to schedule")
	}

	byRole := make(map[string][]*candidate)
	for i, e := range roster {
		byRole[e.Role] = append(byRole[e.Role], &candidate{
			emp:   e,
			limit: s.hourLimit(e, days),
			order: i,
		})
	}
	roles := orderedRoles(byRole)

	shifts := make([]Shift, 0, days*len(g.Slots)*len(roles))
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format(validation.DateLayout)
		for _, slot := range g.Slots {
			length := ShiftHours(slot.Start, slot.End)
			for _, role := range roles {
				c := s.pick(byRole[role], length)
				if c == nil {
					continue
				}
				c.hours += length
				shifts = append(shifts, Shift{
					ID:         newID(),
					EmployeeID: c.emp.ID,
					Date:       date,
					StartTime:  slot.Start,
					EndTime:    slot.End,
					Role:       role,
					Service:    slot.Name,
				})
			}
		}
	}
	return shifts, nil
}

func (s *Schedule) hourLimit(e *employee.Employee, days int) float64 {
	limit := math.Inf(1)
	if s.MaxHoursPerEmployee != nil {
		limit = *s.MaxHoursPerEmployee
	}
	if s.RespectPreferences && e.WeeklyHours != nil {
		limit = math.Min(limit, *e.WeeklyHours*float64(days)/7)
	}
	return limit
}

func (s *Schedule) pick(pool []*candidate, length float64) *candidate {
	var best *candidate
	for _, c := range pool {
		if c.hours+length > c.limit {
			continue
		}
		if best == nil || s.better(c, best) {
			best = c
		}
	}
	return best
}

func (s *Schedule) better(a, b *candidate) bool {
	if s.BalanceWorkload && a.hours != b.hours {
		return a.hours < b.hours
	}
	if s.MinimizeCosts {
		ra, rb := rate(a.emp), rate(b.emp)
		if ra != rb {
			return ra < rb
		}
	}
	return a.order < b.order
}

// rate puts employees without a known rate after everyone else.
func rate(e *employee.Employee) float64 {
	if e.HourlyRate == nil {
		return math.Inf(1)
	}
	return *e.HourlyRate
}

// orderedRoles lists the conventional roles first, then any others by name.
func orderedRoles(byRole map[string][]*candidate) []string {
	known := make(map[string]bool, len(employee.Roles))
	roles := make([]string, 0, len(byRole))
	for _, r := range employee.Roles {
		known[r] = true
		if _, ok := byRole[r]; ok {
			roles = append(roles, r)
		}
	}
	var others []string
	for r := range byRole {
		if !known[r] {
			others = append(others, r)
		}
	}
	sort.Strings(others)
	return append(roles, others...)
}

// ShiftHours is the length of a shift in hours. A shift ending at or before
// its start runs past midnight.
func ShiftHours(start, end string) float64 {
	s, err := time.Parse(validation.TimeLayout, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(validation.TimeLayout, end)
	if err != nil {
		return 0
	}
	d := e.Sub(s)
	if d <= 0 {
		d += 24 * time.Hour
	}
	return d.Hours()
}
