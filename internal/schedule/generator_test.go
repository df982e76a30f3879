package schedule_test

import (
	"github.com/frahmantamala/shiftboard/internal/core/common/fixtures"
	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Generator", func() {
	var (
		gen *schedule.Generator
		ids *fixtures.IDGenerator
	)

	BeforeEach(func() {
		gen = schedule.NewGenerator()
		ids = fixtures.NewIDGenerator("shift")
	})

	staff := func(id, role string, rate *float64, weekly *float64) *employee.Employee {
		return &employee.Employee{ID: id, FirstName: id, Role: role, HourlyRate: rate, WeeklyHours: weekly}
	}

	hoursBy := func(shifts []schedule.Shift) map[string]float64 {
		out := map[string]float64{}
		for _, s := range shifts {
			out[s.EmployeeID] += schedule.ShiftHours(s.StartTime, s.EndTime)
		}
		return out
	}

	It("staffs midi and soir every day for every role", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-02-04"}
		roster := []*employee.Employee{
			staff("marie", employee.RoleServeur, nil, nil),
			staff("paul", employee.RoleCuisinier, nil, nil),
		}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		Expect(shifts).To(HaveLen(7 * 2 * 2))

		first := shifts[0]
		Expect(first.Date).To(Equal("2025-01-29"))
		Expect(first.Service).To(Equal("midi"))
		Expect(first.StartTime).To(Equal("11:30"))
		Expect(first.Role).To(Equal(employee.RoleServeur))
		Expect(shifts[len(shifts)-1].Date).To(Equal("2025-02-04"))
		Expect(shifts[len(shifts)-1].Service).To(Equal("soir"))
	})

	It("spreads hours evenly when balancing", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-02-01", BalanceWorkload: true}
		roster := []*employee.Employee{
			staff("a", employee.RoleServeur, nil, nil),
			staff("b", employee.RoleServeur, nil, nil),
		}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		hours := hoursBy(shifts)
		Expect(hours["a"]).To(BeNumerically("~", hours["b"], 4.5))
	})

	It("prefers the cheaper employee among equals", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-01-29", MinimizeCosts: true}
		roster := []*employee.Employee{
			staff("pricey", employee.RoleServeur, floatPtr(15), nil),
			staff("cheap", employee.RoleServeur, floatPtr(11.5), nil),
			staff("unknown", employee.RoleServeur, nil, nil),
		}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		for _, s := range shifts {
			Expect(s.EmployeeID).To(Equal("cheap"))
		}
	})

	It("never exceeds the hour cap and leaves slots open instead", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-01-31", MaxHoursPerEmployee: floatPtr(8)}
		roster := []*employee.Employee{staff("solo", employee.RoleBarman, nil, nil)}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		Expect(hoursBy(shifts)["solo"]).To(BeNumerically("<=", 8))
		Expect(shifts).To(HaveLen(2))
	})

	It("respects contracted weekly hours when asked", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-27", EndDate: "2025-02-02", RespectPreferences: true}
		roster := []*employee.Employee{staff("part", employee.RoleCommis, nil, floatPtr(20))}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		Expect(hoursBy(shifts)["part"]).To(BeNumerically("<=", 20))
	})

	It("puts unconventional roles after the known ones", func() {
		sch := &schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-01-29"}
		roster := []*employee.Employee{
			staff("s", "Sommelier", nil, nil),
			staff("m", employee.RoleManager, nil, nil),
			staff("c", employee.RoleCuisinier, nil, nil),
		}

		shifts, err := gen.Generate(sch, roster, ids.Next)
		Expect(err).NotTo(HaveOccurred())
		Expect([]string{shifts[0].Role, shifts[1].Role, shifts[2].Role}).To(
			Equal([]string{employee.RoleCuisinier, employee.RoleManager, "Sommelier"}))
	})

	It("fails without employees or with an oversized period", func() {
		_, err := gen.Generate(&schedule.Schedule{StartDate: "2025-01-29", EndDate: "2025-01-30"}, nil, ids.Next)
		Expect(err).To(HaveOccurred())

		roster := []*employee.Employee{staff("a", employee.RoleServeur, nil, nil)}
		_, err = gen.Generate(&schedule.Schedule{StartDate: "2025-01-01", EndDate: "2025-12-31"}, roster, ids.Next)
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("ShiftHours",
		func(start, end string, hours float64) {
			Expect(schedule.ShiftHours(start, end)).To(Equal(hours))
		},
		Entry("lunch", "11:30", "15:00", 3.5),
		Entry("dinner", "18:30", "23:00", 4.5),
		Entry("past midnight", "22:00", "02:00", 4.0),
		Entry("garbage", "noon", "15:00", 0.0),
	)
})
