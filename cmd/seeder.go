package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/employee"
	"github.com/frahmantamala/shiftboard/internal/schedule"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with sample data",
	Long:  `Seed the store with a demo manager, a small team and one week of shifts for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := setupLogger(cfg)

		ctx := context.Background()
		backend, err := openBackend(ctx, cfg.Storage, log)
		if err != nil {
			return err
		}

		if clearData {
			for _, c := range []string{store.Users, store.Employees, store.Schedules, store.Sessions} {
				if err := backend.Save(ctx, c, []byte("[]")); err != nil {
					_ = backend.Close()
					return fmt.Errorf("failed to clear %s: %w", c, err)
				}
				fmt.Println("Cleared collection:", c)
			}
		}

		app, err := newApp(cfg, backend, log)
		if err != nil {
			_ = backend.Close()
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = app.Shutdown(shutdownCtx)
		}()

		return seed(ctx, app)
	},
}

var sampleTeam = []employee.CreateEmployeeDTO{
	{FirstName: "Marie", LastName: "Dubois", Role: "Serveur", Email: "marie.dubois@example.fr", ContractType: "CDI", HourlyRate: ptr(12.5), WeeklyHours: ptr(35)},
	{FirstName: "Ahmed", LastName: "Benali", Role: "Cuisinier", Phone: "0601020304", ContractType: "CDI", HourlyRate: ptr(14), WeeklyHours: ptr(39)},
	{FirstName: "Julie", LastName: "Martin", Role: "Plongeur", ContractType: "CDD", HourlyRate: ptr(11.65), WeeklyHours: ptr(24)},
}

func ptr(v float64) *float64 { return &v }

func seed(ctx context.Context, app *App) error {
	owner, err := app.Users.GetByEmail(ctx, user.DemoEmail)
	if errors.Is(err, internal.ErrUserNotFound) {
		owner, err = app.Users.Create(ctx, user.CreateUserDTO{
			Email:       user.DemoEmail,
			Password:    user.DemoPassword,
			CompanyName: user.DemoCompanyName,
		})
		if err == nil {
			fmt.Println("Seeded demo user:", owner.Email)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to ensure demo user: %w", err)
	}

	existing, err := app.Employees.GetAll(ctx, owner.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("demo team already exists; nothing to seed")
		return nil
	}

	team := make([]*employee.Employee, 0, len(sampleTeam))
	for _, dto := range sampleTeam {
		e, err := app.Employees.Create(ctx, owner.ID, dto)
		if err != nil {
			return fmt.Errorf("failed to insert employee %s %s: %w", dto.FirstName, dto.LastName, err)
		}
		team = append(team, e)
		fmt.Printf("Seeded employee: %s %s\n", e.FirstName, e.LastName)
	}

	monday := startOfWeek(time.Now())
	var shifts []schedule.ShiftDTO
	for day := 0; day < 5; day++ {
		date := monday.AddDate(0, 0, day).Format("2006-01-02")
		for _, e := range team {
			shifts = append(shifts,
				schedule.ShiftDTO{EmployeeID: e.ID, Date: date, StartTime: "11:00", EndTime: "15:00", Role: e.Role, Service: "midi"},
				schedule.ShiftDTO{EmployeeID: e.ID, Date: date, StartTime: "18:30", EndTime: "22:30", Role: e.Role, Service: "soir"},
			)
		}
	}

	sch, err := app.Schedules.Create(ctx, owner.ID, schedule.CreateScheduleDTO{
		Name:      "Semaine du " + monday.Format("02/01"),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 6).Format("2006-01-02"),
		Shifts:    shifts,
	})
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	fmt.Printf("Seeded schedule %q with %d shifts\n", sch.Name, len(sch.Shifts))
	return nil
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
