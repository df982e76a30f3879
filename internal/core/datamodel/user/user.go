package user

import "time"

// User is the stored shape of an account in users.json.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"passwordHash"`
	CompanyName  string       `json:"companyName"`
	Phone        string       `json:"phone,omitempty"`
	Settings     UserSettings `json:"settings"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (u User) Key() string { return u.ID }

type UserSettings struct {
	Profile       *ProfileSettings      `json:"profile,omitempty"`
	Company       *CompanySettings      `json:"company,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
}

type ProfileSettings struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

type CompanySettings struct {
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	SIRET         string `json:"siret,omitempty"`
	OpeningHours  string `json:"openingHours,omitempty"`
	EmployeeCount *int   `json:"employeeCount,omitempty"`
}

type NotificationSettings struct {
	EmailEnabled     *bool `json:"emailEnabled,omitempty"`
	SMSEnabled       *bool `json:"smsEnabled,omitempty"`
	ScheduleReminder *bool `json:"scheduleReminder,omitempty"`
	WeeklyReport     *bool `json:"weeklyReport,omitempty"`
}
