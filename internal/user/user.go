package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

type (
	Settings             = userDatamodel.UserSettings
	ProfileSettings      = userDatamodel.ProfileSettings
	CompanySettings      = userDatamodel.CompanySettings
	NotificationSettings = userDatamodel.NotificationSettings
)

// User is a restaurant manager account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash
	CompanyName  string    `json:"companyName"`
	Phone        string    `json:"phone,omitempty"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	DemoEmail       = "demo@restaurant.fr"
	DemoPassword    = "demo1234"
	DemoCompanyName = "Restaurant Demo"
)

// DemoUser is the account seeded into an empty users collection.
func DemoUser(id, passwordHash string, now time.Time) userDatamodel.User {
	return userDatamodel.User{
		ID:           id,
		Email:        DemoEmail,
		PasswordHash: passwordHash,
		CompanyName:  DemoCompanyName,
		Phone:        "0601020304",
		Settings: userDatamodel.UserSettings{
			Profile: &userDatamodel.ProfileSettings{FirstName: "Demo", LastName: "Manager", Language: "fr"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CompanyName:  u.CompanyName,
		Phone:        u.Phone,
		Settings:     u.Settings,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CompanyName:  u.CompanyName,
		Phone:        u.Phone,
		Settings:     u.Settings,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
