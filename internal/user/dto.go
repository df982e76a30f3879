package user

import (
	errors "github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

const minPasswordLength = 8

type CreateUserDTO struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
	Phone       string `json:"phone,omitempty"`
}

func (dto CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email().MaxLength(254)
	v.Field("password", dto.Password).Required().MinLength(minPasswordLength).MaxLength(72)
	v.Field("companyName", dto.CompanyName).Required().MaxLength(200)
	v.Field("phone", dto.Phone).MaxLength(30)
	return v.Validate()
}

// UpdateUserDTO is a partial update; nil fields are left unchanged.
// Each settings section present replaces the stored one.
type UpdateUserDTO struct {
	CompanyName *string            `json:"companyName,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Settings    *UpdateSettingsDTO `json:"settings,omitempty"`
}

type UpdateSettingsDTO struct {
	Profile       *ProfileSettings      `json:"profile,omitempty"`
	Company       *CompanySettings      `json:"company,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
}

func (dto UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("companyName", dto.CompanyName).NotBlank().MaxLength(200)
	v.Field("phone", dto.Phone).MaxLength(30)
	return v.Validate()
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (dto ChangePasswordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("currentPassword", dto.CurrentPassword).Required()
	v.Field("newPassword", dto.NewPassword).Required().MinLength(minPasswordLength).MaxLength(72)
	return v.Validate()
}

type UserResponse struct {
	User *User `json:"user"`
}
