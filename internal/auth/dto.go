package auth

import (
	"time"

	errors "github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
	"github.com/frahmantamala/shiftboard/internal/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type SignupDTO = user.CreateUserDTO

// Result is returned by signup and login. Token is also set as a cookie.
type Result struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	SessionID string     `json:"sessionId"`
	User      *user.User `json:"user"`
}
