package session

import (
	"time"

	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
)

// DefaultTTL is how long a login stays valid. It is not extended by activity.
const DefaultTTL = 30 * 24 * time.Hour

type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Token        string    `json:"-"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// View is what the "manage your sessions" screen gets back.
type View struct {
	*Session
	Current bool `json:"current"`
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:           s.ID,
		UserID:       s.UserID,
		Token:        s.Token,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

func FromDataModel(s *sessionDatamodel.Session) *Session {
	return &Session{
		ID:           s.ID,
		UserID:       s.UserID,
		Token:        s.Token,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
	}
}
