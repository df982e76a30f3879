package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextIdentityKey ctxKey = "identity"
	ContextClientKey   ctxKey = "client"
)

// Identity is what the session oracle resolves a token to.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	SessionID   string `json:"sessionId,omitempty"`
}

// ClientInfo describes the caller of the current request.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok && id != nil
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID
	}
	return ""
}

func ClientFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	c, _ := ctx.Value(ContextClientKey).(ClientInfo)
	return c
}

func ContextWithClient(ctx context.Context, c ClientInfo) context.Context {
	return context.WithValue(ctx, ContextClientKey, c)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
