package auth

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
)

const DefaultCookieName = "auth-token"

type ServiceAPI interface {
	GetSession(ctx context.Context, token string) (*internal.Identity, error)
	Signup(ctx context.Context, dto SignupDTO, client internal.ClientInfo) (*Result, error)
	Login(ctx context.Context, dto LoginDTO, client internal.ClientInfo) (*Result, error)
	Logout(ctx context.Context, token string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Cookie:      cookie,
	}
}

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	res, err := h.Service.Signup(r.Context(), dto, internal.ClientFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, "Signup", err)
		return
	}

	h.setCookie(w, res.Token, res.ExpiresAt)
	h.WriteSuccess(w, http.StatusCreated, "session", res)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	res, err := h.Service.Login(r.Context(), dto, internal.ClientFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, "Login", err)
		return
	}

	h.setCookie(w, res.Token, res.ExpiresAt)
	h.WriteSuccess(w, http.StatusOK, "session", res)
}

// Logout handles POST /auth/logout. It always clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := transport.TokenFromRequest(r, h.Cookie.Name)
	if token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			h.HandleServiceError(w, r, "Logout", err)
			return
		}
	}

	h.clearCookie(w)
	h.WriteSuccess(w, http.StatusOK, "", nil)
}

// Session handles GET /auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "user", id)
}

// Authenticate resolves the request token, when there is one, and stores the
// identity and client details in the request context. Anonymous requests pass
// through.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := internal.ContextWithClient(r.Context(), ClientInfo(r))

		if token := transport.TokenFromRequest(r, h.Cookie.Name); token != "" {
			id, err := h.Service.GetSession(ctx, token)
			if err != nil {
				h.HandleServiceError(w, r, "Authenticate", err)
				return
			}
			if id != nil {
				ctx = internal.ContextWithIdentity(ctx, id)
				ctx = logger.With(ctx, "userID", id.UserID)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests Authenticate could not resolve.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.Identity(r); !ok {
			h.WriteAppError(w, internal.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) setCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClientInfo reads the caller address and user agent from r. The address is
// the connection peer; behind a trusted proxy, RealIP has already rewritten
// RemoteAddr from the forwarding headers.
func ClientInfo(r *http.Request) internal.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return internal.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}
