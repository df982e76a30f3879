package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/user"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	Create(ctx context.Context, dto user.CreateUserDTO) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID string, client internal.ClientInfo) (*session.Session, error)
	FindActiveByToken(ctx context.Context, token string) (*session.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

type Options struct {
	// EnforceSessionRecords makes a token valid only while its session
	// record exists and has not expired.
	EnforceSessionRecords bool
	AcceptLegacyTokens    bool
}

// Service is the session oracle: it turns bearer tokens into identities and
// issues them on signup and login.
type Service struct {
	users    UserStore
	sessions SessionStore
	codec    TokenCodec
	opts     Options
	logger   *slog.Logger
}

func NewService(users UserStore, sessions SessionStore, codec TokenCodec, opts Options, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		codec:    codec,
		opts:     opts,
		logger:   logger,
	}
}

// GetSession resolves token to an identity. It returns nil without error for
// every kind of bad token; errors are reserved for store failures.
func (s *Service) GetSession(ctx context.Context, token string) (*internal.Identity, error) {
	if token == "" {
		return nil, nil
	}

	claims, legacy := s.decode(token)
	if claims == nil {
		return nil, nil
	}

	identity := &internal.Identity{UserID: claims.UserID, Email: claims.Email}

	if !legacy {
		sess, err := s.sessions.FindActiveByToken(ctx, claims.SessionToken)
		switch {
		case err == nil:
			if sess.UserID != claims.UserID {
				s.logger.Warn("token and session disagree on user", "user_id", claims.UserID)
				return nil, nil
			}
			identity.SessionID = sess.ID
		case errors.Is(err, internal.ErrSessionNotFound):
			if s.opts.EnforceSessionRecords {
				s.logger.Debug("token refers to a revoked or expired session", "user_id", claims.UserID)
				return nil, nil
			}
		default:
			return nil, err
		}
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, internal.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.Email != claims.Email {
		return nil, nil
	}

	identity.CompanyName = u.CompanyName
	return identity, nil
}

func (s *Service) decode(token string) (*Claims, bool) {
	claims, err := s.codec.Decode(token)
	if err == nil {
		return claims, false
	}
	if s.opts.AcceptLegacyTokens {
		if legacy, lerr := DecodeLegacy(token); lerr == nil {
			return legacy, true
		}
	}
	s.logger.Debug("rejected bearer token", "error", err)
	return nil, false
}

// RequireAuth is GetSession for call sites that cannot proceed anonymously.
func (s *Service) RequireAuth(ctx context.Context, token string) (*internal.Identity, error) {
	identity, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, internal.ErrUnauthorized
	}
	return identity, nil
}

func (s *Service) Signup(ctx context.Context, dto SignupDTO, client internal.ClientInfo) (*Result, error) {
	u, err := s.users.Create(ctx, dto)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u, client)
}

func (s *Service) Login(ctx context.Context, dto LoginDTO, client internal.ClientInfo) (*Result, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.Authenticate(ctx, dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, internal.ErrInvalidCredentials) {
			s.logger.Warn("failed login", "email", dto.Email, "ip", client.IPAddress)
		}
		return nil, err
	}
	return s.issue(ctx, u, client)
}

func (s *Service) issue(ctx context.Context, u *user.User, client internal.ClientInfo) (*Result, error) {
	sess, err := s.sessions.Create(ctx, u.ID, client)
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(Claims{UserID: u.ID, Email: u.Email, SessionToken: sess.Token}, sess.ExpiresAt)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user signed in", "user_id", u.ID, "session_id", sess.ID)
	return &Result{Token: token, ExpiresAt: sess.ExpiresAt, SessionID: sess.ID, User: u}, nil
}

// Logout ends the session behind token. Unknown or invalid tokens are not an
// error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil || claims.SessionToken == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, claims.SessionToken); err != nil {
		return err
	}
	s.logger.Info("user signed out", "user_id", claims.UserID)
	return nil
}
