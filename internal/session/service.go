package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
	"github.com/google/uuid"
)

type Repository interface {
	Find(ctx context.Context, pred func(sessionDatamodel.Session) bool) ([]sessionDatamodel.Session, error)
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	Update(ctx context.Context, id string, fn func(*sessionDatamodel.Session) error) (*sessionDatamodel.Session, error)
	Delete(ctx context.Context, id string, guard func(sessionDatamodel.Session) error) error
	DeleteWhere(ctx context.Context, pred func(sessionDatamodel.Session) bool) (int, error)
}

type Service struct {
	repo     Repository
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	newToken func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func WithTokenGenerator(next func() string) Option {
	return func(s *Service) { s.newToken = next }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		logger:   logger,
		ttl:      DefaultTTL,
		now:      time.Now,
		newID:    uuid.NewString,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a login for userID. The returned session carries the token.
func (s *Service) Create(ctx context.Context, userID string, client internal.ClientInfo) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:           s.newID(),
		UserID:       userID,
		Token:        s.newToken(),
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, ToDataModel(sess)); err != nil {
		s.logger.Error("failed to create session", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("session created", "session_id", sess.ID, "user_id", userID, "ip", client.IPAddress)
	return sess, nil
}

// GetUserSessions lists the unexpired sessions of userID, most recently
// active first. Expired rows stay in the store until purged.
func (s *Service) GetUserSessions(ctx context.Context, userID string) ([]*Session, error) {
	now := s.now()
	rows, err := s.repo.Find(ctx, func(row sessionDatamodel.Session) bool {
		return row.UserID == userID && row.ExpiresAt.After(now)
	})
	if err != nil {
		return nil, err
	}
	sessions := make([]*Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, FromDataModel(&rows[i]))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActiveAt.After(sessions[j].LastActiveAt)
	})
	return sessions, nil
}

// FindActiveByToken returns ErrSessionNotFound for unknown and expired tokens.
func (s *Service) FindActiveByToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, internal.ErrSessionNotFound
	}
	now := s.now()
	rows, err := s.repo.Find(ctx, func(row sessionDatamodel.Session) bool {
		return row.Token == token && row.ExpiresAt.After(now)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.ErrSessionNotFound
	}
	return FromDataModel(&rows[0]), nil
}

// Touch bumps lastActiveAt. It does not move expiresAt.
func (s *Service) Touch(ctx context.Context, id string) (*Session, error) {
	now := s.now().UTC()
	row, err := s.repo.Update(ctx, id, func(row *sessionDatamodel.Session) error {
		if !row.ExpiresAt.After(now) {
			return internal.ErrSessionNotFound
		}
		row.LastActiveAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Delete removes one of userID's sessions. A session of another user is
// reported as not found.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.Delete(ctx, id, func(row sessionDatamodel.Session) error {
		if row.UserID != userID {
			return internal.ErrSessionNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("session revoked", "session_id", id, "user_id", userID)
	return nil
}

// DeleteAllExcept removes every session of userID but currentID.
func (s *Service) DeleteAllExcept(ctx context.Context, userID, currentID string) (int, error) {
	n, err := s.repo.DeleteWhere(ctx, func(row sessionDatamodel.Session) bool {
		return row.UserID == userID && row.ID != currentID
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("other sessions revoked", "user_id", userID, "kept", currentID, "removed", n)
	return n, nil
}

// DeleteByToken ends the session holding token. Unknown tokens are ignored.
func (s *Service) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := s.repo.DeleteWhere(ctx, func(row sessionDatamodel.Session) bool {
		return row.Token == token
	})
	return err
}

// PurgeExpired physically removes expired sessions.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()
	n, err := s.repo.DeleteWhere(ctx, func(row sessionDatamodel.Session) bool {
		return !row.ExpiresAt.After(now)
	})
	if err != nil {
		s.logger.Error("failed to purge sessions", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", "removed", n)
	}
	return n, nil
}

// Views marks the caller's own session among userID's active ones.
func (s *Service) Views(ctx context.Context, userID, currentID string) ([]View, error) {
	sessions, err := s.GetUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, View{Session: sess, Current: sess.ID == currentID})
	}
	return views, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, internal.ErrSessionNotFound)
}
