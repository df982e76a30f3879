package session

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Views(ctx context.Context, userID, currentID string) ([]View, error)
	Touch(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllExcept(ctx context.Context, userID, currentID string) (int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// ListSessions handles GET /sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	views, err := h.Service.Views(r.Context(), id.UserID, id.SessionID)
	if err != nil {
		h.HandleServiceError(w, r, "ListSessions", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "sessions", views)
}

// RevokeSession handles DELETE /sessions/{id}
func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	if err := h.Service.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "RevokeSession", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", nil)
}

// RevokeOtherSessions handles DELETE /sessions
func (h *Handler) RevokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	n, err := h.Service.DeleteAllExcept(r.Context(), id.UserID, id.SessionID)
	if err != nil {
		h.HandleServiceError(w, r, "RevokeOtherSessions", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "revoked", n)
}

// Ping handles POST /sessions/ping
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}
	if id.SessionID == "" {
		h.WriteSuccess(w, http.StatusOK, "", nil)
		return
	}

	sess, err := h.Service.Touch(r.Context(), id.SessionID)
	if err != nil {
		h.HandleServiceError(w, r, "Ping", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "session", sess)
}
