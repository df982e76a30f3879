package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error)
	ChangePassword(ctx context.Context, id string, dto ChangePasswordDTO) error
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

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	u, err := h.Service.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, "GetCurrentUser", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "user", u)
}

// UpdateCurrentUser handles PUT /users/me
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto UpdateUserDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	u, err := h.Service.Update(r.Context(), id.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateCurrentUser", err)
		return
	}

	h.Logger.Info("UpdateCurrentUser: settings saved", "user_id", u.ID)
	h.WriteSuccess(w, http.StatusOK, "user", u)
}

// ChangePassword handles PUT /users/me/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto ChangePasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), id.UserID, dto); err != nil {
		h.HandleServiceError(w, r, "ChangePassword", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", nil)
}
