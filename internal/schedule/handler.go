package schedule

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAll(ctx context.Context, ownerID string) ([]*Schedule, error)
	GetByID(ctx context.Context, ownerID, id string) (*Schedule, error)
	Create(ctx context.Context, ownerID string, dto CreateScheduleDTO) (*Schedule, error)
	Update(ctx context.Context, ownerID, id string, dto UpdateScheduleDTO) (*Schedule, error)
	Delete(ctx context.Context, ownerID, id string) error
	Publish(ctx context.Context, ownerID, id string) (*Schedule, error)
	Unpublish(ctx context.Context, ownerID, id string) (*Schedule, error)
	Generate(ctx context.Context, ownerID, id string) (*Schedule, error)
	AddShift(ctx context.Context, ownerID, id string, dto ShiftDTO) (*Schedule, error)
	RemoveShift(ctx context.Context, ownerID, id, shiftID string) (*Schedule, error)
	EmployeeShifts(ctx context.Context, ownerID, employeeID string) ([]EmployeeShift, error)
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

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	schedules, err := h.Service.GetAll(r.Context(), id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, "ListSchedules", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "schedules", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	sch, err := h.Service.GetByID(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetSchedule", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "schedule", sch)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto CreateScheduleDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	sch, err := h.Service.Create(r.Context(), id.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateSchedule", err)
		return
	}

	h.Logger.Info("CreateSchedule: schedule created", "schedule_id", sch.ID, "user_id", id.UserID)
	h.WriteSuccess(w, http.StatusCreated, "schedule", sch)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto UpdateScheduleDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	sch, err := h.Service.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateSchedule", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "schedule", sch)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	if err := h.Service.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteSchedule", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", nil)
}

func (h *Handler) PublishSchedule(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "PublishSchedule", h.Service.Publish)
}

func (h *Handler) UnpublishSchedule(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "UnpublishSchedule", h.Service.Unpublish)
}

// GenerateSchedule answers 202; clients poll the schedule for its status.
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	sch, err := h.Service.Generate(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GenerateSchedule", err)
		return
	}

	h.WriteSuccess(w, http.StatusAccepted, "schedule", sch)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, ownerID, id string) (*Schedule, error)) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	sch, err := fn(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, op, err)
		return
	}

	h.Logger.Info(op+": status changed", "schedule_id", sch.ID, "status", sch.Status, "user_id", id.UserID)
	h.WriteSuccess(w, http.StatusOK, "schedule", sch)
}

func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto ShiftDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	sch, err := h.Service.AddShift(r.Context(), id.UserID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "AddShift", err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "schedule", sch)
}

func (h *Handler) RemoveShift(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	sch, err := h.Service.RemoveShift(r.Context(), id.UserID, chi.URLParam(r, "id"), chi.URLParam(r, "shiftId"))
	if err != nil {
		h.HandleServiceError(w, r, "RemoveShift", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "schedule", sch)
}

// EmployeeShifts handles GET /employees/{id}/shifts
func (h *Handler) EmployeeShifts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	shifts, err := h.Service.EmployeeShifts(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "EmployeeShifts", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "shifts", shifts)
}
