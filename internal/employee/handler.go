package employee

import (
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

const maxRosterUpload = 10 << 20

type ServiceAPI interface {
	GetAll(ctx context.Context, ownerID string) ([]*Employee, error)
	GetByID(ctx context.Context, ownerID, id string) (*Employee, error)
	Create(ctx context.Context, ownerID string, dto CreateEmployeeDTO) (*Employee, error)
	Update(ctx context.Context, ownerID, id string, dto UpdateEmployeeDTO) (*Employee, error)
	Delete(ctx context.Context, ownerID, id string) error
	ImportFile(ctx context.Context, ownerID string, r io.Reader, filename string) (*ImportResult, error)
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

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	employees, err := h.Service.GetAll(r.Context(), id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, "ListEmployees", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "employees", employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	e, err := h.Service.GetByID(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetEmployee", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "employee", e)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto CreateEmployeeDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Create(r.Context(), id.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateEmployee", err)
		return
	}

	h.Logger.Info("CreateEmployee: employee created", "employee_id", e.ID, "user_id", id.UserID)
	h.WriteSuccess(w, http.StatusCreated, "employee", e)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	var dto UpdateEmployeeDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateEmployee", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "employee", e)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	employeeID := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id.UserID, employeeID); err != nil {
		h.HandleServiceError(w, r, "DeleteEmployee", err)
		return
	}

	h.Logger.Info("DeleteEmployee: employee deleted", "employee_id", employeeID, "user_id", id.UserID)
	h.WriteSuccess(w, http.StatusOK, "", nil)
}

// ImportRoster handles POST /employees/import with a multipart "file" field.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRosterUpload)
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		h.Logger.Warn("ImportRoster: invalid upload", "error", err)
		h.WriteAppError(w, internal.NewValidationError("Expected a multipart upload with a file field", internal.ErrCodeInvalidFile))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	result, err := h.Service.ImportFile(r.Context(), id.UserID, file, header.Filename)
	if err != nil {
		h.HandleServiceError(w, r, "ImportRoster", err)
		return
	}

	h.Logger.Info("ImportRoster: roster imported",
		"user_id", id.UserID,
		"filename", header.Filename,
		"created", len(result.Created),
		"rejected", len(result.Rejected))
	h.WriteSuccess(w, http.StatusOK, "import", result)
}
