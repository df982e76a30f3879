package payroll

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/go-chi/chi"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type ServiceAPI interface {
	Summary(ctx context.Context, ownerID, scheduleID string) (*Summary, error)
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

// GetPayroll handles GET /schedules/{id}/payroll
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	summary, err := h.Service.Summary(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetPayroll", err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "payroll", summary)
}

// DownloadPayroll handles GET /schedules/{id}/payroll.xlsx
func (h *Handler) DownloadPayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Identity(r)
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorized)
		return
	}

	summary, err := h.Service.Summary(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "DownloadPayroll", err)
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, summary); err != nil {
		h.HandleServiceError(w, r, "DownloadPayroll", internal.NewInternalError("Could not build the payroll workbook", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="paie-%s.xlsx"`, filename(summary)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Warn("DownloadPayroll: client went away", "error", err)
	}
}

func filename(s *Summary) string {
	name := unsafeFilename.ReplaceAllString(s.ScheduleName, "-")
	if name == "" || name == "-" {
		return s.ScheduleID
	}
	return name
}
