package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes {"success": true, key: data}. An empty key omits the payload.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, key string, data interface{}) {
	body := map[string]interface{}{"success": true}
	if key != "" {
		body[key] = data
	}
	h.WriteJSON(w, status, body)
}

// WriteError writes {"success": false, "error": message}
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	body := map[string]interface{}{
		"success": false,
		"error":   appErr.GetDetailedMessage(),
		"code":    appErr.Code,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	h.WriteJSON(w, appErr.StatusCode, body)
}

// HandleServiceError maps a service error onto the response envelope.
// op names the handler for the log line.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	lg := h.Logger
	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		lg = lg.With("traceID", traceID)
	}

	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			lg.Error(op+": request failed", "error", err, "code", appErr.Code)
		} else {
			lg.Warn(op+": request rejected", "error", err, "code", appErr.Code)
		}
		h.WriteAppError(w, appErr)
		return
	}

	if store.IsStoreError(err) {
		lg.Error(op+": store failure", "error", err)
		h.WriteAppError(w, internal.NewStoreError("The data store could not be read or written", err))
		return
	}

	lg.Error(op+": unexpected error", "error", err)
	h.WriteAppError(w, internal.NewInternalError("Internal server error", err))
}

// DecodeJSON reads a JSON request body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *internal.AppError {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	return BearerToken(r)
}

func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// TokenFromRequest prefers the auth cookie and falls back to a bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return BearerToken(r)
}

// Identity returns the caller resolved by the auth middleware.
func (h *BaseHandler) Identity(r *http.Request) (*internal.Identity, bool) {
	return internal.IdentityFromContext(r.Context())
}
