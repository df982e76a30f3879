package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/shiftboard/internal"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope carrying the
// trace id, so a user report can be matched with the stack in the log.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				traceID := r.Header.Get(TraceHeader)
				logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"traceID", traceID,
					"stack", string(debug.Stack()))

				writePanicResponse(w, traceID)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writePanicResponse(w http.ResponseWriter, traceID string) {
	appErr := internal.NewInternalError("Internal server error", nil)
	body := map[string]interface{}{
		"success": false,
		"error":   appErr.Message,
		"code":    appErr.Code,
	}
	if traceID != "" {
		body["traceId"] = traceID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}
