package middleware

import (
	"net/http"

	"github.com/frahmantamala/shiftboard/pkg/logger"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID makes sure every request carries a trace id. The id is written back
// onto the request header so handlers can attach it to their own log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
			r.Header.Set(TraceHeader, traceID)
		}

		// inject into context
		ctx := logger.With(r.Context(), "traceID", traceID)

		// propagate back to response
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
