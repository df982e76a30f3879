package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxLoggedBody caps how much of a request or response body ends up in the log.
const maxLoggedBody = 4 << 10

// sensitiveFields are matched as substrings of lower-cased header names and
// JSON keys.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"key",
	"session",
	"credential",
	"auth",
	"cookie",
}

// quietPaths are probed by load balancers and the docs UI; logging them
// drowns everything else.
var quietPaths = []string{"/api/v1/health", "/api/v1/ping", "/swagger/", "/openapi.yml"}

// LoggingMiddleware writes one access log line per request, with headers and
// JSON bodies passed through the sensitive field filter. 4xx responses log at
// warn, 5xx at error.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isQuiet(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqBody := captureRequestBody(r)

			rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request",
				"traceID", r.Header.Get(TraceHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", filterSensitiveHeaders(r.Header),
				"request_body", reqBody,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"response_body", rec.loggedBody(),
			)
		})
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// captureRequestBody reads the body for the log and puts it back for the
// handler. Uploads are not read.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return "[MULTIPART]"
	}

	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}
	return filterSensitiveBody(body)
}

// bodyRecorder keeps the status, the full size and the first maxLoggedBody
// bytes of a response.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	size   int
	head   bytes.Buffer
}

func (b *bodyRecorder) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	if room := maxLoggedBody - b.head.Len(); room > 0 {
		b.head.Write(p[:min(room, len(p))])
	}
	n, err := b.ResponseWriter.Write(p)
	b.size += n
	return n, err
}

func (b *bodyRecorder) loggedBody() string {
	ct := b.Header().Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		return "[BINARY]"
	}
	return filterSensitiveBody(b.head.Bytes())
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// filterSensitiveBody masks sensitive keys of a JSON body. A body that is not
// JSON is dropped entirely if it mentions a sensitive field.
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED]"
		}
		return string(body)
	}

	out, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[UNLOGGABLE]"
	}
	return string(out)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
				continue
			}
			filtered[key] = filterSensitiveJSON(value)
		}
		return filtered
	case []interface{}:
		for i, item := range v {
			v[i] = filterSensitiveJSON(item)
		}
		return v
	default:
		return v
	}
}
