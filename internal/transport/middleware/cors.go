package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS builds the cors handler from the comma separated
// http_server.allowed_origins value. "*" allows any origin, but then
// credentials are not allowed. An empty value disables CORS.
func CORS(allowed string) func(http.Handler) http.Handler {
	var origins []string
	wildcard := false
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
			wildcard = wildcard || o == "*"
		}
	}

	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", TraceHeader},
		ExposedHeaders:   []string{TraceHeader},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
