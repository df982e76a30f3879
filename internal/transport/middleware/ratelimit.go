package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewRateLimiter allows perSecond requests per client with the given burst.
// Buckets unused for ten minutes are forgotten.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, k)
		}
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler rejects callers over their budget with 429. It keys on the client
// address stored by the auth middleware, falling back to the RemoteAddr host.
// Forwarding headers only count once RealIP accepted them.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := internal.ClientFromContext(r.Context()).IPAddress
		if key == "" {
			key = RemoteHost(r.RemoteAddr)
		}

		if !rl.Allow(key) {
			appErr := internal.NewRateLimitError("Too many attempts, try again shortly")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(appErr.StatusCode)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   appErr.Message,
				"code":    appErr.Code,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
