package api

import (
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
)

// limiter is a single token bucket shared by every client. The server is
// meant for one local player, so per-client buckets would buy nothing.
type limiter struct {
	bucket *rate.Limiter
}

// newLimiter returns nil when rps is not positive, which disables limiting.
func newLimiter(rps float64, burst int) *limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiter{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket.Allow() {
			w.Header().Set("Retry-After", "1")
			response.TooManyRequests(w, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
