package middleware

import (
	"net/http"
	"time"

	"pizzeria-backend/pkg/utils"

	"github.com/go-chi/httprate"
)

// RateLimitByIP limits credential endpoints per client IP. A non-positive
// limit disables it.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseTooManyRequests(w, "Too many requests, try again later")
		}),
	)
}
