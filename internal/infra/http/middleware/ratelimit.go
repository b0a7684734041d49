package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/ratelimit"
)

// RateLimit gates requests with the given preset. It runs after Auth so
// authenticated callers are counted per principal, not per IP. The pipeline
// short-circuits here: a rejected request never reaches the datastore.
func RateLimit(limiter ratelimit.Limiter, cfg ratelimit.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			if p, ok := auth.FromContext(r.Context()); ok {
				userID = p.ID
			}
			identifier := ratelimit.Identifier(userID, clientIP(r))

			result, err := limiter.Check(r.Context(), identifier, cfg)
			if err != nil {
				// Fail open: limiting is protection, not correctness.
				log.Printf("rate limit check failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				RecordRateLimitRejection()
				retryAfter := result.Reset - time.Now().Unix()
				if retryAfter < 0 {
					retryAfter = 0
				}
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				apperr.WriteHTTP(w, apperr.RateLimited(result.Limit, result.Remaining, result.Reset))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP checks the usual proxy headers before falling back to the
// connection address.
func clientIP(r *http.Request) string {
	for _, header := range []string{"X-Real-IP", "X-Forwarded-For", "CF-Connecting-IP", "X-Client-IP"} {
		if value := r.Header.Get(header); value != "" {
			// X-Forwarded-For may hold a chain; the first hop is the client.
			first, _, _ := strings.Cut(value, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
