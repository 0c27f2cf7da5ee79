package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the counting window for per-IP request limits
	RateLimitWindow = 60 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after abuse
	BlockedIPDuration = 24 * time.Hour
)

// RateLimitMiddleware provides Redis-backed per-IP rate limiting with
// temporary blocking of abusive IPs. Fails open when Redis is unavailable.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipAddress := clientip.FromRequest(r)
		ctx := context.Background()

		blockedKey := BlockedIPKeyPrefix + ipAddress
		isBlocked, err := database.RedisClient.Exists(ctx, blockedKey).Result()
		if err == nil && isBlocked > 0 {
			writeRateLimited(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		rateLimitKey := RateLimitKeyPrefix + ipAddress

		count, err := database.RedisClient.Incr(ctx, rateLimitKey).Result()
		if err != nil {
			// Redis down: allow the request rather than take the API out.
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			database.RedisClient.Expire(ctx, rateLimitKey, RateLimitWindow)
		}

		if count > RateLimitMaxRequests {
			database.RedisClient.Set(ctx, blockedKey, "1", BlockedIPDuration)
			writeRateLimited(w, "Too many requests. Your IP has been temporarily blocked.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeRateLimited(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
