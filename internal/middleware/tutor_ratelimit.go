package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kalimapp/kalima-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Tutor endpoints fan out to a paid completion API, so they get their own
// budget on top of the global limiter: 10 messages/min per IP, burst 5.
var tutorLimiters = newLimiterPool(func() *rate.Limiter {
	return rate.NewLimiter(rate.Every(6*time.Second), 5)
})

// TutorRateLimit applies the tutor budget to /api/tutor and /ws/tutor.
func TutorRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/tutor") && !strings.HasPrefix(r.URL.Path, "/ws/tutor") {
			next.ServeHTTP(w, r)
			return
		}

		// History reads are cheap; only gate message sends and socket
		// upgrades.
		if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/tutor/history") {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientip.FromRequest(r)
		if !tutorLimiters.get(ip).Allow() {
			writeRateLimited(w, "Too many tutor messages. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
