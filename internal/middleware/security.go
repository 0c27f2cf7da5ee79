package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/kalimapp/kalima-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterPool is an in-process per-key token bucket registry with idle
// eviction. Complements the Redis limiter: this one is cheap enough to sit
// in front of everything, including when Redis is degraded.
type limiterPool struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	newFn   func() *rate.Limiter
	once    sync.Once
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = 30 * time.Minute
)

func newLimiterPool(newFn func() *rate.Limiter) *limiterPool {
	return &limiterPool{entries: make(map[string]*limiterEntry), newFn: newFn}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.once.Do(p.startCleanup)

	e, ok := p.entries[key]
	if !ok {
		e = &limiterEntry{limiter: p.newFn()}
		p.entries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (p *limiterPool) startCleanup() {
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			p.mu.Lock()
			now := time.Now()
			for key, e := range p.entries {
				if now.Sub(e.lastUse) > limiterIdleTTL {
					delete(p.entries, key)
				}
			}
			p.mu.Unlock()
		}
	}()
}

// Global limiter: 2 req/s per IP with burst 20.
var globalLimiters = newLimiterPool(func() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(2), 20)
})

// GlobalRateLimit caps each IP at 2 req/s (burst 20). Returns 429 when
// exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.FromRequest(r)
		if !globalLimiters.get(ip).Allow() {
			writeRateLimited(w, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login limiter: 1 attempt per 5s per IP with burst 2.
var loginLimiters = newLimiterPool(func() *rate.Limiter {
	return rate.NewLimiter(rate.Every(5*time.Second), 2)
})

var loginPaths = map[string]bool{
	"/api/auth/signin": true,
	"/api/auth/signup": true,
}

// LoginRateLimit applies a stricter limit to credential endpoints only.
// Use after GlobalRateLimit.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.FromRequest(r)
		if !loginLimiters.get(ip).Allow() {
			writeRateLimited(w, "Too many attempts. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns the middleware chain enabled when ENV is
// production: SecurityHeaders → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		LoginRateLimit,
	}
}
