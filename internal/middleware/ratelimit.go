package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client with the given burst.
// Clients idle for longer than ttl are forgotten.
func NewRateLimiter(perMinute, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*limiterEntry),
		rate:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow reports whether the client may make a request now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.ttl {
		for key, e := range rl.clients {
			if now.Sub(e.lastSeen) > rl.ttl {
				delete(rl.clients, key)
			}
		}
		rl.lastSweep = now
	}

	entry, ok := rl.clients[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RateLimit rejects clients that exceed their request budget with 429.
func RateLimit(limiter *RateLimiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.Warn().Str("client_ip", ip).Str("path", r.URL.Path).Msg("rate limit exceeded")
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, model.ErrCodeRateLimited, "rate limit exceeded, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop and falls back to the peer address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
