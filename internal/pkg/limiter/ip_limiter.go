/*
Package limiter provides per-IP request throttling for the HTTP surface.

It keeps one token bucket (rate.Limiter) per client address and prunes idle
buckets periodically so the map does not grow without bound. Per-identity
sliding-window limits for chat actions live in the moderation package; this
limiter only guards connection establishment and the REST endpoints.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
	"hubble/internal/pkg/resp"
)

// cleanupInterval controls how often idle buckets are swept.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter throttles requests per client IP address.
type IPRateLimiter struct {
	mu sync.RWMutex

	// buckets maps client IP to its token bucket.
	buckets map[string]*rate.Limiter

	// r and b configure the refill rate and burst size of new buckets.
	r rate.Limit
	b int
}

// NewIPRateLimiter returns an IPRateLimiter allowing r events per second
// with bursts of b, and starts the background sweep of idle buckets.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}

	go l.sweep()

	return l
}

// Limiter returns the bucket for ip, creating it on first sight.
func (l *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.RLock()
	bucket, ok := l.buckets[ip]
	l.mu.RUnlock()

	if ok {
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, ok = l.buckets[ip]; !ok {
		bucket = rate.NewLimiter(l.r, l.b)
		l.buckets[ip] = bucket
	}

	return bucket
}

// Allow reports whether a request from ip may proceed right now.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.Limiter(ip).Allow()
}

// sweep removes buckets whose tokens have fully refilled, meaning the IP has
// been idle for at least a full burst worth of time.
func (l *IPRateLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		removed := 0
		for ip, bucket := range l.buckets {
			if bucket.TokensAt(time.Now()) >= float64(bucket.Burst()) {
				delete(l.buckets, ip)
				removed++
			}
		}
		remaining := len(l.buckets)
		l.mu.Unlock()

		logx.Info("ip limiter sweep finished", "removed", removed, "remaining", remaining)
	}
}

// ClientIP extracts the host part of an HTTP remote address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}

// Middleware wraps next with the rate check, responding 429 when the
// caller's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			resp.RespondError(w, r, errs.New(errs.ErrRateLimited))
			return
		}

		next.ServeHTTP(w, r)
	})
}
