// Package middleware provides HTTP middleware for the looksee API server.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit enforces a per-client token-bucket limit. Clients are keyed by
// remote IP; stale buckets are pruned whenever the map grows past its soft
// cap so the server cannot accumulate one limiter per ephemeral client
// forever.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	const softCap = 1024

	type bucket struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if b, ok := buckets[ip]; ok {
			b.lastSeen = time.Now()
			return b.limiter
		}
		if len(buckets) >= softCap {
			cutoff := time.Now().Add(-10 * time.Minute)
			for k, b := range buckets {
				if b.lastSeen.Before(cutoff) {
					delete(buckets, k)
				}
			}
		}
		b := &bucket{limiter: rate.NewLimiter(rate.Limit(rps), burst), lastSeen: time.Now()}
		buckets[ip] = b
		return b.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
