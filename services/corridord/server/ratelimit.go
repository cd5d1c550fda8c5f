package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit bounds how often a single client may hit the open operator
// surface.
type RateLimit struct {
	RequestsPerMinute float64
	Burst             int
}

type rateEntry struct {
	limiter *rate.Limiter
}

// RateLimiter hands out per-client token buckets keyed by remote address.
type RateLimiter struct {
	cfg      RateLimit
	mu       sync.Mutex
	visitors map[string]*rateEntry
}

// NewRateLimiter constructs a limiter from configuration.
func NewRateLimiter(cfg RateLimit) *RateLimiter {
	return &RateLimiter{cfg: cfg, visitors: make(map[string]*rateEntry)}
}

// Middleware rejects clients that exceed their bucket with 429.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r == nil || r.cfg.RequestsPerMinute <= 0 {
			next.ServeHTTP(w, req)
			return
		}
		limiter := r.obtainLimiter(clientID(req))
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) obtainLimiter(id string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.visitors[id]
	if ok {
		return entry.limiter
	}
	perSecond := r.cfg.RequestsPerMinute / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := r.cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	r.visitors[id] = &rateEntry{limiter: limiter}
	go r.cleanup(id)
	return limiter
}

func (r *RateLimiter) cleanup(id string) {
	time.Sleep(10 * time.Minute)
	r.mu.Lock()
	delete(r.visitors, id)
	r.mu.Unlock()
}

func clientID(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
