package http

import (
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"grant-portal/internal/common/errors"
)

const defaultLimiterEntries = 10000

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RemoteAddrKey buckets by client address.
func RemoteAddrKey(r *http.Request) string {
	return r.RemoteAddr
}

// RateLimiter keeps one token bucket per key. Least recently used buckets
// are dropped once the table is full.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	cache, _ := lru.New[string, *rate.Limiter](defaultLimiterEntries)
	return &RateLimiter{
		limiters: cache,
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Add(key, l)
	return l
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(key KeyFunc, handler *errors.HTTPErrorHandler) func(http.Handler) http.Handler {
	if key == nil {
		key = RemoteAddrKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				k = r.RemoteAddr
			}
			if !rl.Allow(k) {
				handler.Write(w, r, errors.NewRateLimitedError(k))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
