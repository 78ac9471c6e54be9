// Package ratelimit throttles expensive endpoints per authenticated user.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"reup-dayplan-backend/internal/auth"
)

// PerUser hands out one token bucket per user id.
type PerUser struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[int]*rate.Limiter
}

// New allows perMinute requests per user per minute, with a burst of the
// same size. perMinute <= 0 disables limiting.
func New(perMinute int) *PerUser {
	p := &PerUser{limiters: map[int]*rate.Limiter{}}
	if perMinute > 0 {
		p.limit = rate.Every(time.Minute / time.Duration(perMinute))
		p.burst = perMinute
	}
	return p
}

// Allow spends one token of uid's bucket.
func (p *PerUser) Allow(uid int) bool {
	if p == nil || p.burst == 0 {
		return true
	}
	p.mu.Lock()
	l, ok := p.limiters[uid]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[uid] = l
	}
	p.mu.Unlock()
	return l.Allow()
}

// Wrap must run inside auth.Middleware.Wrap.
func (p *PerUser) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !p.Allow(uid) {
			retry := time.Minute / time.Duration(max(p.burst, 1))
			w.Header().Set("Retry-After", strconv.Itoa(int(max(retry.Seconds(), 1))))
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
