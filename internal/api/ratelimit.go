// Per-client request quotas for admin endpoints that run the traffic router
// on demand.
package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limiter grants each client a fixed number of requests per window. The
// window opens on a client's first request.
type Limiter struct {
	quota  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*usage
}

type usage struct {
	opened time.Time
	used   int
}

// NewLimiter allows quota requests per client in every window.
func NewLimiter(quota int, window time.Duration) *Limiter {
	return &Limiter{
		quota:   quota,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*usage),
	}
}

// Take spends one request for client. Once the quota is spent it reports
// false and how long until the window reopens.
func (l *Limiter) Take(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	u := l.clients[client]
	if u == nil || now.Sub(u.opened) >= l.window {
		u = &usage{opened: now}
		l.clients[client] = u
	}
	if u.used >= l.quota {
		return false, l.window - now.Sub(u.opened)
	}
	u.used++
	return true, 0
}

// evict forgets clients idle for two windows. Caller holds mu.
func (l *Limiter) evict(now time.Time) {
	for c, u := range l.clients {
		if now.Sub(u.opened) > 2*l.window {
			delete(l.clients, c)
		}
	}
}

// Limit answers 429 with a Retry-After once the caller's quota is spent.
func Limit(l *Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.Take(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP is the first X-Forwarded-For hop, else the remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		ip = ip[:i]
	}
	return ip
}
