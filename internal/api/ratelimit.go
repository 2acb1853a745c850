// Per-client rate limiting for the replay endpoint: a fixed window of maxRate
// requests per client address, keyed on the connection peer unless the peer
// is a trusted proxy.
package api

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts requests per client within a fixed window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	remaining int
	start     time.Time
}

// NewRateLimiter allows maxRate requests per client in each period.
// Stale windows are only dropped while Run is active.
func NewRateLimiter(maxRate int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		period:  period,
		now:     time.Now,
	}
}

// Run drops stale windows once per period until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// Allow spends one request for client, opening a new window when the
// previous one has elapsed.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, ok := rl.windows[client]
	if !ok || now.Sub(win.start) >= rl.period {
		rl.windows[client] = &window{remaining: rl.maxRate - 1, start: now}
		return true
	}
	if win.remaining == 0 {
		return false
	}
	win.remaining--
	return true
}

// RetryAfter returns the whole seconds until client's window resets.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.windows[client]
	if !ok {
		return 0
	}
	left := rl.period - rl.now().Sub(win.start)
	if left < 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, win := range rl.windows {
		if now.Sub(win.start) > 2*rl.period {
			delete(rl.windows, client)
		}
	}
}

// RateLimitMiddleware answers 429 with Retry-After once a client is over its
// limit. X-Forwarded-For is only consulted when the peer is in trusted.
func RateLimitMiddleware(rl *RateLimiter, trusted []netip.Prefix, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r, trusted)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP returns the connection peer. When the peer is a trusted proxy it
// walks X-Forwarded-For from the right and returns the first hop that is not
// itself trusted, since only the proxies' own appends can be believed.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return peer
}

func isTrusted(host string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
