package api

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateLimiterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(2, time.Minute)
	rl.now = clock.now

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "windows are per client")

	clock.t = clock.t.Add(20 * time.Second)
	assert.Equal(t, 41, rl.RetryAfter("10.0.0.1"))
	assert.Equal(t, 0, rl.RetryAfter("10.0.0.9"))

	clock.t = clock.t.Add(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(1, time.Minute)
	rl.now = clock.now

	rl.Allow("10.0.0.1")
	clock.t = clock.t.Add(90 * time.Second)
	rl.Allow("10.0.0.2")
	clock.t = clock.t.Add(45 * time.Second)
	rl.cleanup()

	assert.NotContains(t, rl.windows, "10.0.0.1")
	assert.Contains(t, rl.windows, "10.0.0.2")
}

func TestClientIPIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7", clientIP(req, nil))

	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	assert.Equal(t, "203.0.113.7", clientIP(req, nil))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req, nil))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:8080"

	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", clientIP(req, trusted))

	// The client controls everything left of what the proxies appended.
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.4, 10.9.9.9")
	assert.Equal(t, "198.51.100.4", clientIP(req, trusted))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.1.2.3", clientIP(req, trusted))
}
