package httpx

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Policy decides how often and how long to wait between attempts of one
// request. Only idempotent methods are ever replayed.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	// MaxDelay caps a server-requested Retry-After. Zero means no cap.
	MaxDelay time.Duration
	// Jitter spreads each wait by ±Jitter of itself, in [0, 1].
	Jitter float64

	now func() time.Time
}

// Attempts is the total number of tries allowed for method.
func (p Policy) Attempts(method string) int {
	if !IsIdempotent(method) || p.MaxRetries <= 0 {
		return 1
	}
	return 1 + p.MaxRetries
}

// Wait returns how long to sleep before the next attempt. A usable
// Retry-After header wins over Delay.
func (p Policy) Wait(h http.Header) time.Duration {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	d := p.Delay
	if ra, ok := RetryAfter(h, now()); ok {
		d = ra
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return jitter(d, p.Jitter)
}

func IsIdempotent(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// IsRetryableHTTPStatus covers timeouts, throttling and server faults.
func IsRetryableHTTPStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// RetryAfter parses a Retry-After header given as seconds or an HTTP date.
func RetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(v)
	if err != nil || !at.After(now) {
		return 0, false
	}
	return at.Sub(now), true
}

func jitter(d time.Duration, frac float64) time.Duration {
	if d <= 0 || frac <= 0 {
		return d
	}
	if frac > 1 {
		frac = 1
	}
	spread := float64(d) * frac
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
