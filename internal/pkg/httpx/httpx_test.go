package httpx

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestAttempts(t *testing.T) {
	p := Policy{MaxRetries: 3}
	if got := p.Attempts(http.MethodGet); got != 4 {
		t.Fatalf("GET: want=4 got=%d", got)
	}
	if got := p.Attempts(http.MethodPost); got != 1 {
		t.Fatalf("POST: want=1 got=%d", got)
	}
	if got := (Policy{}).Attempts(http.MethodGet); got != 1 {
		t.Fatalf("no retries: want=1 got=%d", got)
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{408: true, 429: true, 500: true, 503: true, 400: false, 404: false, 422: false} {
		if got := IsRetryableHTTPStatus(code); got != want {
			t.Fatalf("%d: want=%v got=%v", code, want, got)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := http.Header{}
	if _, ok := RetryAfter(h, now); ok {
		t.Fatalf("missing header should not parse")
	}
	h.Set("Retry-After", "2")
	if d, ok := RetryAfter(h, now); !ok || d != 2*time.Second {
		t.Fatalf("seconds: got=%v ok=%v", d, ok)
	}
	h.Set("Retry-After", now.Add(5*time.Second).Format(http.TimeFormat))
	if d, ok := RetryAfter(h, now); !ok || d != 5*time.Second {
		t.Fatalf("date: got=%v ok=%v", d, ok)
	}
	h.Set("Retry-After", "soon")
	if _, ok := RetryAfter(h, now); ok {
		t.Fatalf("garbage should not parse")
	}
}

func TestPolicyWait(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Policy{Delay: time.Second, MaxDelay: 3 * time.Second, now: func() time.Time { return now }}
	if got := p.Wait(http.Header{}); got != time.Second {
		t.Fatalf("default: want=1s got=%v", got)
	}
	h := http.Header{}
	h.Set("Retry-After", "60")
	if got := p.Wait(h); got != 3*time.Second {
		t.Fatalf("capped: want=3s got=%v", got)
	}
	p.Jitter = 0.5
	for i := 0; i < 20; i++ {
		if got := p.Wait(http.Header{}); got < 500*time.Millisecond || got > 1500*time.Millisecond {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
}

func TestSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error")
	}
}
