package ctxutil

import (
	"context"
	"strconv"
)

// Headers carrying a Correlation between the client and the API.
const (
	HeaderSessionID = "X-Session-Id"
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"
	HeaderAttempt   = "X-Retry-Attempt"
)

// Correlation ties log lines on both sides of a call to the chat session that
// issued it. Attempt is 1 for the first try of a request.
type Correlation struct {
	SessionID string
	RequestID string
	TraceID   string
	Attempt   int
}

type correlationKey struct{}

func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	return context.WithValue(ctx, correlationKey{}, c)
}

func CorrelationFrom(ctx context.Context) (Correlation, bool) {
	if ctx == nil {
		return Correlation{}, false
	}
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}

// WithSessionID sets the session on ctx, keeping any other fields already
// present.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	c, _ := CorrelationFrom(ctx)
	c.SessionID = sessionID
	return WithCorrelation(ctx, c)
}

// Fields returns the non-empty fields as logger key/value pairs.
func (c Correlation) Fields() []interface{} {
	var kv []interface{}
	if c.SessionID != "" {
		kv = append(kv, "session_id", c.SessionID)
	}
	if c.RequestID != "" {
		kv = append(kv, "request_id", c.RequestID)
	}
	if c.TraceID != "" {
		kv = append(kv, "trace_id", c.TraceID)
	}
	if c.Attempt > 1 {
		kv = append(kv, "attempt", c.Attempt)
	}
	return kv
}

// ParseAttempt reads an attempt header value; anything unusable is 1.
func ParseAttempt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
