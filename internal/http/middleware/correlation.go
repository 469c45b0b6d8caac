package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
)

// AttachCorrelation reads the caller's session, request and attempt headers
// into the request context. A missing request id is generated; the trace id
// prefers the server span so it matches exported traces.
func AttachCorrelation() gin.HandlerFunc {
	return func(c *gin.Context) {
		corr := ctxutil.Correlation{
			SessionID: strings.TrimSpace(c.GetHeader(ctxutil.HeaderSessionID)),
			RequestID: strings.TrimSpace(c.GetHeader(ctxutil.HeaderRequestID)),
			Attempt:   ctxutil.ParseAttempt(strings.TrimSpace(c.GetHeader(ctxutil.HeaderAttempt))),
		}
		if corr.RequestID == "" {
			corr.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			corr.TraceID = sc.TraceID().String()
		} else {
			corr.TraceID = strings.TrimSpace(c.GetHeader(ctxutil.HeaderTraceID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithCorrelation(c.Request.Context(), corr))
		c.Writer.Header().Set(ctxutil.HeaderRequestID, corr.RequestID)
		if corr.TraceID != "" {
			c.Writer.Header().Set(ctxutil.HeaderTraceID, corr.TraceID)
		}
		c.Next()
	}
}
