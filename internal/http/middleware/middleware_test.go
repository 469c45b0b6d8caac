package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

type oneFault struct {
	status, retryAfter int
	used               bool
}

func (f *oneFault) Take(method, route string) (int, int, bool) {
	if f.used || method != http.MethodPost {
		return 0, 0, false
	}
	f.used = true
	return f.status, f.retryAfter, true
}

func TestAttachCorrelation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen ctxutil.Correlation
	r := gin.New()
	r.Use(AttachCorrelation())
	r.GET("/ping", func(c *gin.Context) {
		seen, _ = ctxutil.CorrelationFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(ctxutil.HeaderSessionID, "s-1")
	req.Header.Set(ctxutil.HeaderRequestID, "r-1")
	req.Header.Set(ctxutil.HeaderTraceID, "t-1")
	req.Header.Set(ctxutil.HeaderAttempt, "3")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, ctxutil.Correlation{SessionID: "s-1", RequestID: "r-1", TraceID: "t-1", Attempt: 3}, seen)
	assert.Equal(t, "r-1", rec.Header().Get(ctxutil.HeaderRequestID))
	assert.Equal(t, "t-1", rec.Header().Get(ctxutil.HeaderTraceID))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get(ctxutil.HeaderRequestID))
	assert.Equal(t, 1, seen.Attempt)
	assert.Empty(t, rec.Header().Get(ctxutil.HeaderTraceID))
}

func TestInjectFaultsThenLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "requests.log")
	log, err := logger.New("production", logger.WithOutputs(path), logger.WithRedaction(true), logger.WithHashSalt("s"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(AttachCorrelation(), RequestLogger(log), InjectFaults(&oneFault{status: http.StatusServiceUnavailable, retryAfter: 2}))
	r.POST("/messages", func(c *gin.Context) {
		c.Set(SubjectKey, "u1")
		c.Status(http.StatusCreated)
	})

	send := func(attempt string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/messages", nil)
		req.Header.Set(ctxutil.HeaderRequestID, "r-9")
		if attempt != "" {
			req.Header.Set(ctxutil.HeaderAttempt, attempt)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send("")
	assert.Equal(t, http.StatusServiceUnavailable, first.Code)
	assert.Equal(t, "2", first.Header().Get("Retry-After"))
	assert.Contains(t, first.Body.String(), `"code":"injected_fault"`)

	second := send("2")
	assert.Equal(t, http.StatusCreated, second.Code)

	log.Sync()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[0], `"fault":true`)
	assert.Contains(t, lines[0], `"request_id":"r-9"`)

	assert.Contains(t, lines[1], `"msg":"request succeeded after retry"`)
	assert.Contains(t, lines[1], `"attempt":2`)
	assert.Contains(t, lines[1], `"user_id":"hash:`)
	assert.NotContains(t, lines[1], `"user_id":"u1"`)
}

func TestRequestLoggerNilPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
