package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/http/response"
)

const faultInjectedKey = "fault_injected"

// Faults decides whether a request should fail before reaching its handler.
type Faults interface {
	Take(method, route string) (status int, retryAfter int, ok bool)
}

func InjectFaults(f Faults) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		status, retryAfter, ok := f.Take(c.Request.Method, route)
		if !ok {
			c.Next()
			return
		}
		c.Set(faultInjectedKey, true)
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
		}
		response.AbortError(c, status, "injected_fault", errors.New(http.StatusText(status)))
	}
}
