package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

// Envelope is the error body every non-2xx response carries:
// {"error": {"message": "...", "code": "..."}}.
type Envelope struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func envelope(code string, err error) Envelope {
	msg := http.StatusText(http.StatusInternalServerError)
	if err != nil {
		msg = err.Error()
	}
	return Envelope{Error: Detail{Message: msg, Code: code}}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, envelope(code, err))
}

// AbortError is RespondError for middleware: later handlers do not run.
func AbortError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, envelope(code, err))
}

// RespondAPIError writes a classified error with its own status and message.
// Anything unclassified is a 500.
func RespondAPIError(c *gin.Context, err error) {
	var e *apierr.Error
	if !errors.As(err, &e) || e.Status == 0 {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	c.JSON(e.Status, Envelope{Error: Detail{Message: e.Message, Code: e.Code}})
}

func RespondOK(c *gin.Context, payload any) { c.JSON(http.StatusOK, payload) }

func RespondNoContent(c *gin.Context) { c.Status(http.StatusNoContent) }
