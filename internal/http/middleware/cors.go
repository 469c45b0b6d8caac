package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
)

// DefaultAllowOrigins are the dev servers a browser front end usually runs on.
var DefaultAllowOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the API's methods and correlation headers from origins.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = DefaultAllowOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Authorization", "Content-Type",
			ctxutil.HeaderRequestID, ctxutil.HeaderSessionID, ctxutil.HeaderAttempt,
		},
		ExposeHeaders:    []string{ctxutil.HeaderRequestID, ctxutil.HeaderTraceID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
