package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-docchat/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-docchat/internal/http/middleware"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Origins     []string

	AuthMiddleware *httpMW.AuthMiddleware
	Faults         httpMW.Faults

	ConversationHandler *httpH.ConversationHandler
	DocumentHandler     *httpH.DocumentHandler
	AnalyticsHandler    *httpH.AnalyticsHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "docchat-mock-api"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachCorrelation())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.Origins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.Faults != nil {
			protected.Use(httpMW.InjectFaults(cfg.Faults))
		}

		// Conversations
		if h := cfg.ConversationHandler; h != nil {
			protected.POST("/conversations/", h.Create)
			protected.GET("/conversations/", h.List)
			protected.GET("/conversations/:id", h.Get)
			protected.DELETE("/conversations/:id", h.Delete)
			protected.POST("/conversations/:id/messages/", h.SendMessage)
			protected.GET("/conversations/:id/messages/", h.ListMessages)
		}

		// Documents
		if h := cfg.DocumentHandler; h != nil {
			protected.POST("/documents/upload/", h.Upload)
			protected.GET("/documents/", h.List)
			protected.DELETE("/documents/:id", h.Delete)
			protected.GET("/documents/:id/status", h.Status)
		}

		// Analytics
		if h := cfg.AnalyticsHandler; h != nil {
			protected.GET("/analytics/overview", h.Overview)
			protected.GET("/analytics/popular-topics", h.PopularTopics)
			protected.GET("/analytics/conversations/:id/stats", h.ConversationStats)
			protected.POST("/system/clear-cache", h.ClearCache)
		}
	}
	return r
}
