package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/http/response"
)

type AnalyticsHandler struct {
	backend Backend
}

func NewAnalyticsHandler(backend Backend) *AnalyticsHandler {
	return &AnalyticsHandler{backend: backend}
}

// GET /analytics/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	response.RespondOK(c, h.backend.Overview())
}

// GET /analytics/popular-topics?days=7
func (h *AnalyticsHandler) PopularTopics(c *gin.Context) {
	days := 7
	if v := strings.TrimSpace(c.Query("days")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	response.RespondOK(c, h.backend.PopularTopics(days))
}

// GET /analytics/conversations/:id/stats
func (h *AnalyticsHandler) ConversationStats(c *gin.Context) {
	stats, err := h.backend.ConversationStats(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// POST /system/clear-cache
func (h *AnalyticsHandler) ClearCache(c *gin.Context) {
	h.backend.ClearCache()
	response.RespondOK(c, gin.H{"message": "Cache cleared"})
}
