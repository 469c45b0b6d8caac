package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/http/response"
)

type HealthHandler struct {
	backend Backend
}

func NewHealthHandler(backend Backend) *HealthHandler { return &HealthHandler{backend: backend} }

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, h.backend.Health())
}
