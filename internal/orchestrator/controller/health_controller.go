package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController answers liveness probes.
type HealthController struct{}

// NewHealthController builds a HealthController.
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthCheck handles GET /health.
func (h *HealthController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "orchestrator"})
}
