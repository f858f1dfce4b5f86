package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-booking/internal/quota/service"
)

// QuotaController adapts QuotaService to gin's HTTP surface.
type QuotaController struct {
	service *service.QuotaService
}

// NewQuotaController builds a QuotaController.
func NewQuotaController(svc *service.QuotaService) *QuotaController {
	return &QuotaController{service: svc}
}

// Commit handles POST /v1/quotas/commit?reservationId=.
func (ctl *QuotaController) Commit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("reservationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	ok, err := ctl.service.Commit(uint(id))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

// Release handles POST /v1/quotas/release?reservationId=.
func (ctl *QuotaController) Release(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("reservationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	ok, err := ctl.service.Release(uint(id))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

// HealthCheck handles GET /health.
func (ctl *QuotaController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "quota-accountant"})
}
