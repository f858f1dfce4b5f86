package routes

import (
	"github.com/gin-gonic/gin"

	"studio-booking/internal/quota/controller"
)

// SetupRoutes registers the Quota Accountant's HTTP surface.
func SetupRoutes(router *gin.Engine, quota *controller.QuotaController) {
	router.GET("/health", quota.HealthCheck)

	v1 := router.Group("/v1")
	{
		quotas := v1.Group("/quotas")
		quotas.POST("/commit", quota.Commit)
		quotas.POST("/release", quota.Release)
	}
}
