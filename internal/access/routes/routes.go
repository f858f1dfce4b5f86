package routes

import (
	"github.com/gin-gonic/gin"

	"studio-booking/internal/access/controller"
)

// SetupRoutes registers the Access Provisioner's HTTP surface.
func SetupRoutes(router *gin.Engine, access *controller.AccessController) {
	router.GET("/health", access.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/access/validate", access.Validate)
	}
}
