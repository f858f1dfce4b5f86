package routes

import (
	"github.com/gin-gonic/gin"

	"studio-booking/internal/orchestrator/controller"
	"studio-booking/internal/orchestrator/middleware"
)

// SetupRoutes registers the Orchestrator's HTTP surface.
func SetupRoutes(router *gin.Engine, health *controller.HealthController, booking *controller.BookingController) {
	router.Use(middleware.ErrorHandler())

	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/v1")
	{
		bookings := v1.Group("/bookings")
		bookings.POST("", booking.Create)
		bookings.GET("/:id", booking.Get)
		bookings.POST("/:id/checkin", booking.CheckIn)
		bookings.POST("/:id/checkout", booking.CheckOut)
	}
}
