package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-booking/internal/access/service"
)

// AccessController adapts AccessService to gin's HTTP surface.
type AccessController struct {
	service *service.AccessService
}

// NewAccessController builds an AccessController.
func NewAccessController(svc *service.AccessService) *AccessController {
	return &AccessController{service: svc}
}

// Validate handles POST /v1/access/validate?bookingId=&code=.
func (ctl *AccessController) Validate(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Query("bookingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	code := c.Query("code")

	valid, err := ctl.service.Validate(uint(bookingID), code)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// HealthCheck handles GET /health.
func (ctl *AccessController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "access-provisioner"})
}
