package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-booking/internal/orchestrator/domain"
	"studio-booking/internal/orchestrator/service"
)

// BookingController adapts BookingService to gin's HTTP surface.
type BookingController struct {
	service service.BookingService
}

// NewBookingController builds a BookingController.
func NewBookingController(svc service.BookingService) *BookingController {
	return &BookingController{service: svc}
}

// Create handles POST /v1/bookings.
func (ctl *BookingController) Create(c *gin.Context) {
	var req domain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(domain.ErrInvalidInterval)
		return
	}

	booking, err := ctl.service.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// Get handles GET /v1/bookings/:id.
func (ctl *BookingController) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(domain.ErrBookingNotFound)
		return
	}

	booking, err := ctl.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CheckIn handles POST /v1/bookings/:id/checkin?code=.
func (ctl *BookingController) CheckIn(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(domain.ErrBookingNotFound)
		return
	}

	code := c.Query("code")
	booking, err := ctl.service.CheckIn(c.Request.Context(), id, code)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": booking.Status})
}

// CheckOut handles POST /v1/bookings/:id/checkout.
func (ctl *BookingController) CheckOut(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(domain.ErrBookingNotFound)
		return
	}

	booking, err := ctl.service.CheckOut(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": booking.Status})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
