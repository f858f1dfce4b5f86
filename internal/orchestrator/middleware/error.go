package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studio-booking/internal/orchestrator/domain"
)

// ErrorHandler maps errors recorded via c.Error into standardized JSON
// responses, translating domain.AppError codes to HTTP status codes.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("method", c.Request.Method).Msg("request error")

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			c.JSON(mapErrorCodeToHTTPStatus(appErr.Code), gin.H{
				"error": gin.H{"code": appErr.Code, "message": appErr.Message},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	}
}

func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case "BOOKING_NOT_FOUND":
		return http.StatusNotFound
	case "WRONG_STATUS":
		return http.StatusConflict
	case "INVALID_CODE":
		return http.StatusUnauthorized
	case "INVALID_INTERVAL":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
