package domain

import "fmt"

// AppError is a structured application error with a code and message, mapped
// to an HTTP status by the error middleware.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates an AppError.
func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Predefined errors for the booking domain.
var (
	ErrInvalidInterval = &AppError{
		Code:    "INVALID_INTERVAL",
		Message: "start must be before end",
	}
	ErrBookingNotFound = &AppError{
		Code:    "BOOKING_NOT_FOUND",
		Message: "booking not found",
	}
	ErrWrongStatus = &AppError{
		Code:    "WRONG_STATUS",
		Message: "booking is not in the required status for this operation",
	}
	ErrInvalidCode = &AppError{
		Code:    "INVALID_CODE",
		Message: "access code is invalid",
	}
)

// Wrap annotates err with a message while always preserving the original
// error via %w.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
