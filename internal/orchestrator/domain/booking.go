package domain

import "time"

// Booking status constants. These define the booking's position in the
// state graph driven jointly by synchronous commands and asynchronous
// event replies.
const (
	// BookingStatusPending - created, waiting on an access code and a
	// quota reservation to arrive from the bus.
	BookingStatusPending = "PENDING"

	// BookingStatusReady - both AccessCodeIssued and QuotaReserved have
	// merged onto the row; waiting for check-in.
	BookingStatusReady = "READY"

	// BookingStatusInUse - checked in with a valid code.
	BookingStatusInUse = "IN_USE"

	// BookingStatusFinished - checked out; terminal.
	BookingStatusFinished = "FINISHED"

	// BookingStatusCancelled - AccessIssueFailed or QuotaDenied arrived;
	// terminal.
	BookingStatusCancelled = "CANCELLED"
)

// BookingDTO is the external representation of a booking, with Start/End
// rendered in the service's configured local time zone.
type BookingDTO struct {
	ID                  uint      `json:"id"`
	UserID              int64     `json:"user_id"`
	StudioID            int64     `json:"studio_id"`
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	Status              string    `json:"status"`
	Code                string    `json:"code,omitempty"`
	QuotaReservationID  string    `json:"quota_reservation_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateBookingRequest is the JSON body for POST /v1/bookings. A Start or End
// that carries no time-zone annotation is interpreted in the service's
// configured local time zone; an explicit offset is honored. Both are
// converted to UTC for persistence.
type CreateBookingRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	StudioID int64  `json:"studio_id" binding:"required"`
	Start    string `json:"start" binding:"required"`
	End      string `json:"end" binding:"required"`
}
