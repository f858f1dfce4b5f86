package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"studio-booking/internal/bus"
)

// NotificationService is a pure side-effect logger for terminal booking
// events, with no persistent state of its own.
type NotificationService struct{}

// NewNotificationService builds a NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Handle logs a structured line for every event type the sink cares about;
// everything else is ignored.
func (s *NotificationService) Handle(ctx context.Context, env bus.RawEnvelope) {
	switch env.Type {
	case bus.EventBookingReady:
		var p bus.BookingReadyPayload
		_ = json.Unmarshal(env.Payload, &p)
		log.Info().Uint("booking_id", p.BookingID).Str("event", env.Type).Msg("booking ready")

	case bus.EventBookingCancelled:
		var p bus.BookingCancelledPayload
		_ = json.Unmarshal(env.Payload, &p)
		log.Info().Uint("booking_id", p.BookingID).Str("event", env.Type).Str("reason", p.Reason).Msg("booking cancelled")

	case bus.EventBookingCheckedIn:
		var p bus.BookingCheckedInPayload
		_ = json.Unmarshal(env.Payload, &p)
		log.Info().Uint("booking_id", p.BookingID).Str("event", env.Type).Msg("booking checked in")

	case bus.EventBookingCheckedOut:
		var p bus.BookingCheckedOutPayload
		_ = json.Unmarshal(env.Payload, &p)
		log.Info().Uint("booking_id", p.BookingID).Str("event", env.Type).Msg("booking checked out")
	}
}
