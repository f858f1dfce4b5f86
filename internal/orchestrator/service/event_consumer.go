package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studio-booking/internal/bus"
	"studio-booking/internal/orchestrator/dao"
	"studio-booking/internal/orchestrator/domain"
	"studio-booking/internal/orchestrator/repository"
)

// EventConsumer drives the PENDING -> READY / CANCELLED transition by
// joining the two independent async replies AccessCodeIssued and
// QuotaReserved. The database row is the join buffer: each reply is
// written onto the booking and the readiness predicate is re-checked,
// rather than held in any in-memory promise.
type EventConsumer struct {
	db          *gorm.DB
	bookingRepo repository.BookingRepository
	dedupRepo   repository.ProcessedMessageRepository
	publisher   bus.Publisher
}

// NewEventConsumer builds an EventConsumer.
func NewEventConsumer(
	db *gorm.DB,
	bookingRepo repository.BookingRepository,
	dedupRepo repository.ProcessedMessageRepository,
	publisher bus.Publisher,
) *EventConsumer {
	return &EventConsumer{db: db, bookingRepo: bookingRepo, dedupRepo: dedupRepo, publisher: publisher}
}

// Handle is the bus.Handler entry point. It runs the dedup check, booking
// lookup, and event dispatch inside one transaction per message.
func (c *EventConsumer) Handle(ctx context.Context, env bus.RawEnvelope) {
	if !c.relevant(env.Type) {
		return
	}

	messageID := env.MessageID
	if messageID == "" {
		messageID = fmt.Sprintf("%s:%s", env.Type, bookingIDFromPayload(env.Payload))
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		dedup := c.dedupRepo.WithTx(tx)
		repo := c.bookingRepo.WithTx(tx)

		// Step 1: drop if already processed.
		already, err := dedup.IsProcessed(messageID)
		if err != nil {
			return err
		}
		if already {
			return nil
		}

		// Step 2: resolve the booking; mark processed and drop if absent.
		// A reference to a nonexistent booking is a poison message: there
		// is nothing to retry, so it is acknowledged and discarded.
		bookingID := bookingIDFromPayload(env.Payload)
		booking, err := repo.FindByIDForUpdate(bookingID)
		if err != nil {
			log.Warn().Str("message_id", messageID).Uint("booking_id", bookingID).
				Msg("event references unknown booking, dropping")
			return dedup.MarkProcessed(messageID)
		}

		if booking.Status != domain.BookingStatusPending {
			// Terminal or already-transitioned booking: nothing left to
			// merge, but the message must still be marked processed so
			// redeliveries don't loop forever.
			return dedup.MarkProcessed(messageID)
		}

		if err := c.dispatch(ctx, tx, repo, booking, env); err != nil {
			return err
		}

		return dedup.MarkProcessed(messageID)
	})
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Str("event_type", env.Type).
			Msg("failed to process event")
	}
}

// dispatch applies one event's effect onto booking and re-checks the
// readiness predicate.
func (c *EventConsumer) dispatch(ctx context.Context, tx *gorm.DB, repo repository.BookingRepository, booking *dao.Booking, env bus.RawEnvelope) error {
	switch env.Type {
	case bus.EventAccessCodeIssued:
		var p bus.AccessCodeIssuedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode AccessCodeIssued: %w", err)
		}
		booking.Code = p.Code

	case bus.EventQuotaReserved:
		var p bus.QuotaReservedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode QuotaReserved: %w", err)
		}
		booking.QuotaReservationID = p.ReservationID

	case bus.EventAccessIssueFailed, bus.EventQuotaDenied:
		booking.Status = domain.BookingStatusCancelled
		if err := repo.Update(booking); err != nil {
			return err
		}
		return c.publisher.Publish(ctx, bus.EventBookingCancelled, bus.BookingCancelledPayload{
			BookingID: booking.ID,
			Reason:    env.Type,
		})

	default:
		return nil
	}

	becameReady := booking.IsPending() && booking.IsReadyForJoin()
	if becameReady {
		booking.Status = domain.BookingStatusReady
	}
	if err := repo.Update(booking); err != nil {
		return err
	}
	if becameReady {
		return c.publisher.Publish(ctx, bus.EventBookingReady, bus.BookingReadyPayload{BookingID: booking.ID})
	}
	return nil
}

// relevant reports whether the Orchestrator's consumer needs to look at
// this event type at all; every other published type is ignored outright,
// matching the "central codec dispatches on type; unknown types are
// ignored" design note.
func (c *EventConsumer) relevant(eventType string) bool {
	switch eventType {
	case bus.EventAccessCodeIssued, bus.EventQuotaReserved, bus.EventAccessIssueFailed, bus.EventQuotaDenied:
		return true
	default:
		return false
	}
}

// bookingIDFromPayload extracts the common bookingId field shared by every
// event type this consumer handles, without committing to one payload
// struct before dispatch.
func bookingIDFromPayload(raw json.RawMessage) uint {
	var probe struct {
		BookingID uint `json:"bookingId"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.BookingID
}
