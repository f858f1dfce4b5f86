package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"studio-booking/internal/access/dao"
	"studio-booking/internal/access/repository"
	"studio-booking/internal/bus"
)

// AccessService implements the Access Provisioner: it reacts to
// BookingCreated by issuing a 6-digit code bound to the booking's
// validity window, subject to a configurable fault-injection rate, and
// answers synchronous validation queries.
type AccessService struct {
	repo        repository.AccessRepository
	publisher   bus.Publisher
	failureRate float64
}

// NewAccessService builds an AccessService. failureRate is the probability
// (0..1) that provisioning is simulated to fail; default is 0.1.
func NewAccessService(repo repository.AccessRepository, publisher bus.Publisher, failureRate float64) *AccessService {
	return &AccessService{repo: repo, publisher: publisher, failureRate: failureRate}
}

// HandleBookingCreated is the bus.Handler for BookingCreated events.
func (s *AccessService) HandleBookingCreated(ctx context.Context, env bus.RawEnvelope) {
	if env.Type != bus.EventBookingCreated {
		return
	}

	var p bus.BookingCreatedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		log.Error().Err(err).Msg("failed to decode BookingCreated")
		return
	}

	start, err := time.Parse(time.RFC3339, p.Start)
	if err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("unparseable start timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, p.End)
	if err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("unparseable end timestamp")
		return
	}

	if rand.Float64() < s.failureRate {
		log.Info().Uint("booking_id", p.BookingID).Msg("simulated access-provisioning failure")
		if err := s.publisher.Publish(ctx, bus.EventAccessIssueFailed, bus.AccessIssueFailedPayload{
			BookingID: p.BookingID,
			Reason:    "hardware-unavailable",
		}); err != nil {
			log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to publish AccessIssueFailed")
		}
		return
	}

	code := generateCode()
	record := &dao.AccessCode{
		BookingID: p.BookingID,
		Code:      code,
		ValidFrom: start,
		ValidTo:   end,
		Status:    dao.StatusActive,
	}
	if err := s.repo.Create(record); err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to persist access code")
		return
	}

	if err := s.publisher.Publish(ctx, bus.EventAccessCodeIssued, bus.AccessCodeIssuedPayload{
		BookingID: p.BookingID,
		Code:      code,
	}); err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to publish AccessCodeIssued")
	}
}

// Validate answers whether code is currently valid for bookingID. Read-only
// and idempotent: calling it repeatedly has no side effects.
func (s *AccessService) Validate(bookingID uint, code string) (bool, error) {
	record, err := s.repo.FindByBookingID(bookingID)
	if err != nil {
		return false, nil
	}
	if record.Code != code {
		return false, nil
	}
	return record.IsValidAt(time.Now().UTC()), nil
}

// generateCode returns a uniformly random 6-digit decimal string.
func generateCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
