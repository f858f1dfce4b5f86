package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"studio-booking/internal/bus"
	"studio-booking/internal/quota/dao"
	"studio-booking/internal/quota/repository"
)

// Locker guards the read-sum-then-insert sequence for one (user, week).
// repository.AdvisoryLock is the production implementation; tests may
// substitute a no-op or in-memory lock.
type Locker interface {
	Acquire(ctx context.Context, userID int64, weekStart time.Time) (release func(), err error)
}

// QuotaService implements the Quota Accountant: it holds or denies a
// weekly minute budget on BookingCreated, and exposes idempotent
// commit/release endpoints.
type QuotaService struct {
	repo      repository.QuotaRepository
	lock      Locker
	publisher bus.Publisher
	capMin    int
}

// NewQuotaService builds a QuotaService. capMin is QUOTA_MAX_MIN_PER_WEEK,
// default 180.
func NewQuotaService(repo repository.QuotaRepository, lock Locker, publisher bus.Publisher, capMin int) *QuotaService {
	return &QuotaService{repo: repo, lock: lock, publisher: publisher, capMin: capMin}
}

// HandleBookingCreated is the bus.Handler for BookingCreated events.
func (s *QuotaService) HandleBookingCreated(ctx context.Context, env bus.RawEnvelope) {
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

	durationMin := int(end.Sub(start).Seconds()) / 60
	weekStart := weekStartUTC(start)

	release, err := s.lock.Acquire(ctx, p.UserID, weekStart)
	if err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to acquire quota advisory lock")
		return
	}
	defer release()

	var reservation *dao.QuotaReservation
	txDB := s.repo.DB().Begin()
	held, err := s.repo.SumHeldMinutes(txDB, p.UserID, weekStart)
	if err != nil {
		txDB.Rollback()
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to sum held minutes")
		return
	}

	if held+durationMin > s.capMin {
		reservation = &dao.QuotaReservation{
			UserID:          p.UserID,
			WeekStart:       weekStart,
			MinutesReserved: 0,
			Status:          dao.StatusDenied,
			BookingID:       p.BookingID,
		}
		if err := s.repo.Create(txDB, reservation); err != nil {
			txDB.Rollback()
			log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to persist denied reservation")
			return
		}
		if err := txDB.Commit().Error; err != nil {
			log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to commit denied reservation")
			return
		}

		if err := s.publisher.Publish(ctx, bus.EventQuotaDenied, bus.QuotaDeniedPayload{
			BookingID: p.BookingID,
			Reason:    "weekly-limit",
		}); err != nil {
			log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to publish QuotaDenied")
		}
		return
	}

	reservation = &dao.QuotaReservation{
		UserID:          p.UserID,
		WeekStart:       weekStart,
		MinutesReserved: durationMin,
		Status:          dao.StatusHeld,
		BookingID:       p.BookingID,
	}
	if err := s.repo.Create(txDB, reservation); err != nil {
		txDB.Rollback()
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to persist held reservation")
		return
	}
	if err := txDB.Commit().Error; err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to commit held reservation")
		return
	}

	if err := s.publisher.Publish(ctx, bus.EventQuotaReserved, bus.QuotaReservedPayload{
		BookingID:     p.BookingID,
		ReservationID: strconv.FormatUint(uint64(reservation.ID), 10),
	}); err != nil {
		log.Error().Err(err).Uint("booking_id", p.BookingID).Msg("failed to publish QuotaReserved")
	}
}

// Commit sets the named reservation to COMMITTED. Idempotent: committing an
// already-committed reservation succeeds.
func (s *QuotaService) Commit(reservationID uint) (bool, error) {
	return s.repo.UpdateStatus(reservationID, dao.StatusCommitted)
}

// Release sets the named reservation to RELEASED. Idempotent.
func (s *QuotaService) Release(reservationID uint) (bool, error) {
	return s.repo.UpdateStatus(reservationID, dao.StatusReleased)
}

// weekStartUTC returns Monday 00:00 UTC of the week containing t. The
// quota week boundary is always UTC, regardless of LOCAL_TZ.
func weekStartUTC(t time.Time) time.Time {
	t = t.UTC()
	// time.Weekday: Sunday=0 .. Saturday=6. ISO week starts Monday, so
	// shift Sunday to 7 before computing the offset back to Monday.
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	daysSinceMonday := weekday - 1
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
