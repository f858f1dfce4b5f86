package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studio-booking/internal/bus"
	"studio-booking/internal/orchestrator/clients"
	"studio-booking/internal/orchestrator/dao"
	"studio-booking/internal/orchestrator/domain"
	"studio-booking/internal/orchestrator/repository"
)

// BookingService implements the Orchestrator's synchronous command surface:
// Create, Get, CheckIn, CheckOut.
type BookingService interface {
	Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.BookingDTO, error)
	Get(ctx context.Context, id uint) (*domain.BookingDTO, error)
	CheckIn(ctx context.Context, id uint, code string) (*domain.BookingDTO, error)
	CheckOut(ctx context.Context, id uint) (*domain.BookingDTO, error)
}

type bookingService struct {
	db            *gorm.DB
	bookingRepo   repository.BookingRepository
	publisher     bus.Publisher
	accessClient  clients.AccessClient
	quotaClient   clients.QuotaClient
	loc           *time.Location
}

// NewBookingService wires the command surface. loc is the service's
// configured local time zone (LOCAL_TZ).
func NewBookingService(
	db *gorm.DB,
	bookingRepo repository.BookingRepository,
	publisher bus.Publisher,
	accessClient clients.AccessClient,
	quotaClient clients.QuotaClient,
	loc *time.Location,
) BookingService {
	return &bookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		accessClient: accessClient,
		quotaClient:  quotaClient,
		loc:          loc,
	}
}

// Create persists a PENDING booking and publishes BookingCreated. Naive
// Start/End (no zone suffix) are interpreted in the configured local zone,
// then converted to UTC for storage and for the outbound event.
func (s *bookingService) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.BookingDTO, error) {
	start, err := s.parseInLocalTZ(req.Start)
	if err != nil {
		return nil, domain.ErrInvalidInterval
	}
	end, err := s.parseInLocalTZ(req.End)
	if err != nil {
		return nil, domain.ErrInvalidInterval
	}
	if !start.Before(end) {
		return nil, domain.ErrInvalidInterval
	}

	booking := &dao.Booking{
		UserID:   req.UserID,
		StudioID: req.StudioID,
		Start:    start.UTC(),
		End:      end.UTC(),
		Status:   domain.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, domain.Wrap(err, "failed to persist booking")
	}

	if err := s.publisher.Publish(ctx, bus.EventBookingCreated, bus.BookingCreatedPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		StudioID:  booking.StudioID,
		Start:     booking.Start.Format(time.RFC3339),
		End:       booking.End.Format(time.RFC3339),
	}); err != nil {
		// Publishing is best-effort; the row already exists and will
		// simply never receive async replies if the bus is unreachable.
		// Log and return the booking as created.
		log.Error().Err(err).Uint("booking_id", booking.ID).Msg("failed to publish BookingCreated")
	}

	dto := booking.ToDTO(s.loc)
	return &dto, nil
}

// Get returns the booking, times rendered in the local time zone.
func (s *bookingService) Get(ctx context.Context, id uint) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.FindByID(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}
	dto := booking.ToDTO(s.loc)
	return &dto, nil
}

// CheckIn validates code against the Access Provisioner and, on success,
// transitions READY -> IN_USE.
func (s *bookingService) CheckIn(ctx context.Context, id uint, code string) (*domain.BookingDTO, error) {
	var result *dao.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookingRepo.WithTx(tx)
		booking, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return domain.ErrBookingNotFound
		}
		if booking.Status != domain.BookingStatusReady {
			return domain.ErrWrongStatus
		}

		valid, err := s.accessClient.ValidateCode(ctx, booking.ID, code)
		if err != nil {
			// A peer timeout or transport failure on validate surfaces
			// to the caller as an invalid code rather than a 5xx.
			return domain.ErrInvalidCode
		}
		if !valid {
			return domain.ErrInvalidCode
		}

		booking.Status = domain.BookingStatusInUse
		if err := repo.Update(booking); err != nil {
			return domain.Wrap(err, "failed to update booking")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, bus.EventBookingCheckedIn, bus.BookingCheckedInPayload{
		BookingID: result.ID,
	}); err != nil {
		log.Error().Err(err).Uint("booking_id", result.ID).Msg("failed to publish BookingCheckedIn")
	}

	dto := result.ToDTO(s.loc)
	return &dto, nil
}

// CheckOut commits the quota reservation (best-effort) and transitions
// IN_USE -> FINISHED.
func (s *bookingService) CheckOut(ctx context.Context, id uint) (*domain.BookingDTO, error) {
	var result *dao.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookingRepo.WithTx(tx)
		booking, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return domain.ErrBookingNotFound
		}
		if booking.Status != domain.BookingStatusInUse {
			return domain.ErrWrongStatus
		}

		if booking.QuotaReservationID != "" {
			if _, err := s.quotaClient.Commit(ctx, booking.QuotaReservationID); err != nil {
				// Best-effort: a commit failure never blocks check-out.
				log.Warn().Err(err).Uint("booking_id", booking.ID).
					Str("reservation_id", booking.QuotaReservationID).
					Msg("quota commit failed on checkout, proceeding anyway")
			}
		}

		booking.Status = domain.BookingStatusFinished
		if err := repo.Update(booking); err != nil {
			return domain.Wrap(err, "failed to update booking")
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, bus.EventBookingCheckedOut, bus.BookingCheckedOutPayload{
		BookingID: result.ID,
	}); err != nil {
		log.Error().Err(err).Uint("booking_id", result.ID).Msg("failed to publish BookingCheckedOut")
	}

	dto := result.ToDTO(s.loc)
	return &dto, nil
}

// parseInLocalTZ parses an RFC3339 timestamp. If it carries no zone offset,
// it is interpreted in s.loc; otherwise the explicit offset is honored.
func (s *bookingService) parseInLocalTZ(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	const naiveLayout = "2006-01-02T15:04:05"
	t, err := time.ParseInLocation(naiveLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, err)
	}
	return t, nil
}
