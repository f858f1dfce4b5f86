package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-booking/internal/bus"
	"studio-booking/internal/bus/bustest"
	"studio-booking/internal/orchestrator/dao"
	"studio-booking/internal/orchestrator/domain"
	"studio-booking/internal/orchestrator/repository"
)

type fakeAccessClient struct {
	valid bool
	err   error
}

func (f *fakeAccessClient) ValidateCode(ctx context.Context, bookingID uint, code string) (bool, error) {
	return f.valid, f.err
}

type fakeQuotaClient struct {
	ok  bool
	err error
}

func (f *fakeQuotaClient) Commit(ctx context.Context, reservationID string) (bool, error) {
	return f.ok, f.err
}

func TestBookingService_CreateRejectsInvalidInterval(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	loc := time.UTC
	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{}, &fakeQuotaClient{}, loc)

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.Create(context.Background(), domain.CreateBookingRequest{
		UserID: 1, StudioID: 7, Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestBookingService_CreatePersistsPendingAndPublishes(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	loc := time.UTC
	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{}, &fakeQuotaClient{}, loc)

	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	dto, err := svc.Create(context.Background(), domain.CreateBookingRequest{
		UserID: 1, StudioID: 7, Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, dto.Status)
	assert.Equal(t, 1, publisher.CountOf(bus.EventBookingCreated))
}

func TestBookingService_CheckInRejectsWrongStatus(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	booking := &dao.Booking{UserID: 1, StudioID: 1, Status: domain.BookingStatusPending}
	require.NoError(t, bookingRepo.Create(booking))

	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{valid: true}, &fakeQuotaClient{}, time.UTC)
	_, err := svc.CheckIn(context.Background(), booking.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrWrongStatus)
}

// TestBookingService_CheckInWrongCode asserts that a rejected code yields
// ErrInvalidCode and leaves a READY booking unchanged.
func TestBookingService_CheckInWrongCode(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	booking := &dao.Booking{UserID: 1, StudioID: 1, Status: domain.BookingStatusReady, Code: "654321", QuotaReservationID: "1"}
	require.NoError(t, bookingRepo.Create(booking))

	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{valid: false}, &fakeQuotaClient{}, time.UTC)
	_, err := svc.CheckIn(context.Background(), booking.ID, "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	got, err := bookingRepo.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusReady, got.Status, "status must be unchanged after a failed check-in")
}

func TestBookingService_CheckInThenCheckOutHappyPath(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	booking := &dao.Booking{UserID: 1, StudioID: 7, Status: domain.BookingStatusReady, Code: "123456", QuotaReservationID: "42"}
	require.NoError(t, bookingRepo.Create(booking))

	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{valid: true}, &fakeQuotaClient{ok: true}, time.UTC)

	dto, err := svc.CheckIn(context.Background(), booking.ID, "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInUse, dto.Status)
	assert.Equal(t, 1, publisher.CountOf(bus.EventBookingCheckedIn))

	dto, err = svc.CheckOut(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusFinished, dto.Status)
	assert.Equal(t, 1, publisher.CountOf(bus.EventBookingCheckedOut))
}

// TestBookingService_CheckOutToleratesQuotaCommitFailure covers the
// best-effort commit rule in: a failing Quota commit call
// must never block check-out.
func TestBookingService_CheckOutToleratesQuotaCommitFailure(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	publisher := bustest.NewFakePublisher()
	booking := &dao.Booking{UserID: 1, StudioID: 7, Status: domain.BookingStatusInUse, Code: "123456", QuotaReservationID: "42"}
	require.NoError(t, bookingRepo.Create(booking))

	failingQuota := &fakeQuotaClient{ok: false, err: assert.AnError}
	svc := NewBookingService(db, bookingRepo, publisher, &fakeAccessClient{}, failingQuota, time.UTC)

	dto, err := svc.CheckOut(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusFinished, dto.Status)
}
