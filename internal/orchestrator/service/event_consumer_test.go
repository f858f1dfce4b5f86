package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking/internal/bus"
	"studio-booking/internal/bus/bustest"
	"studio-booking/internal/orchestrator/dao"
	"studio-booking/internal/orchestrator/domain"
	"studio-booking/internal/orchestrator/repository"
)

func setupOrchestratorDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&dao.Booking{}, &dao.ProcessedMessage{}))
	return db
}

func envelopeFor(t *testing.T, eventType, messageID string, payload any) bus.RawEnvelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bus.RawEnvelope{Type: eventType, Payload: raw, MessageID: messageID}
}

// TestEventConsumer_OutOfOrderMergeBothOrders asserts that AccessCodeIssued
// and QuotaReserved commute: regardless of arrival order, both produce
// READY with the same fields and exactly one BookingReady publish.
func TestEventConsumer_OutOfOrderMergeBothOrders(t *testing.T) {
	for _, order := range []string{"access-then-quota", "quota-then-access"} {
		t.Run(order, func(t *testing.T) {
			db := setupOrchestratorDB(t)
			bookingRepo := repository.NewBookingRepository(db)
			dedupRepo := repository.NewProcessedMessageRepository(db)
			publisher := bustest.NewFakePublisher()
			consumer := NewEventConsumer(db, bookingRepo, dedupRepo, publisher)

			booking := &dao.Booking{UserID: 1, StudioID: 1, Status: domain.BookingStatusPending}
			require.NoError(t, bookingRepo.Create(booking))

			accessEnv := envelopeFor(t, bus.EventAccessCodeIssued, "m-access", bus.AccessCodeIssuedPayload{BookingID: booking.ID, Code: "123456"})
			quotaEnv := envelopeFor(t, bus.EventQuotaReserved, "m-quota", bus.QuotaReservedPayload{BookingID: booking.ID, ReservationID: "42"})

			if order == "access-then-quota" {
				consumer.Handle(context.Background(), accessEnv)
				consumer.Handle(context.Background(), quotaEnv)
			} else {
				consumer.Handle(context.Background(), quotaEnv)
				consumer.Handle(context.Background(), accessEnv)
			}

			got, err := bookingRepo.FindByID(booking.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStatusReady, got.Status)
			assert.Equal(t, "123456", got.Code)
			assert.Equal(t, "42", got.QuotaReservationID)
			assert.Equal(t, 1, publisher.CountOf(bus.EventBookingReady), "BookingReady must be published exactly once")
		})
	}
}

// TestEventConsumer_DuplicateDeliveryIsIdempotent asserts that redelivering
// the same message (same MessageID) applies its effect only once.
func TestEventConsumer_DuplicateDeliveryIsIdempotent(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	dedupRepo := repository.NewProcessedMessageRepository(db)
	publisher := bustest.NewFakePublisher()
	consumer := NewEventConsumer(db, bookingRepo, dedupRepo, publisher)

	booking := &dao.Booking{UserID: 1, StudioID: 1, Status: domain.BookingStatusPending}
	require.NoError(t, bookingRepo.Create(booking))

	env := envelopeFor(t, bus.EventAccessCodeIssued, "dup-1", bus.AccessCodeIssuedPayload{BookingID: booking.ID, Code: "111111"})

	consumer.Handle(context.Background(), env)
	consumer.Handle(context.Background(), env)

	got, err := bookingRepo.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "111111", got.Code)

	var count int64
	require.NoError(t, db.Model(&dao.ProcessedMessage{}).Where("message_id = ?", "dup-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestEventConsumer_AccessFailureCancelsBooking exercises the access-failure cancellation path.
func TestEventConsumer_AccessFailureCancelsBooking(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	dedupRepo := repository.NewProcessedMessageRepository(db)
	publisher := bustest.NewFakePublisher()
	consumer := NewEventConsumer(db, bookingRepo, dedupRepo, publisher)

	booking := &dao.Booking{UserID: 1, StudioID: 1, Status: domain.BookingStatusPending}
	require.NoError(t, bookingRepo.Create(booking))

	env := envelopeFor(t, bus.EventAccessIssueFailed, "fail-1", bus.AccessIssueFailedPayload{BookingID: booking.ID, Reason: "hardware-unavailable"})
	consumer.Handle(context.Background(), env)

	got, err := bookingRepo.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.Equal(t, 1, publisher.CountOf(bus.EventBookingCancelled))
}

// TestEventConsumer_UnknownBookingIsDroppedAndMarkedProcessed covers the
// poison-message handling described in for an event that
// references a booking that does not exist.
func TestEventConsumer_UnknownBookingIsDroppedAndMarkedProcessed(t *testing.T) {
	db := setupOrchestratorDB(t)
	bookingRepo := repository.NewBookingRepository(db)
	dedupRepo := repository.NewProcessedMessageRepository(db)
	publisher := bustest.NewFakePublisher()
	consumer := NewEventConsumer(db, bookingRepo, dedupRepo, publisher)

	env := envelopeFor(t, bus.EventAccessCodeIssued, "ghost-1", bus.AccessCodeIssuedPayload{BookingID: 999, Code: "123456"})
	consumer.Handle(context.Background(), env)

	processed, err := dedupRepo.IsProcessed("ghost-1")
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, 0, publisher.CountOf(bus.EventBookingReady))
}
