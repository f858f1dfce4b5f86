package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking/internal/access/dao"
	"studio-booking/internal/access/repository"
	"studio-booking/internal/bus"
	"studio-booking/internal/bus/bustest"
)

func setupAccessDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&dao.AccessCode{}))
	return db
}

func TestAccessService_IssuesCodeOnSuccess(t *testing.T) {
	db := setupAccessDB(t)
	repo := repository.NewAccessRepository(db)
	publisher := bustest.NewFakePublisher()
	// failureRate=0 forces the success path deterministically.
	svc := NewAccessService(repo, publisher, 0)

	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	payload := bus.BookingCreatedPayload{BookingID: 1, UserID: 1, StudioID: 7, Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339)}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	svc.HandleBookingCreated(context.Background(), bus.RawEnvelope{Type: bus.EventBookingCreated, Payload: raw})

	assert.Equal(t, 1, publisher.CountOf(bus.EventAccessCodeIssued))
	assert.Equal(t, 0, publisher.CountOf(bus.EventAccessIssueFailed))

	record, err := repo.FindByBookingID(1)
	require.NoError(t, err)
	assert.Len(t, record.Code, 6)
}

func TestAccessService_FailsOnInjectedFault(t *testing.T) {
	db := setupAccessDB(t)
	repo := repository.NewAccessRepository(db)
	publisher := bustest.NewFakePublisher()
	// failureRate=1 forces the fault-injection path every time.
	svc := NewAccessService(repo, publisher, 1)

	start := time.Now().UTC()
	end := start.Add(time.Hour)
	payload := bus.BookingCreatedPayload{BookingID: 2, UserID: 1, StudioID: 7, Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339)}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	svc.HandleBookingCreated(context.Background(), bus.RawEnvelope{Type: bus.EventBookingCreated, Payload: raw})

	assert.Equal(t, 0, publisher.CountOf(bus.EventAccessCodeIssued))
	assert.Equal(t, 1, publisher.CountOf(bus.EventAccessIssueFailed))

	_, err = repo.FindByBookingID(2)
	assert.Error(t, err, "no AccessCode row should exist after a simulated failure")
}

// TestAccessService_Validate covers the four truth-table rows of
// validation: valid iff the code matches AND now is within the window.
func TestAccessService_Validate(t *testing.T) {
	db := setupAccessDB(t)
	repo := repository.NewAccessRepository(db)
	svc := NewAccessService(repo, bustest.NewFakePublisher(), 0)

	now := time.Now().UTC()
	require.NoError(t, repo.Create(&dao.AccessCode{
		BookingID: 10,
		Code:      "123456",
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
		Status:    dao.StatusActive,
	}))

	valid, err := svc.Validate(10, "123456")
	require.NoError(t, err)
	assert.True(t, valid, "matching code within window must validate")

	valid, err = svc.Validate(10, "000000")
	require.NoError(t, err)
	assert.False(t, valid, "mismatched code must not validate")

	valid, err = svc.Validate(404, "123456")
	require.NoError(t, err)
	assert.False(t, valid, "unknown booking must not validate")

	require.NoError(t, repo.Create(&dao.AccessCode{
		BookingID: 11,
		Code:      "654321",
		ValidFrom: now.Add(-2 * time.Hour),
		ValidTo:   now.Add(-time.Hour),
		Status:    dao.StatusActive,
	}))
	valid, err = svc.Validate(11, "654321")
	require.NoError(t, err)
	assert.False(t, valid, "matching code outside window must not validate")

	valid, err = svc.Validate(11, "000000")
	require.NoError(t, err)
	assert.False(t, valid, "mismatched code outside window must not validate")
}
