package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking/internal/bus"
	"studio-booking/internal/bus/bustest"
	"studio-booking/internal/quota/dao"
	"studio-booking/internal/quota/repository"
)

// inMemoryLock is an in-process stand-in for repository.AdvisoryLock,
// sufficient to test the serialization behavior QuotaService depends on
// without a live Redis instance.
type inMemoryLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newInMemoryLock() *inMemoryLock {
	return &inMemoryLock{locks: make(map[string]*sync.Mutex)}
}

func (l *inMemoryLock) Acquire(ctx context.Context, userID int64, weekStart time.Time) (func(), error) {
	key := weekStart.Format(time.RFC3339)
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

func setupQuotaDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&dao.QuotaReservation{}))
	return db
}

func bookingCreatedEnvelope(t *testing.T, bookingID uint, userID int64, start, end time.Time) bus.RawEnvelope {
	t.Helper()
	payload := bus.BookingCreatedPayload{
		BookingID: bookingID,
		UserID:    userID,
		StudioID:  1,
		Start:     start.Format(time.RFC3339),
		End:       end.Format(time.RFC3339),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bus.RawEnvelope{Type: bus.EventBookingCreated, Payload: raw, MessageID: "m1"}
}

func TestQuotaService_HoldsWithinCap(t *testing.T) {
	db := setupQuotaDB(t)
	repo := repository.NewQuotaRepository(db)
	publisher := bustest.NewFakePublisher()
	svc := NewQuotaService(repo, newInMemoryLock(), publisher, 180)

	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(60 * time.Minute)
	env := bookingCreatedEnvelope(t, 1, 1, start, end)

	svc.HandleBookingCreated(context.Background(), env)

	assert.Equal(t, 1, publisher.CountOf(bus.EventQuotaReserved))
	assert.Equal(t, 0, publisher.CountOf(bus.EventQuotaDenied))

	var reservations []dao.QuotaReservation
	require.NoError(t, db.Find(&reservations).Error)
	require.Len(t, reservations, 1)
	assert.Equal(t, dao.StatusHeld, reservations[0].Status)
	assert.Equal(t, 60, reservations[0].MinutesReserved)
}

// TestQuotaService_DeniesOverCap: a pre-existing HELD row of 170 minutes
// plus a new 20-minute booking exceeds the 180-minute cap and must be
// denied without disturbing the existing hold.
func TestQuotaService_DeniesOverCap(t *testing.T) {
	db := setupQuotaDB(t)
	weekStart := weekStartUTC(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(t, db.Create(&dao.QuotaReservation{
		UserID:          2,
		WeekStart:       weekStart,
		MinutesReserved: 170,
		Status:          dao.StatusHeld,
		BookingID:       99,
	}).Error)

	repo := repository.NewQuotaRepository(db)
	publisher := bustest.NewFakePublisher()
	svc := NewQuotaService(repo, newInMemoryLock(), publisher, 180)

	start := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	env := bookingCreatedEnvelope(t, 2, 2, start, end)

	svc.HandleBookingCreated(context.Background(), env)

	assert.Equal(t, 1, publisher.CountOf(bus.EventQuotaDenied))
	assert.Equal(t, 0, publisher.CountOf(bus.EventQuotaReserved))

	var heldSum int
	row := db.Model(&dao.QuotaReservation{}).
		Select("COALESCE(SUM(minutes_reserved), 0)").
		Where("user_id = ? AND week_start = ? AND status IN (?)", 2, weekStart, []string{dao.StatusHeld, dao.StatusCommitted}).
		Row()
	require.NoError(t, row.Scan(&heldSum))
	assert.Equal(t, 170, heldSum)
}

func TestQuotaService_CommitAndReleaseAreIdempotent(t *testing.T) {
	db := setupQuotaDB(t)
	reservation := &dao.QuotaReservation{UserID: 1, WeekStart: weekStartUTC(time.Now()), MinutesReserved: 30, Status: dao.StatusHeld, BookingID: 1}
	require.NoError(t, db.Create(reservation).Error)

	repo := repository.NewQuotaRepository(db)
	svc := NewQuotaService(repo, newInMemoryLock(), bustest.NewFakePublisher(), 180)

	ok, err := svc.Commit(reservation.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Committing again must still report ok=true (idempotent).
	ok, err = svc.Commit(reservation.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Releasing twice must report ok=true both times (idempotent).
	ok, err = svc.Release(reservation.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Release(reservation.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Release(9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWeekStartUTC_MondayBoundary(t *testing.T) {
	// Monday itself.
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, weekStartUTC(monday))

	// Sunday belongs to the week that started the preceding Monday.
	sunday := time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, weekStartUTC(sunday))
}
