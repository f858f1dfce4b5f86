package repository

import (
	"gorm.io/gorm"

	"studio-booking/internal/orchestrator/dao"
)

// BookingRepository defines data access operations for bookings. Updates of
// an existing booking go through a transaction acquired via WithTx, since
// the booking row is the shared lock between commands and the event
// consumer; Create of a new row runs on the repository's own handle.
type BookingRepository interface {
	Create(booking *dao.Booking) error
	FindByID(id uint) (*dao.Booking, error)
	// FindByIDForUpdate locks the row for the duration of the caller's
	// transaction, serializing concurrent commands and event handlers
	// against the same booking.
	FindByIDForUpdate(id uint) (*dao.Booking, error)
	Update(booking *dao.Booking) error
	WithTx(tx *gorm.DB) BookingRepository
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a BookingRepository bound to db.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) WithTx(tx *gorm.DB) BookingRepository {
	return &bookingRepository{db: tx}
}

func (r *bookingRepository) Create(booking *dao.Booking) error {
	return r.db.Create(booking).Error
}

func (r *bookingRepository) FindByID(id uint) (*dao.Booking, error) {
	var booking dao.Booking
	if err := r.db.Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(id uint) (*dao.Booking, error) {
	var booking dao.Booking
	q := r.db
	if r.db.Dialector.Name() == "mysql" {
		// SQLite (used in tests) rejects the FOR UPDATE clause outright;
		// MySQL is the only dialect this row lock needs to matter for,
		// since it's the only one ever run with concurrent writers.
		q = q.Clauses(lockingClause())
	}
	if err := q.Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Update(booking *dao.Booking) error {
	return r.db.Save(booking).Error
}
