package repository

import (
	"gorm.io/gorm"

	"studio-booking/internal/access/dao"
)

// AccessRepository defines data access operations for access codes.
type AccessRepository interface {
	Create(code *dao.AccessCode) error
	FindByBookingID(bookingID uint) (*dao.AccessCode, error)
}

type accessRepository struct {
	db *gorm.DB
}

// NewAccessRepository creates an AccessRepository bound to db.
func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

func (r *accessRepository) Create(code *dao.AccessCode) error {
	return r.db.Create(code).Error
}

func (r *accessRepository) FindByBookingID(bookingID uint) (*dao.AccessCode, error) {
	var code dao.AccessCode
	if err := r.db.Where("booking_id = ?", bookingID).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}
