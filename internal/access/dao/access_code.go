package dao

import "time"

// Access code status constants.
const (
	StatusActive  = "ACTIVE"
	StatusRevoked = "REVOKED"
	StatusExpired = "EXPIRED"
)

// AccessCode is the GORM model for a booking's check-in secret. Primary key
// is the booking id itself: exactly one code per booking.
type AccessCode struct {
	BookingID uint `gorm:"primaryKey"`

	Code string `gorm:"type:varchar(6);not null"`

	ValidFrom time.Time `gorm:"not null"`
	ValidTo   time.Time `gorm:"not null"`

	Status string `gorm:"type:varchar(20);not null;default:ACTIVE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AccessCode) TableName() string {
	return "access_codes"
}

// IsValidAt reports whether now lies within [ValidFrom, ValidTo] and the
// code has not been revoked or expired.
func (a *AccessCode) IsValidAt(now time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	return !now.Before(a.ValidFrom) && !now.After(a.ValidTo)
}
