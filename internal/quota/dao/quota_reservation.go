package dao

import "time"

// Quota reservation status constants; only HELD and COMMITTED count against
// the weekly cap.
const (
	StatusHeld      = "HELD"
	StatusCommitted = "COMMITTED"
	StatusReleased  = "RELEASED"
	StatusDenied    = "DENIED"
)

// QuotaReservation is the GORM model for one booking's claim against a
// user's weekly minute budget.
type QuotaReservation struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	UserID int64 `gorm:"index:idx_user_week;not null"`

	// WeekStart is Monday 00:00 UTC of the week containing the booking's
	// start instant, regardless of LOCAL_TZ.
	WeekStart time.Time `gorm:"index:idx_user_week;not null"`

	MinutesReserved int `gorm:"not null"`

	Status string `gorm:"type:varchar(20);index;not null"`

	BookingID uint `gorm:"index;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (QuotaReservation) TableName() string {
	return "quota_reservations"
}

// CountsAgainstCap reports whether this row's minutes are still live
// against the weekly cap (HELD or COMMITTED).
func (q *QuotaReservation) CountsAgainstCap() bool {
	return q.Status == StatusHeld || q.Status == StatusCommitted
}
