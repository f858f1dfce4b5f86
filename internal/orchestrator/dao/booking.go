package dao

import (
	"time"

	"studio-booking/internal/orchestrator/domain"
)

// Booking is the GORM model for a studio reservation. Start/End are always
// stored in UTC; local-time rendering happens at the DTO boundary.
//
// Indexes:
//   - user_id: "find all my bookings"
//   - status: filter by lifecycle state
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	UserID   int64 `gorm:"index;not null"`
	StudioID int64 `gorm:"index;not null"`

	Start time.Time `gorm:"not null"`
	End   time.Time `gorm:"not null"`

	// Status is one of domain.BookingStatus*. Indexed for dashboard-style
	// filtering by lifecycle state.
	Status string `gorm:"type:varchar(20);index;not null;default:PENDING"`

	// Code is the 6-digit access code merged from an AccessCodeIssued
	// event. Empty until then.
	Code string `gorm:"type:varchar(6)"`

	// QuotaReservationID is the opaque reservation id merged from a
	// QuotaReserved event. Empty until then.
	QuotaReservationID string `gorm:"type:varchar(64)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending reports whether the booking is still waiting on both replies.
func (b *Booking) IsPending() bool {
	return b.Status == domain.BookingStatusPending
}

// IsReadyForJoin reports whether both halves of the async join have
// arrived, i.e. the booking may transition PENDING -> READY.
func (b *Booking) IsReadyForJoin() bool {
	return b.Code != "" && b.QuotaReservationID != ""
}

// ToDTO renders the booking with Start/End converted into loc.
func (b *Booking) ToDTO(loc *time.Location) domain.BookingDTO {
	return domain.BookingDTO{
		ID:                 b.ID,
		UserID:             b.UserID,
		StudioID:           b.StudioID,
		Start:              b.Start.In(loc),
		End:                b.End.In(loc),
		Status:             b.Status,
		Code:               b.Code,
		QuotaReservationID: b.QuotaReservationID,
		CreatedAt:          b.CreatedAt.In(loc),
	}
}
