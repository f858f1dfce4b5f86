package repository

import (
	"time"

	"gorm.io/gorm"

	"studio-booking/internal/quota/dao"
)

// QuotaRepository defines data access operations for quota reservations.
// Methods that must run inside the caller's advisory-lock-guarded
// transaction take tx explicitly rather than owning their own connection.
type QuotaRepository interface {
	// SumHeldMinutes returns the sum of minutes_reserved for (userID,
	// weekStart) over rows with status HELD or COMMITTED.
	SumHeldMinutes(tx *gorm.DB, userID int64, weekStart time.Time) (int, error)
	Create(tx *gorm.DB, reservation *dao.QuotaReservation) error
	FindByID(id uint) (*dao.QuotaReservation, error)
	UpdateStatus(id uint, status string) (bool, error)
	DB() *gorm.DB
}

type quotaRepository struct {
	db *gorm.DB
}

// NewQuotaRepository creates a QuotaRepository bound to db.
func NewQuotaRepository(db *gorm.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) DB() *gorm.DB {
	return r.db
}

func (r *quotaRepository) SumHeldMinutes(tx *gorm.DB, userID int64, weekStart time.Time) (int, error) {
	var total int
	row := tx.Model(&dao.QuotaReservation{}).
		Select("COALESCE(SUM(minutes_reserved), 0)").
		Where("user_id = ? AND week_start = ? AND status IN (?)", userID, weekStart, []string{dao.StatusHeld, dao.StatusCommitted}).
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *quotaRepository) Create(tx *gorm.DB, reservation *dao.QuotaReservation) error {
	return tx.Create(reservation).Error
}

func (r *quotaRepository) FindByID(id uint) (*dao.QuotaReservation, error) {
	var reservation dao.QuotaReservation
	if err := r.db.Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateStatus sets the reservation's status. Returns ok=false if no row
// with that id exists; both commit and release must be idempotent, so
// re-applying the same status is not an error.
func (r *quotaRepository) UpdateStatus(id uint, status string) (bool, error) {
	result := r.db.Model(&dao.QuotaReservation{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&dao.QuotaReservation{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	return true, nil
}
