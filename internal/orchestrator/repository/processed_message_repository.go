package repository

import (
	"strings"

	"gorm.io/gorm"

	"studio-booking/internal/orchestrator/dao"
)

// ProcessedMessageRepository implements consumer-side message deduplication:
// the first line of defense against at-least-once delivery.
type ProcessedMessageRepository interface {
	// IsProcessed reports whether messageID has already been recorded.
	IsProcessed(messageID string) (bool, error)
	// MarkProcessed records messageID as handled. A duplicate insert
	// (the message raced with itself) is treated as success, since the
	// row existing is exactly the desired post-condition.
	MarkProcessed(messageID string) error
	WithTx(tx *gorm.DB) ProcessedMessageRepository
}

type processedMessageRepository struct {
	db *gorm.DB
}

// NewProcessedMessageRepository creates a ProcessedMessageRepository bound to db.
func NewProcessedMessageRepository(db *gorm.DB) ProcessedMessageRepository {
	return &processedMessageRepository{db: db}
}

func (r *processedMessageRepository) WithTx(tx *gorm.DB) ProcessedMessageRepository {
	return &processedMessageRepository{db: tx}
}

func (r *processedMessageRepository) IsProcessed(messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&dao.ProcessedMessage{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *processedMessageRepository) MarkProcessed(messageID string) error {
	err := r.db.Create(&dao.ProcessedMessage{MessageID: messageID}).Error
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}

// isDuplicateKeyError reports whether err is a unique-constraint violation,
// across both the MySQL driver and the sqlite driver used in tests.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "1062") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
