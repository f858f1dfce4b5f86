package dao

import "time"

// ProcessedMessage records a bus message id that has already been handled by
// the event consumer. A UNIQUE constraint on MessageID is the idempotency
// mechanism: a second INSERT for the same id is the signal that this
// message was already applied, regardless of how many times the broker
// redelivers it.
type ProcessedMessage struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	MessageID string `gorm:"type:varchar(128);uniqueIndex;not null"`

	ProcessedAt time.Time `gorm:"autoCreateTime"`
}

func (ProcessedMessage) TableName() string {
	return "processed_messages"
}
