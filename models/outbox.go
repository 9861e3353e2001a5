package models

import "time"

// OutboxRecord is written in the same transaction as the document it
// describes. The dispatcher publishes committed rows to Pub/Sub afterwards;
// no network I/O ever happens inside the posting transaction.
type OutboxRecord struct {
	ID            int                 `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	ReferenceType OutboxReferenceType `gorm:"size:10;not null;index" json:"reference_type"`
	ReferenceID   int                 `gorm:"not null;index" json:"reference_id"`
	Action        OutboxAction        `gorm:"size:5;not null" json:"action"`
	Payload       []byte              `gorm:"type:blob" json:"payload"`

	PublishStatus    string     `gorm:"size:20;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	PublishedAt      *time.Time `json:"published_at"`
	ServerMessageID  *string    `gorm:"size:255" json:"server_message_id"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CorrelationID    string     `gorm:"size:64;index" json:"correlation_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
