package models

import "time"

// Message senders. Agent responses use the agent type as the sender value.
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// MessageLog is one entry in a session's append-only conversation log.
// Rows are never updated after insertion; the classifier and policy read
// them back as bounded contextual history.
type MessageLog struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	SessionID  string `gorm:"size:64;not null;index"`
	Sender     string `gorm:"size:64;not null"`
	Content    string `gorm:"type:text;not null"`
	Intent     string `gorm:"size:32"`
	Confidence float64
	AgentType  AgentType `gorm:"size:32"`
	CreatedAt  time.Time `gorm:"index"`
}
