package models

import "time"

// HandoffRecord is an append-only audit entry emitted once per actual agent
// change on a session. The core writes it and, for anti-thrash bookkeeping,
// reads back only the most recent record; analytics consumers own the rest.
type HandoffRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"size:64;not null;index"`
	FromAgent AgentType `gorm:"size:32"`
	ToAgent   AgentType `gorm:"size:32;not null"`
	Reason    string    `gorm:"size:256"`
	// LogID is the id of the message log entry that triggered the handoff.
	// The anti-thrash window counts log entries with a higher id, which
	// stays exact even when entries share a timestamp.
	LogID uint `gorm:"not null"`
	// ProfileJSON is a snapshot of the qualification profile at handoff time.
	ProfileJSON string `gorm:"type:text"`
	CreatedAt   time.Time
}
