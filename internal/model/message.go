package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
	MessageTypeSystem    = "system"
)

// ChatMessage is append-only; rows are never updated after insert.
type ChatMessage struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SessionID     string         `gorm:"size:100;not null;index" json:"session_id"`
	MessageType   string         `gorm:"size:20;not null" json:"message_type"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	AgentName     string         `gorm:"size:50" json:"agent_name,omitempty"`
	AgentRole     string         `gorm:"size:100" json:"agent_role,omitempty"`
	ContextUsed   datatypes.JSON `json:"context_used,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}
