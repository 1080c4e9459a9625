package model

import "time"

// ChatSession groups chat messages. The id is a client- or server-generated
// string so anonymous dashboard sessions work without a user.
type ChatSession struct {
	ID        string    `gorm:"primaryKey;size:100" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
