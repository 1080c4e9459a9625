package repository

import (
	"fmt"

	"gorm.io/gorm"

	"netauto/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 200
)

// ListBySessionID returns the newest limit messages oldest first. Limits
// outside (0, MaxHistoryLimit] fall back to DefaultHistoryLimit.
func (r *MessageRepository) ListBySessionID(sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}

	messages, err := r.listNewest(sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return messages, nil
}

// ListRecentBySessionID returns the newest limit messages in ascending order.
func (r *MessageRepository) ListRecentBySessionID(sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return []model.ChatMessage{}, nil
	}

	messages, err := r.listNewest(sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent chat messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) listNewest(sessionID string, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.ChatMessage{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chat messages failed: %w", err)
	}
	return n, nil
}
