package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"netauto/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Ensure creates the session if it does not exist yet and bumps updated_at
// otherwise.
func (r *SessionRepository) Ensure(session *model.ChatSession) error {
	existing, err := r.GetByID(session.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := r.db.Create(session).Error; err != nil {
			return fmt.Errorf("create chat session failed: %w", err)
		}
		return nil
	}
	if err := r.db.Model(existing).Update("updated_at", time.Now()).Error; err != nil {
		return fmt.Errorf("touch chat session failed: %w", err)
	}
	*session = *existing
	return nil
}

func (r *SessionRepository) ListByUserID(userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) GetByID(id string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}
