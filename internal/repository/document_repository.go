package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"netauto/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.DocumentRecord) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Save(doc *model.DocumentRecord) error {
	if err := r.db.Save(doc).Error; err != nil {
		return fmt.Errorf("save document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.DocumentRecord, error) {
	var doc model.DocumentRecord
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// List returns documents newest first; an empty status lists all of them.
func (r *DocumentRepository) List(status string, limit int) ([]model.DocumentRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.Order("uploaded_at DESC, id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.DocumentRecord
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.DocumentRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.DocumentRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return n, nil
}
