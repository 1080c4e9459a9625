package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"netauto/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateBatch(results []model.AuditResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := r.db.Create(&results).Error; err != nil {
		return fmt.Errorf("create audit results batch failed: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListRecent(limit int) ([]model.AuditResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.AuditResult
	if err := r.db.Order("executed_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list audit results failed: %w", err)
	}
	return list, nil
}

func (r *AuditRepository) ListByAuditID(auditID string) ([]model.AuditResult, error) {
	var list []model.AuditResult
	if err := r.db.Where("audit_id = ?", auditID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list audit results by audit id failed: %w", err)
	}
	return list, nil
}

// Latest returns the most recent audit result, or nil when none exist.
func (r *AuditRepository) Latest() (*model.AuditResult, error) {
	var res model.AuditResult
	if err := r.db.Order("executed_at DESC, id DESC").First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest audit result failed: %w", err)
	}
	return &res, nil
}

func (r *AuditRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.AuditResult{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count audit results failed: %w", err)
	}
	return n, nil
}
