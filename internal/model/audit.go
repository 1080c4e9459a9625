package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditResult struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AuditID         string         `gorm:"size:36;index" json:"audit_id"`
	DeviceID        uint           `gorm:"index" json:"device_id"`
	DeviceName      string         `gorm:"size:50;not null" json:"device_name"`
	AuditType       string         `gorm:"size:50;not null" json:"audit_type"`
	AuditCategory   string         `gorm:"size:50" json:"audit_category"`
	Status          string         `gorm:"size:20;not null" json:"status"`
	Summary         string         `gorm:"size:500" json:"summary"`
	Details         datatypes.JSON `json:"details,omitempty"`
	ResponseTime    float64        `json:"response_time"`
	NeighborCount   int            `json:"neighbor_count"`
	IssuesFound     datatypes.JSON `json:"issues_found,omitempty"`
	Recommendations datatypes.JSON `json:"recommendations,omitempty"`
	ExecutedAt      time.Time      `gorm:"autoCreateTime;index" json:"executed_at"`
}
