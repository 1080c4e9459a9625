package app

import (
	"context"
	"time"

	"netauto/internal/model"
	"netauto/internal/repository"
)

// VectorCounter reports how many vectors the store holds.
type VectorCounter interface {
	Count(ctx context.Context) (int, error)
}

type StatsService struct {
	devices   *repository.DeviceRepository
	documents *repository.DocumentRepository
	messages  *repository.MessageRepository
	audits    *repository.AuditRepository
	vectors   VectorCounter
}

type DashboardStats struct {
	TotalDevices    int64      `json:"total_devices"`
	OnlineDevices   int64      `json:"online_devices"`
	OfflineDevices  int64      `json:"offline_devices"`
	TotalDocuments  int64      `json:"total_documents"`
	VectorDocuments int        `json:"vector_documents"`
	ChatMessages    int64      `json:"chat_messages"`
	AuditResults    int64      `json:"audit_results"`
	LastAudit       *time.Time `json:"last_audit"`
}

// NewStatsService builds the dashboard counters. vectors may be nil.
func NewStatsService(
	devices *repository.DeviceRepository,
	documents *repository.DocumentRepository,
	messages *repository.MessageRepository,
	audits *repository.AuditRepository,
	vectors VectorCounter,
) *StatsService {
	return &StatsService{devices: devices, documents: documents, messages: messages, audits: audits, vectors: vectors}
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	stats.TotalDevices, stats.OnlineDevices, err = s.devices.CountByStatus(model.DeviceStatusOnline)
	if err != nil {
		return nil, err
	}
	if _, stats.OfflineDevices, err = s.devices.CountByStatus(model.DeviceStatusOffline); err != nil {
		return nil, err
	}
	if stats.TotalDocuments, err = s.documents.Count(); err != nil {
		return nil, err
	}
	if stats.ChatMessages, err = s.messages.Count(); err != nil {
		return nil, err
	}
	if stats.AuditResults, err = s.audits.Count(); err != nil {
		return nil, err
	}
	latest, err := s.audits.Latest()
	if err != nil {
		return nil, err
	}
	if latest != nil {
		at := latest.ExecutedAt
		stats.LastAudit = &at
	}
	// The vector count is informational; a down store leaves it at zero.
	if s.vectors != nil {
		if n, err := s.vectors.Count(ctx); err == nil {
			stats.VectorDocuments = n
		}
	}
	return &stats, nil
}
