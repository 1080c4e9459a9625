package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"netauto/internal/logger"
	"netauto/internal/model"
	"netauto/internal/network"
	"netauto/internal/repository"
	"netauto/internal/validator"
)

var ErrUnknownAuditType = errors.New("unknown audit type")

type NetworkService struct {
	devices   *repository.DeviceRepository
	audits    *repository.AuditRepository
	validator validator.Validator
	log       logger.Logger
	now       func() time.Time
}

type DiscoverResult struct {
	Status            string         `json:"status"`
	Message           string         `json:"message"`
	DiscoveredDevices []model.Device `json:"discovered_devices"`
}

type AuditInput struct {
	DeviceNames []string
	AuditTypes  []string
}

type AuditStartResult struct {
	Status         string   `json:"status"`
	Message        string   `json:"message"`
	AuditID        string   `json:"audit_id"`
	Devices        []string `json:"devices"`
	AuditTypes     []string `json:"audit_types"`
	UnknownDevices []string `json:"unknown_devices,omitempty"`
}

func NewNetworkService(devices *repository.DeviceRepository, audits *repository.AuditRepository, v validator.Validator, log logger.Logger) *NetworkService {
	if v == nil {
		v = validator.New(false)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &NetworkService{devices: devices, audits: audits, validator: v, log: log, now: time.Now}
}

// Discover is a placeholder until device connectivity exists.
func (s *NetworkService) Discover() DiscoverResult {
	return DiscoverResult{
		Status:            "started",
		Message:           "Network discovery not yet implemented",
		DiscoveredDevices: []model.Device{},
	}
}

// Audit records a placeholder result for every known device and audit type.
// No device is contacted.
func (s *NetworkService) Audit(input AuditInput) (*AuditStartResult, error) {
	names := dedupe(input.DeviceNames)
	if len(names) == 0 {
		return nil, ErrInvalidInput
	}
	types := dedupe(input.AuditTypes)
	if len(types) == 0 {
		types = []string{network.DefaultAuditType}
	}
	for _, t := range types {
		if _, ok := network.AuditCategory(t); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAuditType, t)
		}
	}

	devices, err := s.devices.ListByNames(names)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(devices))
	for _, d := range devices {
		known[d.Name] = true
	}
	var unknown []string
	for _, n := range names {
		if !known[n] {
			unknown = append(unknown, n)
		}
	}

	auditID := uuid.NewString()
	executedAt := s.now()
	results := make([]model.AuditResult, 0, len(devices)*len(types))
	for _, d := range devices {
		for _, t := range types {
			category, _ := network.AuditCategory(t)
			details, _ := json.Marshal(map[string]interface{}{"host": d.Host, "device_type": d.DeviceType})
			results = append(results, model.AuditResult{
				AuditID:         auditID,
				DeviceID:        d.ID,
				DeviceName:      d.Name,
				AuditType:       t,
				AuditCategory:   category,
				Status:          network.AuditStatusWarning,
				Summary:         fmt.Sprintf("%s audit not yet implemented", t),
				Details:         datatypes.JSON(details),
				IssuesFound:     datatypes.JSON(`[]`),
				Recommendations: datatypes.JSON(`[]`),
				ExecutedAt:      executedAt,
			})
		}
	}
	if err := s.audits.CreateBatch(results); err != nil {
		return nil, err
	}
	s.log.Info("network", "audit requested", map[string]interface{}{
		"audit_id": auditID,
		"devices":  len(devices),
		"types":    types,
	})

	return &AuditStartResult{
		Status:         "started",
		Message:        "Network audit not yet implemented",
		AuditID:        auditID,
		Devices:        names,
		AuditTypes:     types,
		UnknownDevices: unknown,
	}, nil
}

func (s *NetworkService) ListAudits(auditID string, limit int) ([]model.AuditResult, error) {
	if auditID = strings.TrimSpace(auditID); auditID != "" {
		return s.audits.ListByAuditID(auditID)
	}
	return s.audits.ListRecent(limit)
}

func (s *NetworkService) Topology() network.Topology {
	return network.LabTopology()
}

func (s *NetworkService) Validate(deviceType, configText string) (validator.Result, error) {
	if strings.TrimSpace(deviceType) == "" || strings.TrimSpace(configText) == "" {
		return validator.Result{}, ErrInvalidInput
	}
	return s.validator.Validate(deviceType, configText), nil
}

func (s *NetworkService) DeviceTypes() []string {
	return validator.SupportedDeviceTypes()
}

func (s *NetworkService) AuditTypes() []string {
	return network.AuditTypes()
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
