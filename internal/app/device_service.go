package app

import (
	"errors"
	"strings"

	"netauto/internal/config"
	"netauto/internal/logger"
	"netauto/internal/model"
	"netauto/internal/repository"
	"netauto/internal/validator"
)

const seedVendor = "Cisco"

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceExists   = errors.New("device name already exists")
)

type DeviceService struct {
	repo *repository.DeviceRepository
	log  logger.Logger
}

// DeviceInput carries writable device fields. Zero values leave the stored
// field unchanged on update.
type DeviceInput struct {
	Name         string `json:"name"`
	Host         string `json:"host"`
	DeviceType   string `json:"device_type"`
	Role         string `json:"role"`
	ASNumber     int    `json:"as_number"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Secret       string `json:"secret"`
	Port         int    `json:"port"`
	Status       string `json:"status"`
	Vendor       string `json:"vendor"`
	Model        string `json:"model"`
	Version      string `json:"version"`
	SerialNumber string `json:"serial_number"`
}

func NewDeviceService(repo *repository.DeviceRepository, log logger.Logger) *DeviceService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DeviceService{repo: repo, log: log}
}

func (s *DeviceService) List() ([]model.Device, error) {
	return s.repo.List()
}

func (s *DeviceService) Get(id uint) (*model.Device, error) {
	device, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	return device, nil
}

func (s *DeviceService) Create(input DeviceInput) (*model.Device, error) {
	name := strings.TrimSpace(input.Name)
	host := strings.TrimSpace(input.Host)
	if name == "" || host == "" || !validator.IsSupported(input.DeviceType) || !validStatus(input.Status) {
		return nil, ErrInvalidInput
	}
	existing, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDeviceExists
	}

	device := &model.Device{Name: name, Host: host, Port: 22, Status: model.DeviceStatusUnknown}
	applyDeviceInput(device, input)
	if err := s.repo.Create(device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *DeviceService) Update(id uint, input DeviceInput) (*model.Device, error) {
	device, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.DeviceType != "" && !validator.IsSupported(input.DeviceType) {
		return nil, ErrInvalidInput
	}
	if !validStatus(input.Status) {
		return nil, ErrInvalidInput
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != device.Name {
		other, err := s.repo.GetByName(name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrDeviceExists
		}
		device.Name = name
	}
	if host := strings.TrimSpace(input.Host); host != "" {
		device.Host = host
	}
	applyDeviceInput(device, input)
	if err := s.repo.Save(device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *DeviceService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// Seed inserts the configured lab devices that do not exist yet and returns
// how many were created.
func (s *DeviceService) Seed(cfg config.NetworkConfig) (int, error) {
	created := 0
	for _, d := range cfg.Devices {
		existing, err := s.repo.GetByName(d.Name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		device := &model.Device{
			Name:       d.Name,
			Host:       d.Host,
			DeviceType: d.DeviceType,
			Role:       d.Role,
			ASNumber:   d.ASNumber,
			Username:   cfg.SSHUsername,
			Password:   cfg.SSHPassword,
			Secret:     cfg.EnablePassword,
			Port:       22,
			Status:     model.DeviceStatusUnknown,
			Vendor:     seedVendor,
		}
		if err := s.repo.Create(device); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.log.Info("devices", "seeded devices", map[string]interface{}{"count": created})
	}
	return created, nil
}

func applyDeviceInput(device *model.Device, input DeviceInput) {
	if input.DeviceType != "" {
		device.DeviceType = input.DeviceType
	}
	if input.Role != "" {
		device.Role = input.Role
	}
	if input.ASNumber != 0 {
		device.ASNumber = input.ASNumber
	}
	if input.Username != "" {
		device.Username = input.Username
	}
	if input.Password != "" {
		device.Password = input.Password
	}
	if input.Secret != "" {
		device.Secret = input.Secret
	}
	if input.Port > 0 {
		device.Port = input.Port
	}
	if input.Status != "" {
		device.Status = input.Status
	}
	if input.Vendor != "" {
		device.Vendor = input.Vendor
	}
	if input.Model != "" {
		device.Model = input.Model
	}
	if input.Version != "" {
		device.Version = input.Version
	}
	if input.SerialNumber != "" {
		device.SerialNumber = input.SerialNumber
	}
}

func validStatus(status string) bool {
	switch status {
	case "", model.DeviceStatusUnknown, model.DeviceStatusOnline, model.DeviceStatusOffline:
		return true
	}
	return false
}
