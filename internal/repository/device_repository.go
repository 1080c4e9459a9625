package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"netauto/internal/model"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(device *model.Device) error {
	if err := r.db.Create(device).Error; err != nil {
		return fmt.Errorf("create device failed: %w", err)
	}
	return nil
}

func (r *DeviceRepository) Save(device *model.Device) error {
	if err := r.db.Save(device).Error; err != nil {
		return fmt.Errorf("save device failed: %w", err)
	}
	return nil
}

func (r *DeviceRepository) GetByID(id uint) (*model.Device, error) {
	var device model.Device
	if err := r.db.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device failed: %w", err)
	}
	return &device, nil
}

func (r *DeviceRepository) GetByName(name string) (*model.Device, error) {
	var device model.Device
	if err := r.db.Where("name = ?", name).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device by name failed: %w", err)
	}
	return &device, nil
}

func (r *DeviceRepository) List() ([]model.Device, error) {
	var devices []model.Device
	if err := r.db.Order("name ASC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("list devices failed: %w", err)
	}
	return devices, nil
}

func (r *DeviceRepository) ListByNames(names []string) ([]model.Device, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var devices []model.Device
	if err := r.db.Where("name IN ?", names).Order("name ASC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("list devices by names failed: %w", err)
	}
	return devices, nil
}

func (r *DeviceRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Device{}, id).Error; err != nil {
		return fmt.Errorf("delete device failed: %w", err)
	}
	return nil
}

// CountByStatus returns the total and the number of devices with status.
func (r *DeviceRepository) CountByStatus(status string) (total, matching int64, err error) {
	if err := r.db.Model(&model.Device{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("count devices failed: %w", err)
	}
	if err := r.db.Model(&model.Device{}).Where("status = ?", status).Count(&matching).Error; err != nil {
		return 0, 0, fmt.Errorf("count devices by status failed: %w", err)
	}
	return total, matching, nil
}
