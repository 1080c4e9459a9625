package model

import "time"

const (
	DeviceStatusUnknown = "unknown"
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
)

type Device struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Host       string `gorm:"size:45;not null" json:"host"`
	DeviceType string `gorm:"size:50;not null" json:"device_type"`
	Role       string `gorm:"size:50" json:"role"`
	ASNumber   int    `json:"as_number"`

	Username string `gorm:"size:50" json:"-"`
	Password string `gorm:"size:100" json:"-"`
	Secret   string `gorm:"size:100" json:"-"`
	Port     int    `gorm:"default:22" json:"port"`

	Status     string     `gorm:"size:20;default:unknown;index" json:"status"`
	LastSeen   *time.Time `json:"last_seen"`
	LastBackup *time.Time `json:"last_backup"`

	Vendor        string `gorm:"size:50" json:"vendor"`
	Model         string `gorm:"size:50" json:"model"`
	Version       string `gorm:"size:50" json:"version"`
	SerialNumber  string `gorm:"size:50" json:"serial_number"`
	Configuration string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
