package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/config"
	"netauto/internal/model"
	"netauto/internal/repository"
)

func newDeviceService(t *testing.T) *DeviceService {
	t.Helper()
	return NewDeviceService(repository.NewDeviceRepository(newTestDB(t)), nil)
}

func TestDeviceCRUD(t *testing.T) {
	svc := newDeviceService(t)

	created, err := svc.Create(DeviceInput{Name: "R15", Host: "172.16.39.115", DeviceType: "cisco_ios", Role: "PE Router", ASNumber: 2222})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 22, created.Port)
	assert.Equal(t, model.DeviceStatusUnknown, created.Status)

	_, err = svc.Create(DeviceInput{Name: "R15", Host: "10.0.0.1", DeviceType: "cisco_ios"})
	require.ErrorIs(t, err, ErrDeviceExists)

	updated, err := svc.Update(created.ID, DeviceInput{Status: model.DeviceStatusOnline, Version: "15.9"})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOnline, updated.Status)
	assert.Equal(t, "15.9", updated.Version)
	assert.Equal(t, "PE Router", updated.Role)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.9", got.Version)

	require.NoError(t, svc.Delete(created.ID))
	_, err = svc.Get(created.ID)
	require.ErrorIs(t, err, ErrDeviceNotFound)
	require.ErrorIs(t, svc.Delete(created.ID), ErrDeviceNotFound)
}

func TestDeviceValidation(t *testing.T) {
	svc := newDeviceService(t)

	cases := []DeviceInput{
		{Host: "10.0.0.1", DeviceType: "cisco_ios"},
		{Name: "R1", DeviceType: "cisco_ios"},
		{Name: "R1", Host: "10.0.0.1", DeviceType: "windows"},
		{Name: "R1", Host: "10.0.0.1", DeviceType: "cisco_ios", Status: "rebooting"},
	}
	for _, in := range cases {
		_, err := svc.Create(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}

	a, err := svc.Create(DeviceInput{Name: "R1", Host: "10.0.0.1", DeviceType: "cisco_ios"})
	require.NoError(t, err)
	_, err = svc.Create(DeviceInput{Name: "R2", Host: "10.0.0.2", DeviceType: "juniper_junos"})
	require.NoError(t, err)

	_, err = svc.Update(a.ID, DeviceInput{Name: "R2"})
	require.ErrorIs(t, err, ErrDeviceExists)
	_, err = svc.Update(a.ID, DeviceInput{DeviceType: "windows"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(999, DeviceInput{})
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newDeviceService(t)
	cfg := config.NetworkConfig{
		SSHUsername:    "cisco",
		SSHPassword:    "secret",
		EnablePassword: "enable",
		Devices: []config.DeviceConfig{
			{Name: "R15", Host: "172.16.39.115", DeviceType: "cisco_ios", Role: "PE Router", ASNumber: 2222},
			{Name: "R19", Host: "172.16.39.119", DeviceType: "cisco_ios", Role: "CE Router", ASNumber: 100},
		},
	}

	n, err := svc.Seed(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Seed(cfg)
	require.NoError(t, err)
	assert.Zero(t, n)

	devices, err := svc.List()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	for _, d := range devices {
		assert.Equal(t, "Cisco", d.Vendor)
		assert.Equal(t, "cisco", d.Username)
		assert.Equal(t, "enable", d.Secret)
		assert.Equal(t, 22, d.Port)
	}
}
