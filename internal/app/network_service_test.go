package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/model"
	"netauto/internal/network"
	"netauto/internal/repository"
	"netauto/internal/validator"
)

type networkFixture struct {
	svc     *NetworkService
	devices *repository.DeviceRepository
}

func newNetworkFixture(t *testing.T) *networkFixture {
	t.Helper()
	db := newTestDB(t)
	devices := repository.NewDeviceRepository(db)
	svc := NewNetworkService(devices, repository.NewAuditRepository(db), validator.New(true), nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	for _, d := range []model.Device{
		{Name: "R15", Host: "172.16.39.115", DeviceType: "cisco_ios", Status: model.DeviceStatusUnknown},
		{Name: "R16", Host: "172.16.39.116", DeviceType: "cisco_ios", Status: model.DeviceStatusUnknown},
	} {
		d := d
		require.NoError(t, devices.Create(&d))
	}
	return &networkFixture{svc: svc, devices: devices}
}

func TestDiscoverIsPlaceholder(t *testing.T) {
	res := newNetworkFixture(t).svc.Discover()
	assert.Equal(t, "started", res.Status)
	assert.Equal(t, "Network discovery not yet implemented", res.Message)
	assert.NotNil(t, res.DiscoveredDevices)
	assert.Empty(t, res.DiscoveredDevices)
}

func TestAuditRecordsPlaceholderResults(t *testing.T) {
	f := newNetworkFixture(t)

	res, err := f.svc.Audit(AuditInput{DeviceNames: []string{"R15", "R16", "R99", "R15"}, AuditTypes: []string{"bgp", "ping"}})
	require.NoError(t, err)
	assert.Equal(t, "started", res.Status)
	assert.NotEmpty(t, res.AuditID)
	assert.Equal(t, []string{"R15", "R16", "R99"}, res.Devices)
	assert.Equal(t, []string{"bgp", "ping"}, res.AuditTypes)
	assert.Equal(t, []string{"R99"}, res.UnknownDevices)

	rows, err := f.svc.ListAudits(res.AuditID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, network.AuditStatusWarning, r.Status)
		assert.Equal(t, res.AuditID, r.AuditID)
		want, _ := network.AuditCategory(r.AuditType)
		assert.Equal(t, want, r.AuditCategory)

		var details map[string]interface{}
		require.NoError(t, json.Unmarshal(r.Details, &details))
		assert.Equal(t, "cisco_ios", details["device_type"])
	}

	recent, err := f.svc.ListAudits("", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestAuditDefaultsAndErrors(t *testing.T) {
	f := newNetworkFixture(t)

	res, err := f.svc.Audit(AuditInput{DeviceNames: []string{"R15"}})
	require.NoError(t, err)
	assert.Equal(t, []string{network.DefaultAuditType}, res.AuditTypes)

	_, err = f.svc.Audit(AuditInput{DeviceNames: []string{" "}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Audit(AuditInput{DeviceNames: []string{"R15"}, AuditTypes: []string{"traceroute"}})
	require.ErrorIs(t, err, ErrUnknownAuditType)

	// only unknown devices: nothing stored, still accepted
	res, err = f.svc.Audit(AuditInput{DeviceNames: []string{"R42"}})
	require.NoError(t, err)
	rows, err := f.svc.ListAudits(res.AuditID, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestValidateDelegatesToValidator(t *testing.T) {
	f := newNetworkFixture(t)

	res, err := f.svc.Validate("cisco_ios", "hostname R15\ninterface Loopback0\n description router-id\n ip address 10.0.0.15 255.255.255.255\n")
	require.NoError(t, err)
	assert.Equal(t, validator.StatusSuccess, res.Status)
	assert.Empty(t, res.Errors)

	res, err = f.svc.Validate("cisco_ios", "interface Loopback0\n ip address 10.0.0.15 255.255.255.255\n")
	require.NoError(t, err)
	assert.Equal(t, validator.StatusFailed, res.Status)
	assert.Equal(t, []string{"Interface 'interface Loopback0' missing description"}, res.Errors)

	_, err = f.svc.Validate("", "hostname R15")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.Validate("cisco_ios", "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogues(t *testing.T) {
	f := newNetworkFixture(t)

	assert.Contains(t, f.svc.DeviceTypes(), "cisco_ios")
	assert.Contains(t, f.svc.AuditTypes(), "ping")
	topo := f.svc.Topology()
	assert.NotEmpty(t, topo.Elements.Nodes)
	assert.NotEmpty(t, topo.Elements.Edges)
}
