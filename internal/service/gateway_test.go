package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/service"
	"gateway-service/internal/store"
)

func newServices(t *testing.T) (*service.GatewayService, *service.DeviceService, *service.TenantService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	log := zap.NewNop()
	return service.NewGatewayService(mem, log),
		service.NewDeviceService(mem, log),
		service.NewTenantService(mem, log),
		mem
}

func createGateway(t *testing.T, svc *service.GatewayService, serial, ip string) *model.Gateway {
	t.Helper()
	gw, err := svc.Create(context.Background(), service.CreateGatewayInput{
		SerialNumber: serial,
		Name:         "Gateway " + serial,
		IPv4Address:  ip,
	})
	require.NoError(t, err)
	return gw
}

func createDevice(t *testing.T, svc *service.DeviceService, uid int64) *model.PeripheralDevice {
	t.Helper()
	dev, err := svc.Add(context.Background(), service.AddDeviceInput{
		UID:          uid,
		Vendor:       "acme",
		DeviceTypeID: 1, // seeded "sensor" type
	})
	require.NoError(t, err)
	return dev
}

func TestCreateGateway(t *testing.T) {
	gateways, _, _, mem := newServices(t)
	ctx := context.Background()

	gw, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-001",
		Name:         "Main Building Gateway",
		IPv4Address:  "192.168.1.100",
		Location:     "Building A",
	})
	require.NoError(t, err)
	require.NotEmpty(t, gw.ID)
	require.Equal(t, model.GatewayStatusActive, gw.Status, "status defaults to active")
	require.False(t, gw.CreatedAt.IsZero())

	detail, err := gateways.Get(ctx, gw.ID)
	require.NoError(t, err)
	require.Equal(t, "GW-001", detail.SerialNumber)
	require.Equal(t, "192.168.1.100", detail.IPv4Address)
	require.Equal(t, "Building A", detail.Location)
	require.Equal(t, 0, detail.DeviceCount)

	entries, err := mem.GatewayLogs().ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, model.LogActionCreated, entries[0].Action)
}

func TestCreateGatewayDuplicateSerial(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	createGateway(t, gateways, "GW-001", "10.0.0.1")

	_, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-001",
		Name:         "Another",
		IPv4Address:  "10.0.0.2",
	})
	require.ErrorIs(t, err, service.ErrConflict)
	require.Contains(t, err.Error(), "serial number")
}

func TestCreateGatewayDuplicateIP(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	createGateway(t, gateways, "GW-001", "10.0.0.1")

	_, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-002",
		Name:         "Another",
		IPv4Address:  "10.0.0.1",
	})
	require.ErrorIs(t, err, service.ErrConflict)
	require.Contains(t, err.Error(), "IP address")
}

func TestCreateGatewaySerialCheckedBeforeIP(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	createGateway(t, gateways, "GW-001", "10.0.0.1")

	// both collide; the serial conflict must win
	_, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-001",
		Name:         "Another",
		IPv4Address:  "10.0.0.1",
	})
	require.ErrorIs(t, err, service.ErrConflict)
	require.Contains(t, err.Error(), "serial number")
}

func TestCreateGatewayUnknownTenant(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	missing := "2df486aa-60b0-44a5-9986-77e0429e3b55"
	_, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-001",
		Name:         "Orphan tenant",
		IPv4Address:  "10.0.0.1",
		TenantID:     &missing,
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetGatewayNotFound(t *testing.T) {
	gateways, _, _, _ := newServices(t)

	_, err := gateways.Get(context.Background(), "nope")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestListGatewaysMostRecentFirst(t *testing.T) {
	gateways, _, _, _ := newServices(t)

	a := createGateway(t, gateways, "GW-A", "10.0.0.1")
	b := createGateway(t, gateways, "GW-B", "10.0.0.2")
	c := createGateway(t, gateways, "GW-C", "10.0.0.3")

	list, err := gateways.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{c.ID, b.ID, a.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestUpdateGatewayPartial(t *testing.T) {
	gateways, _, _, mem := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-001", "10.0.0.1")

	name := "Renamed"
	updated, err := gateways.Update(ctx, gw.ID, service.UpdateGatewayInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "GW-001", updated.SerialNumber, "serial number is immutable")
	require.Equal(t, "10.0.0.1", updated.IPv4Address, "omitted fields keep prior values")

	entries, err := mem.GatewayLogs().ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.LogActionUpdated, entries[0].Action)
}

func TestUpdateGatewayIPConflict(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	createGateway(t, gateways, "GW-001", "10.0.0.1")
	gw2 := createGateway(t, gateways, "GW-002", "10.0.0.2")

	taken := "10.0.0.1"
	_, err := gateways.Update(ctx, gw2.ID, service.UpdateGatewayInput{IPv4Address: &taken})
	require.ErrorIs(t, err, service.ErrConflict)

	detail, err := gateways.Get(ctx, gw2.ID)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2", detail.IPv4Address, "stored address is unchanged")
}

func TestUpdateGatewayOwnIPIsNotAConflict(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-001", "10.0.0.1")

	same := "10.0.0.1"
	updated, err := gateways.Update(ctx, gw.ID, service.UpdateGatewayInput{IPv4Address: &same})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", updated.IPv4Address)
}

func TestUpdateGatewayNotFound(t *testing.T) {
	gateways, _, _, _ := newServices(t)

	name := "x"
	_, err := gateways.Update(context.Background(), "missing", service.UpdateGatewayInput{Name: &name})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAttachAndDetach(t *testing.T) {
	gateways, devices, _, mem := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-1", "10.0.0.1")
	dev := createDevice(t, devices, 42)

	view, err := gateways.Attach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)
	require.Equal(t, 1, view.DeviceCount)
	require.Equal(t, dev.ID, view.Devices[0].ID)

	attached, err := devices.ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)
	require.Equal(t, dev.ID, attached[0].ID)

	view, err = gateways.Detach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)
	require.Equal(t, 0, view.DeviceCount)

	attached, err = devices.ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Empty(t, attached)

	orphan, err := devices.Get(ctx, dev.ID)
	require.NoError(t, err)
	require.Nil(t, orphan.GatewayID)

	entries, err := mem.GatewayLogs().ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3) // CREATED, DEVICE_ATTACHED, DEVICE_DETACHED
	require.Equal(t, model.LogActionDeviceDetached, entries[0].Action)
	require.Equal(t, model.LogActionDeviceAttached, entries[1].Action)
}

func TestReattachAppendsFreshLogEntry(t *testing.T) {
	gateways, devices, _, mem := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-1", "10.0.0.1")
	dev := createDevice(t, devices, 42)

	_, err := gateways.Attach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)
	_, err = gateways.Detach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)
	_, err = gateways.Attach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)

	entries, err := mem.GatewayLogs().ListByGateway(ctx, gw.ID)
	require.NoError(t, err)

	var attachCount int
	for _, e := range entries {
		if e.Action == model.LogActionDeviceAttached {
			attachCount++
		}
	}
	require.Equal(t, 2, attachCount, "history is append-only, never overwritten")
}

func TestAttachDeviceLimit(t *testing.T) {
	gateways, devices, _, mem := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-1", "10.0.0.1")
	for i := 0; i < service.MaxAttachedDevices; i++ {
		dev := createDevice(t, devices, int64(i+1))
		_, err := gateways.Attach(ctx, gw.ID, dev.ID)
		require.NoError(t, err)
	}

	extra := createDevice(t, devices, 999)
	_, err := gateways.Attach(ctx, gw.ID, extra.ID)
	require.ErrorIs(t, err, service.ErrConflict)
	require.Contains(t, err.Error(), "device limit exceeded")

	count, err := mem.Devices().CountByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Equal(t, int64(service.MaxAttachedDevices), count, "count is unchanged")
}

func TestAttachAlreadyAssigned(t *testing.T) {
	gateways, devices, _, _ := newServices(t)
	ctx := context.Background()

	gw1 := createGateway(t, gateways, "GW-1", "10.0.0.1")
	gw2 := createGateway(t, gateways, "GW-2", "10.0.0.2")
	dev := createDevice(t, devices, 42)

	_, err := gateways.Attach(ctx, gw1.ID, dev.ID)
	require.NoError(t, err)

	_, err = gateways.Attach(ctx, gw2.ID, dev.ID)
	require.ErrorIs(t, err, service.ErrConflict)

	got, err := devices.Get(ctx, dev.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GatewayID)
	require.Equal(t, gw1.ID, *got.GatewayID, "assignment is unchanged")
}

func TestAttachPreconditionOrder(t *testing.T) {
	gateways, devices, _, _ := newServices(t)
	ctx := context.Background()

	// unknown gateway wins over unknown device
	_, err := gateways.Attach(ctx, "missing-gw", "missing-dev")
	require.ErrorIs(t, err, service.ErrNotFound)
	require.Contains(t, err.Error(), "gateway")

	gw := createGateway(t, gateways, "GW-1", "10.0.0.1")
	_, err = gateways.Attach(ctx, gw.ID, "missing-dev")
	require.ErrorIs(t, err, service.ErrNotFound)
	require.Contains(t, err.Error(), "device")

	// a full gateway rejects before looking at the device
	for i := 0; i < service.MaxAttachedDevices; i++ {
		dev := createDevice(t, devices, int64(i+1))
		_, err := gateways.Attach(ctx, gw.ID, dev.ID)
		require.NoError(t, err)
	}
	_, err = gateways.Attach(ctx, gw.ID, "missing-dev")
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestDetachNotAMember(t *testing.T) {
	gateways, devices, _, _ := newServices(t)
	ctx := context.Background()

	gw1 := createGateway(t, gateways, "GW-1", "10.0.0.1")
	gw2 := createGateway(t, gateways, "GW-2", "10.0.0.2")
	dev := createDevice(t, devices, 42)

	_, err := gateways.Attach(ctx, gw1.ID, dev.ID)
	require.NoError(t, err)

	// attached elsewhere reads the same as missing
	_, err = gateways.Detach(ctx, gw2.ID, dev.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	unassigned := createDevice(t, devices, 43)
	_, err = gateways.Detach(ctx, gw1.ID, unassigned.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteGatewayOrphansDevicesAndDropsLogs(t *testing.T) {
	gateways, devices, _, mem := newServices(t)
	ctx := context.Background()

	gw := createGateway(t, gateways, "GW-1", "10.0.0.1")
	var attached []*model.PeripheralDevice
	for i := 0; i < 3; i++ {
		dev := createDevice(t, devices, int64(i+1))
		_, err := gateways.Attach(ctx, gw.ID, dev.ID)
		require.NoError(t, err)
		attached = append(attached, dev)
	}

	require.NoError(t, gateways.Delete(ctx, gw.ID))

	_, err := gateways.Get(ctx, gw.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	for _, dev := range attached {
		got, err := devices.Get(ctx, dev.ID)
		require.NoError(t, err, "devices survive gateway deletion")
		require.Nil(t, got.GatewayID, "device is orphaned, not deleted")
	}

	entries, err := mem.GatewayLogs().ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Empty(t, entries, "log history is cascade-deleted with the gateway")
}

func TestDeleteGatewayNotFound(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	require.ErrorIs(t, gateways.Delete(context.Background(), "missing"), service.ErrNotFound)
}

func TestListLogsUnknownGateway(t *testing.T) {
	gateways, _, _, _ := newServices(t)
	_, err := gateways.ListLogs(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateGatewayScenario(t *testing.T) {
	// end to end: create gateway and device, attach, list, detach, list
	gateways, devices, _, _ := newServices(t)
	ctx := context.Background()

	gw, err := gateways.Create(ctx, service.CreateGatewayInput{
		SerialNumber: "GW-1",
		Name:         "A",
		IPv4Address:  "10.0.0.1",
	})
	require.NoError(t, err)

	dev, err := devices.Add(ctx, service.AddDeviceInput{
		UID:          42,
		Vendor:       "acme",
		DeviceTypeID: 1,
	})
	require.NoError(t, err)

	_, err = gateways.Attach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)

	list, err := devices.ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(42), list[0].UID)

	_, err = gateways.Detach(ctx, gw.ID, dev.ID)
	require.NoError(t, err)

	list, err = devices.ListByGateway(ctx, gw.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAttachCapacityAcrossGateways(t *testing.T) {
	// the cap is per gateway, not global
	gateways, devices, _, _ := newServices(t)
	ctx := context.Background()

	gw1 := createGateway(t, gateways, "GW-1", "10.0.0.1")
	gw2 := createGateway(t, gateways, "GW-2", "10.0.0.2")

	for i := 0; i < service.MaxAttachedDevices; i++ {
		dev := createDevice(t, devices, int64(i+1))
		_, err := gateways.Attach(ctx, gw1.ID, dev.ID)
		require.NoError(t, err)
	}

	dev := createDevice(t, devices, 100)
	view, err := gateways.Attach(ctx, gw2.ID, dev.ID)
	require.NoError(t, err)
	require.Equal(t, 1, view.DeviceCount)
}

func ExampleGatewayService_Create() {
	mem := store.NewMemory()
	svc := service.NewGatewayService(mem, zap.NewNop())

	gw, _ := svc.Create(context.Background(), service.CreateGatewayInput{
		SerialNumber: "GW-001-ABC123",
		Name:         "Main Building Gateway",
		IPv4Address:  "192.168.1.100",
	})
	fmt.Println(gw.SerialNumber, gw.Status)
	// Output: GW-001-ABC123 active
}
