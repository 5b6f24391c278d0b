package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gateway-service/internal/model"
)

// Memory is an in-memory Store used when the service runs without a
// database and by the test suite. It mirrors the relational behavior the
// gorm store gets for free: unique indexes, timestamp refresh, FK SET NULL
// on tenant delete and log cascade on gateway delete.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	tenants      map[string]model.Tenant
	tenantOrder  []string
	gateways     map[string]model.Gateway
	gatewayOrder []string
	devices      map[string]model.PeripheralDevice
	deviceOrder  []string
	deviceTypes  map[uint]model.DeviceType
	typeOrder    []uint
	nextTypeID   uint
	logs         []model.GatewayLog
	nextLogID    uint64
}

// NewMemory returns an empty store pre-populated with the reference device
// types that the SQL migration seeds.
func NewMemory() *Memory {
	m := &Memory{
		tenants:     make(map[string]model.Tenant),
		gateways:    make(map[string]model.Gateway),
		devices:     make(map[string]model.PeripheralDevice),
		deviceTypes: make(map[uint]model.DeviceType),
		nextTypeID:  1,
		nextLogID:   1,
	}
	for _, dt := range SeedDeviceTypes() {
		_ = m.DeviceTypes().Create(context.Background(), &dt)
	}
	return m
}

// SeedDeviceTypes lists the reference device types created at migration time
func SeedDeviceTypes() []model.DeviceType {
	return []model.DeviceType{
		{Name: "sensor", Description: "Environmental or data collection sensors"},
		{Name: "actuator", Description: "Control devices that perform physical actions"},
		{Name: "controller", Description: "Logic control and processing devices"},
		{Name: "display", Description: "Information display devices"},
		{Name: "communication", Description: "Communication and networking devices"},
	}
}

func (m *Memory) Gateways() GatewayRepository       { return &memGatewayRepo{m} }
func (m *Memory) Devices() DeviceRepository         { return &memDeviceRepo{m} }
func (m *Memory) DeviceTypes() DeviceTypeRepository { return &memDeviceTypeRepo{m} }
func (m *Memory) Tenants() TenantRepository         { return &memTenantRepo{m} }
func (m *Memory) GatewayLogs() GatewayLogRepository { return &memLogRepo{m} }

// InTx serializes whole transactions; there is no rollback, so callers must
// perform all checks before the first write, which every service operation
// does.
func (m *Memory) InTx(ctx context.Context, fn func(tx Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

// gateways

type memGatewayRepo struct{ m *Memory }

func (r *memGatewayRepo) FindByID(_ context.Context, id string) (*model.Gateway, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	gw, ok := r.m.gateways[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &gw, nil
}

func (r *memGatewayRepo) FindByField(_ context.Context, field string, value any) (*model.Gateway, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, gw := range r.m.gateways {
		var match bool
		switch field {
		case "serial_number":
			match = gw.SerialNumber == value
		case "ipv4_address":
			match = gw.IPv4Address == value
		default:
			return nil, fmt.Errorf("gateway: unknown lookup field %q", field)
		}
		if match {
			found := gw
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memGatewayRepo) List(_ context.Context) ([]model.Gateway, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.Gateway, 0, len(r.m.gatewayOrder))
	for i := len(r.m.gatewayOrder) - 1; i >= 0; i-- {
		out = append(out, r.m.gateways[r.m.gatewayOrder[i]])
	}
	return out, nil
}

func (r *memGatewayRepo) Create(_ context.Context, rec *model.Gateway) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, gw := range r.m.gateways {
		if gw.SerialNumber == rec.SerialNumber || gw.IPv4Address == rec.IPv4Address {
			return ErrDuplicate
		}
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.m.gateways[rec.ID] = *rec
	r.m.gatewayOrder = append(r.m.gatewayOrder, rec.ID)
	return nil
}

func (r *memGatewayRepo) Save(_ context.Context, rec *model.Gateway) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.gateways[rec.ID]; !ok {
		return ErrNotFound
	}
	for id, gw := range r.m.gateways {
		if id != rec.ID && gw.IPv4Address == rec.IPv4Address {
			return ErrDuplicate
		}
	}
	rec.UpdatedAt = time.Now()
	r.m.gateways[rec.ID] = *rec
	return nil
}

func (r *memGatewayRepo) Delete(_ context.Context, rec *model.Gateway) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.gateways, rec.ID)
	for i, id := range r.m.gatewayOrder {
		if id == rec.ID {
			r.m.gatewayOrder = append(r.m.gatewayOrder[:i], r.m.gatewayOrder[i+1:]...)
			break
		}
	}
	// emulate the ON DELETE CASCADE on gateway_logs
	kept := r.m.logs[:0]
	for _, entry := range r.m.logs {
		if entry.GatewayID != rec.ID {
			kept = append(kept, entry)
		}
	}
	r.m.logs = kept
	return nil
}

func (r *memGatewayRepo) ClearTenant(_ context.Context, tenantID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, gw := range r.m.gateways {
		if gw.TenantID != nil && *gw.TenantID == tenantID {
			gw.TenantID = nil
			r.m.gateways[id] = gw
		}
	}
	return nil
}

// devices

type memDeviceRepo struct{ m *Memory }

func (r *memDeviceRepo) FindByID(_ context.Context, id string) (*model.PeripheralDevice, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	dev, ok := r.m.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &dev, nil
}

func (r *memDeviceRepo) FindByField(_ context.Context, field string, value any) (*model.PeripheralDevice, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if field != "uid" {
		return nil, fmt.Errorf("device: unknown lookup field %q", field)
	}
	uid, ok := value.(int64)
	if !ok {
		return nil, fmt.Errorf("device: uid lookup needs int64, got %T", value)
	}
	for _, dev := range r.m.devices {
		if dev.UID == uid {
			found := dev
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memDeviceRepo) List(_ context.Context) ([]model.PeripheralDevice, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.PeripheralDevice, 0, len(r.m.deviceOrder))
	for i := len(r.m.deviceOrder) - 1; i >= 0; i-- {
		out = append(out, r.m.devices[r.m.deviceOrder[i]])
	}
	return out, nil
}

func (r *memDeviceRepo) Create(_ context.Context, rec *model.PeripheralDevice) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, dev := range r.m.devices {
		if dev.UID == rec.UID {
			return ErrDuplicate
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.m.devices[rec.ID] = *rec
	r.m.deviceOrder = append(r.m.deviceOrder, rec.ID)
	return nil
}

func (r *memDeviceRepo) Save(_ context.Context, rec *model.PeripheralDevice) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.devices[rec.ID]; !ok {
		return ErrNotFound
	}
	r.m.devices[rec.ID] = *rec
	return nil
}

func (r *memDeviceRepo) Delete(_ context.Context, rec *model.PeripheralDevice) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.devices, rec.ID)
	for i, id := range r.m.deviceOrder {
		if id == rec.ID {
			r.m.deviceOrder = append(r.m.deviceOrder[:i], r.m.deviceOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memDeviceRepo) ListByGateway(_ context.Context, gatewayID string) ([]model.PeripheralDevice, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []model.PeripheralDevice
	for i := len(r.m.deviceOrder) - 1; i >= 0; i-- {
		dev := r.m.devices[r.m.deviceOrder[i]]
		if dev.GatewayID != nil && *dev.GatewayID == gatewayID {
			out = append(out, dev)
		}
	}
	return out, nil
}

func (r *memDeviceRepo) CountByGateway(_ context.Context, gatewayID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var count int64
	for _, dev := range r.m.devices {
		if dev.GatewayID != nil && *dev.GatewayID == gatewayID {
			count++
		}
	}
	return count, nil
}

func (r *memDeviceRepo) ClearGateway(_ context.Context, gatewayID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, dev := range r.m.devices {
		if dev.GatewayID != nil && *dev.GatewayID == gatewayID {
			dev.GatewayID = nil
			r.m.devices[id] = dev
		}
	}
	return nil
}

// device types

type memDeviceTypeRepo struct{ m *Memory }

func (r *memDeviceTypeRepo) FindByID(_ context.Context, id uint) (*model.DeviceType, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	dt, ok := r.m.deviceTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &dt, nil
}

func (r *memDeviceTypeRepo) FindByField(_ context.Context, field string, value any) (*model.DeviceType, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if field != "name" {
		return nil, fmt.Errorf("device type: unknown lookup field %q", field)
	}
	for _, dt := range r.m.deviceTypes {
		if dt.Name == value {
			found := dt
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memDeviceTypeRepo) List(_ context.Context) ([]model.DeviceType, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.DeviceType, 0, len(r.m.typeOrder))
	for _, id := range r.m.typeOrder {
		out = append(out, r.m.deviceTypes[id])
	}
	return out, nil
}

func (r *memDeviceTypeRepo) Create(_ context.Context, rec *model.DeviceType) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, dt := range r.m.deviceTypes {
		if dt.Name == rec.Name {
			return ErrDuplicate
		}
	}
	if rec.ID == 0 {
		rec.ID = r.m.nextTypeID
		r.m.nextTypeID++
	}
	r.m.deviceTypes[rec.ID] = *rec
	r.m.typeOrder = append(r.m.typeOrder, rec.ID)
	return nil
}

func (r *memDeviceTypeRepo) Save(_ context.Context, rec *model.DeviceType) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.deviceTypes[rec.ID]; !ok {
		return ErrNotFound
	}
	r.m.deviceTypes[rec.ID] = *rec
	return nil
}

func (r *memDeviceTypeRepo) Delete(_ context.Context, rec *model.DeviceType) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.deviceTypes, rec.ID)
	for i, id := range r.m.typeOrder {
		if id == rec.ID {
			r.m.typeOrder = append(r.m.typeOrder[:i], r.m.typeOrder[i+1:]...)
			break
		}
	}
	return nil
}

// tenants

type memTenantRepo struct{ m *Memory }

func (r *memTenantRepo) FindByID(_ context.Context, id string) (*model.Tenant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memTenantRepo) FindByField(_ context.Context, field string, value any) (*model.Tenant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if field != "name" {
		return nil, fmt.Errorf("tenant: unknown lookup field %q", field)
	}
	for _, t := range r.m.tenants {
		if t.Name == value {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memTenantRepo) List(_ context.Context) ([]model.Tenant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.Tenant, 0, len(r.m.tenantOrder))
	for i := len(r.m.tenantOrder) - 1; i >= 0; i-- {
		out = append(out, r.m.tenants[r.m.tenantOrder[i]])
	}
	return out, nil
}

func (r *memTenantRepo) Create(_ context.Context, rec *model.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.tenants {
		if t.Name == rec.Name {
			return ErrDuplicate
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.m.tenants[rec.ID] = *rec
	r.m.tenantOrder = append(r.m.tenantOrder, rec.ID)
	return nil
}

func (r *memTenantRepo) Save(_ context.Context, rec *model.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tenants[rec.ID]; !ok {
		return ErrNotFound
	}
	r.m.tenants[rec.ID] = *rec
	return nil
}

func (r *memTenantRepo) Delete(_ context.Context, rec *model.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.tenants, rec.ID)
	for i, id := range r.m.tenantOrder {
		if id == rec.ID {
			r.m.tenantOrder = append(r.m.tenantOrder[:i], r.m.tenantOrder[i+1:]...)
			break
		}
	}
	return nil
}

// gateway logs

type memLogRepo struct{ m *Memory }

func (r *memLogRepo) Create(_ context.Context, entry *model.GatewayLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.gateways[entry.GatewayID]; !ok {
		// emulate the FK: log rows cannot reference a missing gateway
		return fmt.Errorf("gateway log: gateway %s does not exist", entry.GatewayID)
	}
	entry.ID = r.m.nextLogID
	r.m.nextLogID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.m.logs = append(r.m.logs, *entry)
	return nil
}

func (r *memLogRepo) ListByGateway(_ context.Context, gatewayID string) ([]model.GatewayLog, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []model.GatewayLog
	for i := len(r.m.logs) - 1; i >= 0; i-- {
		if r.m.logs[i].GatewayID == gatewayID {
			out = append(out, r.m.logs[i])
		}
	}
	return out, nil
}
