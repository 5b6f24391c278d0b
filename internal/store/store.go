// Package store is the persistence adapter for the fleet entities.
// Services talk to the Store interface only; the gorm implementation backs
// production, the memory implementation backs DB-less dev mode and tests.
package store

import (
	"context"
	"errors"

	"gateway-service/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	// It is the storage-level backstop for races that pass the pre-checks.
	ErrDuplicate = errors.New("duplicate record")
)

// Repository is the generic persistence contract shared by every record type
type Repository[T any, ID any] interface {
	FindByID(ctx context.Context, id ID) (*T, error)
	FindByField(ctx context.Context, field string, value any) (*T, error)
	// List returns all records, most recently created first
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec *T) error
	Save(ctx context.Context, rec *T) error
	Delete(ctx context.Context, rec *T) error
}

type GatewayRepository interface {
	Repository[model.Gateway, string]
	// ClearTenant removes the tenant reference from all gateways owned by tenantID
	ClearTenant(ctx context.Context, tenantID string) error
}

type DeviceRepository interface {
	Repository[model.PeripheralDevice, string]
	ListByGateway(ctx context.Context, gatewayID string) ([]model.PeripheralDevice, error)
	CountByGateway(ctx context.Context, gatewayID string) (int64, error)
	// ClearGateway orphans every device attached to gatewayID
	ClearGateway(ctx context.Context, gatewayID string) error
}

type DeviceTypeRepository interface {
	Repository[model.DeviceType, uint]
}

type TenantRepository interface {
	Repository[model.Tenant, string]
}

// GatewayLogRepository is append-only from the core's perspective
type GatewayLogRepository interface {
	Create(ctx context.Context, entry *model.GatewayLog) error
	ListByGateway(ctx context.Context, gatewayID string) ([]model.GatewayLog, error)
}

// Store groups the per-entity repositories and provides transactional
// grouping. Check-then-write sequences must run inside InTx so concurrent
// callers cannot interleave between the existence check and the write.
type Store interface {
	Gateways() GatewayRepository
	Devices() DeviceRepository
	DeviceTypes() DeviceTypeRepository
	Tenants() TenantRepository
	GatewayLogs() GatewayLogRepository

	// InTx runs fn against a transactional view of the store. An error from
	// fn rolls back every write made through that view.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
