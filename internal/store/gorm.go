package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gateway-service/internal/model"
)

// GormStore is the PostgreSQL-backed Store. The *gorm.DB it wraps must be
// opened with TranslateError so unique-index violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Gateways() GatewayRepository {
	return &gormGatewayRepo{gormRepo[model.Gateway, string]{db: s.db, orderBy: "created_at DESC"}}
}

func (s *GormStore) Devices() DeviceRepository {
	return &gormDeviceRepo{gormRepo[model.PeripheralDevice, string]{db: s.db, orderBy: "created_at DESC"}}
}

func (s *GormStore) DeviceTypes() DeviceTypeRepository {
	return &gormRepo[model.DeviceType, uint]{db: s.db, orderBy: "id ASC"}
}

func (s *GormStore) Tenants() TenantRepository {
	return &gormRepo[model.Tenant, string]{db: s.db, orderBy: "created_at DESC"}
}

func (s *GormStore) GatewayLogs() GatewayLogRepository {
	return &gormLogRepo{db: s.db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGorm(tx))
	})
}

// gormRepo implements Repository for any entity with an "id" column
type gormRepo[T any, ID any] struct {
	db      *gorm.DB
	orderBy string
}

func (r *gormRepo[T, ID]) FindByID(ctx context.Context, id ID) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormRepo[T, ID]) FindByField(ctx context.Context, field string, value any) (*T, error) {
	var rec T
	// map conditions so the column name is never interpolated into SQL
	if err := r.db.WithContext(ctx).Where(map[string]any{field: value}).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormRepo[T, ID]) List(ctx context.Context) ([]T, error) {
	var recs []T
	if err := r.db.WithContext(ctx).Order(r.orderBy).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *gormRepo[T, ID]) Create(ctx context.Context, rec *T) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *gormRepo[T, ID]) Save(ctx context.Context, rec *T) error {
	return translate(r.db.WithContext(ctx).Save(rec).Error)
}

func (r *gormRepo[T, ID]) Delete(ctx context.Context, rec *T) error {
	return r.db.WithContext(ctx).Delete(rec).Error
}

type gormGatewayRepo struct {
	gormRepo[model.Gateway, string]
}

func (r *gormGatewayRepo) ClearTenant(ctx context.Context, tenantID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Gateway{}).
		Where("tenant_id = ?", tenantID).
		Update("tenant_id", nil).Error
}

type gormDeviceRepo struct {
	gormRepo[model.PeripheralDevice, string]
}

func (r *gormDeviceRepo) ListByGateway(ctx context.Context, gatewayID string) ([]model.PeripheralDevice, error) {
	var devices []model.PeripheralDevice
	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		Order("created_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *gormDeviceRepo) CountByGateway(ctx context.Context, gatewayID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PeripheralDevice{}).
		Where("gateway_id = ?", gatewayID).
		Count(&count).Error
	return count, err
}

func (r *gormDeviceRepo) ClearGateway(ctx context.Context, gatewayID string) error {
	return r.db.WithContext(ctx).
		Model(&model.PeripheralDevice{}).
		Where("gateway_id = ?", gatewayID).
		Update("gateway_id", nil).Error
}

type gormLogRepo struct {
	db *gorm.DB
}

func (r *gormLogRepo) Create(ctx context.Context, entry *model.GatewayLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gormLogRepo) ListByGateway(ctx context.Context, gatewayID string) ([]model.GatewayLog, error) {
	var entries []model.GatewayLog
	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
