package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/store"
)

// DeviceService manages peripheral devices: CRUD, uid uniqueness and the
// device-type reference check. Gateway assignment is not mutable here; it
// only changes through the gateway attach/detach workflow.
type DeviceService struct {
	store store.Store
	log   *zap.Logger
}

func NewDeviceService(st store.Store, log *zap.Logger) *DeviceService {
	return &DeviceService{store: st, log: log}
}

// AddDeviceInput carries the fields accepted on device creation.
// A zero Status defaults to offline.
type AddDeviceInput struct {
	UID          int64
	Vendor       string
	Status       model.DeviceStatus
	DeviceTypeID uint
}

// UpdateDeviceInput carries the mutable device fields; nil means keep the
// stored value. The uid is immutable after creation.
type UpdateDeviceInput struct {
	Vendor       *string
	Status       *model.DeviceStatus
	DeviceTypeID *uint
}

func (s *DeviceService) Add(ctx context.Context, in AddDeviceInput) (*model.PeripheralDevice, error) {
	var created *model.PeripheralDevice
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Devices().FindByField(ctx, "uid", in.UID); err == nil {
			return conflictf("device with UID %d already exists", in.UID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := tx.DeviceTypes().FindByID(ctx, in.DeviceTypeID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("device type with ID %d not found", in.DeviceTypeID)
			}
			return err
		}

		status := in.Status
		if status == "" {
			status = model.DeviceStatusOffline
		}
		dev := &model.PeripheralDevice{
			ID:           uuid.NewString(),
			UID:          in.UID,
			Vendor:       in.Vendor,
			Status:       status,
			DeviceTypeID: in.DeviceTypeID,
		}
		if err := tx.Devices().Create(ctx, dev); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictf("device with UID %d already exists", in.UID)
			}
			return err
		}
		created = dev
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("device added",
		zap.String("device_id", created.ID),
		zap.Int64("uid", created.UID))
	return created, nil
}

func (s *DeviceService) Update(ctx context.Context, id string, in UpdateDeviceInput) (*model.PeripheralDevice, error) {
	var updated *model.PeripheralDevice
	err := s.store.InTx(ctx, func(tx store.Store) error {
		dev, err := tx.Devices().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("device with ID %s not found", id)
			}
			return err
		}
		if in.DeviceTypeID != nil {
			if _, err := tx.DeviceTypes().FindByID(ctx, *in.DeviceTypeID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return notFoundf("device type with ID %d not found", *in.DeviceTypeID)
				}
				return err
			}
			dev.DeviceTypeID = *in.DeviceTypeID
		}
		if in.Vendor != nil {
			dev.Vendor = *in.Vendor
		}
		if in.Status != nil {
			dev.Status = *in.Status
			if dev.Status == model.DeviceStatusOnline {
				now := time.Now()
				dev.LastSeenAt = &now
			}
		}
		if err := tx.Devices().Save(ctx, dev); err != nil {
			return err
		}
		updated = dev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes the device record; this is not a soft delete
func (s *DeviceService) Delete(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		dev, err := tx.Devices().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("device with ID %s not found", id)
			}
			return err
		}
		return tx.Devices().Delete(ctx, dev)
	})
}

func (s *DeviceService) Get(ctx context.Context, id string) (*model.PeripheralDevice, error) {
	dev, err := s.store.Devices().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("device with ID %s not found", id)
		}
		return nil, err
	}
	return dev, nil
}

func (s *DeviceService) List(ctx context.Context) ([]model.PeripheralDevice, error) {
	return s.store.Devices().List(ctx)
}

func (s *DeviceService) ListByGateway(ctx context.Context, gatewayID string) ([]model.PeripheralDevice, error) {
	return s.store.Devices().ListByGateway(ctx, gatewayID)
}

// ListDeviceTypes exposes the read-only reference data
func (s *DeviceService) ListDeviceTypes(ctx context.Context) ([]model.DeviceType, error) {
	return s.store.DeviceTypes().List(ctx)
}

func (s *DeviceService) GetDeviceType(ctx context.Context, id uint) (*model.DeviceType, error) {
	dt, err := s.store.DeviceTypes().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("device type with ID %d not found", id)
		}
		return nil, err
	}
	return dt, nil
}
