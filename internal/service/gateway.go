package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/store"
)

// MaxAttachedDevices is the hard cap on devices attached to one gateway
const MaxAttachedDevices = 10

// GatewayService manages gateways: CRUD with serial/IP uniqueness, the
// attach/detach workflow with the device cap, orphaning on delete, and the
// audit log entry written for every mutation.
type GatewayService struct {
	store store.Store
	log   *zap.Logger
}

func NewGatewayService(st store.Store, log *zap.Logger) *GatewayService {
	return &GatewayService{store: st, log: log}
}

// CreateGatewayInput carries the fields accepted on gateway creation.
// A zero Status defaults to active.
type CreateGatewayInput struct {
	SerialNumber string
	Name         string
	IPv4Address  string
	Status       model.GatewayStatus
	Location     string
	TenantID     *string
}

// UpdateGatewayInput carries the mutable gateway fields; nil means keep the
// stored value. The serial number is immutable after creation.
type UpdateGatewayInput struct {
	Name        *string
	IPv4Address *string
	Status      *model.GatewayStatus
	Location    *string
}

// GatewayDetail is the gateway view returned by read and attach/detach
// operations: the record plus its currently attached devices.
type GatewayDetail struct {
	model.Gateway
	Devices     []model.PeripheralDevice `json:"devices"`
	DeviceCount int                      `json:"device_count"`
}

func (s *GatewayService) Create(ctx context.Context, in CreateGatewayInput) (*model.Gateway, error) {
	var created *model.Gateway
	err := s.store.InTx(ctx, func(tx store.Store) error {
		// serial number is checked before the IP address; the first failing
		// check names the conflict
		if _, err := tx.Gateways().FindByField(ctx, "serial_number", in.SerialNumber); err == nil {
			return conflictf("gateway with serial number %s already exists", in.SerialNumber)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := tx.Gateways().FindByField(ctx, "ipv4_address", in.IPv4Address); err == nil {
			return conflictf("gateway with IP address %s already exists", in.IPv4Address)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if in.TenantID != nil {
			if _, err := tx.Tenants().FindByID(ctx, *in.TenantID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return notFoundf("tenant with ID %s not found", *in.TenantID)
				}
				return err
			}
		}

		status := in.Status
		if status == "" {
			status = model.GatewayStatusActive
		}
		gw := &model.Gateway{
			ID:           uuid.NewString(),
			SerialNumber: in.SerialNumber,
			Name:         in.Name,
			IPv4Address:  in.IPv4Address,
			Status:       status,
			Location:     in.Location,
			TenantID:     in.TenantID,
		}
		if err := tx.Gateways().Create(ctx, gw); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// a concurrent create slipped past the pre-checks; the unique
				// index is the backstop
				return conflictf("gateway with serial number %s already exists", in.SerialNumber)
			}
			return err
		}
		s.appendLog(ctx, tx, gw.ID, model.LogActionCreated, map[string]any{"gateway": gw})
		created = gw
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("gateway created",
		zap.String("gateway_id", created.ID),
		zap.String("serial_number", created.SerialNumber))
	return created, nil
}

func (s *GatewayService) Get(ctx context.Context, id string) (*GatewayDetail, error) {
	gw, err := s.store.Gateways().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("gateway with ID %s not found", id)
		}
		return nil, err
	}
	return s.detail(ctx, s.store, gw)
}

func (s *GatewayService) List(ctx context.Context) ([]model.Gateway, error) {
	return s.store.Gateways().List(ctx)
}

func (s *GatewayService) Update(ctx context.Context, id string, in UpdateGatewayInput) (*model.Gateway, error) {
	var updated *model.Gateway
	err := s.store.InTx(ctx, func(tx store.Store) error {
		gw, err := tx.Gateways().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("gateway with ID %s not found", id)
			}
			return err
		}
		if in.IPv4Address != nil && *in.IPv4Address != gw.IPv4Address {
			existing, err := tx.Gateways().FindByField(ctx, "ipv4_address", *in.IPv4Address)
			if err == nil && existing.ID != gw.ID {
				return conflictf("gateway with IP address %s already exists", *in.IPv4Address)
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			gw.IPv4Address = *in.IPv4Address
		}
		if in.Name != nil {
			gw.Name = *in.Name
		}
		if in.Status != nil {
			gw.Status = *in.Status
		}
		if in.Location != nil {
			gw.Location = *in.Location
		}
		if err := tx.Gateways().Save(ctx, gw); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictf("gateway with IP address %s already exists", gw.IPv4Address)
			}
			return err
		}
		s.appendLog(ctx, tx, gw.ID, model.LogActionUpdated, map[string]any{"gateway": gw})
		updated = gw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a gateway. The DELETED entry is written before the row is
// removed so the log insert still resolves its foreign key; the cascade then
// wipes the gateway's whole history. Attached devices are orphaned, never
// deleted.
func (s *GatewayService) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		gw, err := tx.Gateways().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("gateway with ID %s not found", id)
			}
			return err
		}
		s.appendLog(ctx, tx, gw.ID, model.LogActionDeleted, map[string]any{"gateway": gw})
		if err := tx.Devices().ClearGateway(ctx, gw.ID); err != nil {
			return err
		}
		return tx.Gateways().Delete(ctx, gw)
	})
	if err != nil {
		return err
	}
	s.log.Info("gateway deleted", zap.String("gateway_id", id))
	return nil
}

// Attach assigns an unassigned device to a gateway. Preconditions are
// checked in order: gateway exists, capacity, device exists, device free.
func (s *GatewayService) Attach(ctx context.Context, gatewayID, deviceID string) (*GatewayDetail, error) {
	var view *GatewayDetail
	err := s.store.InTx(ctx, func(tx store.Store) error {
		gw, err := tx.Gateways().FindByID(ctx, gatewayID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("gateway with ID %s not found", gatewayID)
			}
			return err
		}
		count, err := tx.Devices().CountByGateway(ctx, gatewayID)
		if err != nil {
			return err
		}
		if count >= MaxAttachedDevices {
			return conflictf("device limit exceeded: gateway %s already has %d devices", gatewayID, MaxAttachedDevices)
		}
		dev, err := tx.Devices().FindByID(ctx, deviceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("device with ID %s not found", deviceID)
			}
			return err
		}
		if dev.GatewayID != nil {
			return conflictf("device with ID %s is already assigned to a gateway", deviceID)
		}

		dev.GatewayID = &gw.ID
		if err := tx.Devices().Save(ctx, dev); err != nil {
			return err
		}
		s.appendLog(ctx, tx, gw.ID, model.LogActionDeviceAttached, map[string]any{
			"device_id":  dev.ID,
			"device_uid": dev.UID,
		})
		view, err = s.detail(ctx, tx, gw)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("device attached",
		zap.String("gateway_id", gatewayID),
		zap.String("device_id", deviceID))
	return view, nil
}

// Detach unassigns a device from the gateway it is attached to. A device
// that exists but belongs elsewhere is reported the same as a missing one.
func (s *GatewayService) Detach(ctx context.Context, gatewayID, deviceID string) (*GatewayDetail, error) {
	var view *GatewayDetail
	err := s.store.InTx(ctx, func(tx store.Store) error {
		gw, err := tx.Gateways().FindByID(ctx, gatewayID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("gateway with ID %s not found", gatewayID)
			}
			return err
		}
		dev, err := tx.Devices().FindByID(ctx, deviceID)
		if err != nil || dev.GatewayID == nil || *dev.GatewayID != gw.ID {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			return notFoundf("device with ID %s not found in gateway %s", deviceID, gatewayID)
		}

		dev.GatewayID = nil
		if err := tx.Devices().Save(ctx, dev); err != nil {
			return err
		}
		s.appendLog(ctx, tx, gw.ID, model.LogActionDeviceDetached, map[string]any{
			"device_id":  dev.ID,
			"device_uid": dev.UID,
		})
		view, err = s.detail(ctx, tx, gw)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("device detached",
		zap.String("gateway_id", gatewayID),
		zap.String("device_id", deviceID))
	return view, nil
}

// ListLogs returns the gateway's audit history, most recent first
func (s *GatewayService) ListLogs(ctx context.Context, gatewayID string) ([]model.GatewayLog, error) {
	if _, err := s.store.Gateways().FindByID(ctx, gatewayID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("gateway with ID %s not found", gatewayID)
		}
		return nil, err
	}
	return s.store.GatewayLogs().ListByGateway(ctx, gatewayID)
}

// appendLog records an audit entry for a gateway mutation. The append is
// best-effort: a failure is logged and does not fail the primary mutation.
func (s *GatewayService) appendLog(ctx context.Context, tx store.Store, gatewayID, action string, details map[string]any) {
	entry := &model.GatewayLog{
		GatewayID: gatewayID,
		Action:    action,
		Details:   details,
	}
	if err := tx.GatewayLogs().Create(ctx, entry); err != nil {
		s.log.Warn("audit log append failed",
			zap.String("gateway_id", gatewayID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *GatewayService) detail(ctx context.Context, tx store.Store, gw *model.Gateway) (*GatewayDetail, error) {
	devices, err := tx.Devices().ListByGateway(ctx, gw.ID)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []model.PeripheralDevice{}
	}
	return &GatewayDetail{
		Gateway:     *gw,
		Devices:     devices,
		DeviceCount: len(devices),
	}, nil
}
