package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/store"
)

// TenantService manages the owning organizations. Deleting a tenant clears
// the reference on its gateways; it never deletes them.
type TenantService struct {
	store store.Store
	log   *zap.Logger
}

func NewTenantService(st store.Store, log *zap.Logger) *TenantService {
	return &TenantService{store: st, log: log}
}

type CreateTenantInput struct {
	Name         string
	ContactEmail string
}

func (s *TenantService) Create(ctx context.Context, in CreateTenantInput) (*model.Tenant, error) {
	var created *model.Tenant
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Tenants().FindByField(ctx, "name", in.Name); err == nil {
			return conflictf("tenant with name %s already exists", in.Name)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		t := &model.Tenant{
			ID:           uuid.NewString(),
			Name:         in.Name,
			ContactEmail: in.ContactEmail,
		}
		if err := tx.Tenants().Create(ctx, t); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictf("tenant with name %s already exists", in.Name)
			}
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tenant created",
		zap.String("tenant_id", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := s.store.Tenants().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("tenant with ID %s not found", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *TenantService) List(ctx context.Context) ([]model.Tenant, error) {
	return s.store.Tenants().List(ctx)
}

func (s *TenantService) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		t, err := tx.Tenants().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundf("tenant with ID %s not found", id)
			}
			return err
		}
		if err := tx.Gateways().ClearTenant(ctx, t.ID); err != nil {
			return err
		}
		return tx.Tenants().Delete(ctx, t)
	})
	if err != nil {
		return err
	}
	s.log.Info("tenant deleted", zap.String("tenant_id", id))
	return nil
}
