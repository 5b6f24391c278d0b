package model

import (
	"time"
)

// Audit log actions recorded for gateway-affecting mutations
const (
	LogActionCreated        = "CREATED"
	LogActionUpdated        = "UPDATED"
	LogActionDeleted        = "DELETED"
	LogActionDeviceAttached = "DEVICE_ATTACHED"
	LogActionDeviceDetached = "DEVICE_DETACHED"
)

// GatewayLog is an immutable audit record of a gateway mutation.
// Entries are append-only and removed only by the cascade when the
// owning gateway is deleted.
type GatewayLog struct {
	ID        uint64         `json:"id" gorm:"primarykey"`
	GatewayID string         `json:"gateway_id" gorm:"type:uuid;index;not null"`
	Action    string         `json:"action" gorm:"type:varchar(50);not null"`
	Details   map[string]any `json:"details" gorm:"serializer:json;type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at"`
}
