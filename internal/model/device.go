package model

import (
	"time"
)

// DeviceStatus is the reported state of a peripheral device
type DeviceStatus string

const (
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

// Valid reports whether s is a known device status
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusOnline, DeviceStatusOffline, DeviceStatusMaintenance:
		return true
	}
	return false
}

// PeripheralDevice represents a hardware endpoint optionally attached to one gateway.
// A nil GatewayID means the device is unassigned (orphaned).
type PeripheralDevice struct {
	ID           string       `json:"id" gorm:"type:uuid;primarykey"`
	UID          int64        `json:"uid" gorm:"uniqueIndex;not null"`
	Vendor       string       `json:"vendor" gorm:"type:varchar(255);not null"`
	Status       DeviceStatus `json:"status" gorm:"type:varchar(20);not null;default:'offline'"`
	CreatedAt    time.Time    `json:"created_at"`
	LastSeenAt   *time.Time   `json:"last_seen_at,omitempty"`
	GatewayID    *string      `json:"gateway_id,omitempty" gorm:"type:uuid;index"`
	DeviceTypeID uint         `json:"device_type_id" gorm:"not null"`

	DeviceType *DeviceType `json:"-" gorm:"foreignKey:DeviceTypeID;constraint:OnDelete:RESTRICT"`
}

// DeviceType is read-only reference data seeded at migration time
type DeviceType struct {
	ID          uint   `json:"id" gorm:"primarykey"`
	Name        string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}
