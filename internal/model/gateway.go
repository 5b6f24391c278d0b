package model

import (
	"time"
)

// GatewayStatus is the lifecycle state of a gateway
type GatewayStatus string

const (
	GatewayStatusActive         GatewayStatus = "active"
	GatewayStatusInactive       GatewayStatus = "inactive"
	GatewayStatusDecommissioned GatewayStatus = "decommissioned"
)

// Valid reports whether s is a known gateway status
func (s GatewayStatus) Valid() bool {
	switch s {
	case GatewayStatusActive, GatewayStatusInactive, GatewayStatusDecommissioned:
		return true
	}
	return false
}

// Gateway represents a managed network gateway that aggregates peripheral devices
type Gateway struct {
	ID           string        `json:"id" gorm:"type:uuid;primarykey"`
	SerialNumber string        `json:"serial_number" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name         string        `json:"name" gorm:"type:varchar(255);not null"`
	IPv4Address  string        `json:"ipv4_address" gorm:"type:varchar(15);uniqueIndex;not null"`
	Status       GatewayStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Location     string        `json:"location,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	TenantID     *string       `json:"tenant_id,omitempty" gorm:"type:uuid;index"`

	// Devices reference the gateway and are orphaned, not deleted, with it
	Devices []PeripheralDevice `json:"devices,omitempty" gorm:"foreignKey:GatewayID;constraint:OnDelete:SET NULL"`
	// Log history is only meaningful in the context of its gateway
	Logs []GatewayLog `json:"-" gorm:"foreignKey:GatewayID;constraint:OnDelete:CASCADE"`
}
