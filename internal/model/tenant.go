package model

import (
	"time"
)

// Tenant is an owning organization for one or more gateways
type Tenant struct {
	ID           string    `json:"id" gorm:"type:uuid;primarykey"`
	Name         string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`

	// Deleting a tenant clears the reference on its gateways, it never deletes them
	Gateways []Gateway `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:SET NULL"`
}
