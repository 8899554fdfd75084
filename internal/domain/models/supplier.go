// internal/domain/models/supplier.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supplier is a tenant-scoped vendor record. Order materials reference
// suppliers by name (a soft reference, not an enforced foreign key).
type Supplier struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID      string             `bson:"tenant_id" json:"tenantId"`
	Name          string             `bson:"name" json:"name"`
	ContactPerson string             `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Category      MaterialCategory   `bson:"category" json:"category"`
	LeadTimeDays  int                `bson:"lead_time_days" json:"leadTimeDays"` // average supply time
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}
