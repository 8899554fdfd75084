// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a tenant-scoped catalog template (name, sku, defaults). It is
// reference data used when composing an order's product lines; it is not
// part of any order's lifecycle.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenantId"`
	Name        string             `bson:"name" json:"name"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Dimensions  string             `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Supplier    string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
