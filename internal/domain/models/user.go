// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOffice     Role = "office"
	RoleProduction Role = "production"
	RoleInstaller  Role = "installer"
)

// ValidRole reports whether r is a member of the role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleOffice, RoleProduction, RoleInstaller:
		return true
	}
	return false
}

// User is an authenticated principal. Email is unique within a tenant, not
// globally; the same address may exist under two different tenants.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     string             `bson:"tenant_id" json:"tenantId"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Language     string             `bson:"language" json:"language"` // "en" or "es"
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
