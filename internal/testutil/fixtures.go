package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user directly into the collection.
func (f *Fixtures) CreateUser(ctx context.Context, ten tenant.ID, name, email string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		TenantID:  ten.String(),
		Name:      name,
		Email:     email,
		Role:      role,
		Language:  "en",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateInstaller inserts an installer user.
func (f *Fixtures) CreateInstaller(ctx context.Context, ten tenant.ID, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, ten, name, name+"@test.com", models.RoleInstaller)
}

// CreateOrder inserts an order directly, bypassing the store, with the
// given materials. Status defaults from the material list the same way
// order creation does.
func (f *Fixtures) CreateOrder(ctx context.Context, ten tenant.ID, number string, materials []models.MaterialLine) models.Order {
	f.t.Helper()

	now := time.Now().UTC()
	for i := range materials {
		if materials[i].ID.IsZero() {
			materials[i].ID = primitive.NewObjectID()
		}
		if materials[i].Category == "" {
			materials[i].Category = models.CategoryOther
		}
	}
	o := models.Order{
		ID:                primitive.NewObjectID(),
		TenantID:          ten.String(),
		ManualOrderNumber: number,
		ClientName:        "Test Client",
		ClientPhone:       "555-0100",
		Status:            models.InitialStatus(materials),
		Products:          []models.ProductLine{{ProductType: "window", Quantity: 2}},
		Materials:         materials,
		Revision:          1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	o.RecomputeProductionStatus()
	o.AppendTimeline(o.Status, "Order created", "fixture", now)

	if _, err := f.db.Collection("orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to create test order: %v", err)
	}
	return o
}

// Material builds a material line for CreateOrder.
func Material(category models.MaterialCategory, supplier string) models.MaterialLine {
	return models.MaterialLine{
		ID:       primitive.NewObjectID(),
		Category: category,
		Supplier: supplier,
		Quantity: 1,
	}
}
