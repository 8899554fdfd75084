// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent; errors
are aggregated so every problem is visible and startup can fail fast.

Uniqueness is always compound with tenant_id: order numbers, user emails,
and supplier names are unique per tenant, never globally.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureOrders(ctx, db); err != nil {
		problems = append(problems, "orders: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureSuppliers(ctx, db); err != nil {
		problems = append(problems, "suppliers: "+err.Error())
	}
	if err := ensureProducts(ctx, db); err != nil {
		problems = append(problems, "products: "+err.Error())
	}
	if err := ensureRepairs(ctx, db); err != nil {
		problems = append(problems, "repairs: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	return createMany(ctx, db.Collection("orders"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "manual_order_number", Value: 1}},
			Options: options.Index().SetName("uniq_tenant_order_number").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("tenant_status"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "deleted_at", Value: 1}},
			Options: options.Index().SetName("tenant_deleted_at"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("tenant_created_desc"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createMany(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_tenant_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("tenant_role"),
		},
	})
}

func ensureSuppliers(ctx context.Context, db *mongo.Database) error {
	return createMany(ctx, db.Collection("suppliers"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("uniq_tenant_supplier_name").SetUnique(true),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return createMany(ctx, db.Collection("products"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("tenant_product_name"),
		},
	})
}

func ensureRepairs(ctx context.Context, db *mongo.Database) error {
	return createMany(ctx, db.Collection("repairs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("tenant_repair_status"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("tenant_repair_created_desc"),
		},
	})
}

// createMany issues CreateMany and tolerates the "already exists under a
// different name/options" conflicts Mongo and DocumentDB report for
// re-runs against older deployments.
func createMany(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict") {
		return nil
	}
	return err
}
