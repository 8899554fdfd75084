// internal/app/store/orders/procurement.go
package orderstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// PendingMaterial is one not-yet-ordered material line flattened out of
// its order for the purchasing worklist.
type PendingMaterial struct {
	OrderID       primitive.ObjectID      `bson:"order_id" json:"orderId"`
	OrderNumber   string                  `bson:"order_number" json:"orderNumber"`
	ClientName    string                  `bson:"client_name" json:"clientName"`
	OrderDate     time.Time               `bson:"order_date" json:"orderDate"`
	MasterPlanURL string                  `bson:"master_plan_url,omitempty" json:"masterPlanUrl,omitempty"`
	MaterialID    primitive.ObjectID      `bson:"material_id" json:"materialId"`
	Category      models.MaterialCategory `bson:"category" json:"category"`
	Description   string                  `bson:"description,omitempty" json:"description,omitempty"`
	Supplier      string                  `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Quantity      int                     `bson:"quantity" json:"quantity"`
}

// masterPlanURL projects the url of the first master_plan file, if any.
func masterPlanURL() bson.M {
	return bson.M{"$let": bson.M{
		"vars": bson.M{"mp": bson.M{"$arrayElemAt": bson.A{
			bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$files", bson.A{}}},
				"as":    "f",
				"cond":  bson.M{"$eq": bson.A{"$$f.type", string(models.FileMasterPlan)}},
			}},
			0,
		}}},
		"in": "$$mp.url",
	}}
}

// PendingMaterials returns all not-yet-ordered material lines across live,
// unfinished orders, oldest order first.
func (s *Store) PendingMaterials(ctx context.Context) ([]PendingMaterial, error) {
	pipeline := []bson.M{
		{"$match": s.filter(bson.M{
			"deleted_at": nil,
			"status":     bson.M{"$nin": bson.A{string(models.StatusCompleted), string(models.StatusCancelled)}},
		})},
		{"$unwind": "$materials"},
		{"$match": bson.M{"materials.is_ordered": false}},
		{"$sort": bson.M{"created_at": 1}},
		{"$project": bson.M{
			"_id":             0,
			"order_id":        "$_id",
			"order_number":    "$manual_order_number",
			"client_name":     "$client_name",
			"order_date":      "$created_at",
			"master_plan_url": masterPlanURL(),
			"material_id":     "$materials._id",
			"category":        "$materials.category",
			"description":     "$materials.description",
			"supplier":        "$materials.supplier",
			"quantity":        "$materials.quantity",
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []PendingMaterial
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrackedMaterial is one ordered material line in the per-supplier
// tracking checklist.
type TrackedMaterial struct {
	OrderID       primitive.ObjectID `bson:"order_id" json:"orderId"`
	OrderNumber   string             `bson:"order_number" json:"orderNumber"`
	ClientName    string             `bson:"client_name" json:"clientName"`
	MasterPlanURL string             `bson:"master_plan_url,omitempty" json:"masterPlanUrl,omitempty"`
	MaterialID    primitive.ObjectID `bson:"material_id" json:"materialId"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	OrderedAt     *time.Time         `bson:"ordered_at,omitempty" json:"orderedAt,omitempty"`
	OrderedBy     string             `bson:"ordered_by,omitempty" json:"orderedBy,omitempty"`
	IsArrived     bool               `bson:"is_arrived" json:"isArrived"`
	ArrivedAt     *time.Time         `bson:"arrived_at,omitempty" json:"arrivedAt,omitempty"`
}

// SupplierGroup is the purchasing checklist bucket for one supplier.
type SupplierGroup struct {
	Supplier string            `bson:"_id" json:"supplier"`
	Items    []TrackedMaterial `bson:"items" json:"items"`
}

// PurchasingStatus groups every ordered material by supplier. Within a
// group, not-yet-arrived items sort first, then by most recent order date.
// That ordering is a display contract the purchasing screen depends on.
func (s *Store) PurchasingStatus(ctx context.Context) ([]SupplierGroup, error) {
	pipeline := []bson.M{
		{"$match": s.filter(bson.M{
			"deleted_at": nil,
			"status":     bson.M{"$nin": bson.A{string(models.StatusCompleted)}},
		})},
		{"$unwind": "$materials"},
		{"$match": bson.M{"materials.is_ordered": true}},
		{"$sort": bson.D{
			{Key: "materials.is_arrived", Value: 1},
			{Key: "materials.ordered_at", Value: -1},
		}},
		{"$group": bson.M{
			"_id": "$materials.supplier",
			"items": bson.M{"$push": bson.M{
				"order_id":        "$_id",
				"order_number":    "$manual_order_number",
				"client_name":     "$client_name",
				"master_plan_url": masterPlanURL(),
				"material_id":     "$materials._id",
				"description":     "$materials.description",
				"quantity":        "$materials.quantity",
				"ordered_at":      "$materials.ordered_at",
				"ordered_by":      "$materials.ordered_by",
				"is_arrived":      "$materials.is_arrived",
				"arrived_at":      "$materials.arrived_at",
			}},
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []SupplierGroup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
