// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Store is the tenant-bound order repository. Every filter it builds
// carries the tenant tag, so a cross-tenant read or write is not
// expressible through this type; an order in another tenant behaves
// exactly like one that does not exist.
type Store struct {
	c      *mongo.Collection
	tenant tenant.ID
}

var (
	ErrDuplicateOrderNumber = errors.New("an order with this number already exists")
	ErrRevisionConflict     = errors.New("order was modified concurrently")
)

// New binds an order store to one tenant.
func New(db *mongo.Database, t tenant.ID) *Store {
	return &Store{c: db.Collection("orders"), tenant: t}
}

func (s *Store) filter(extra bson.M) bson.M {
	f := bson.M{"tenant_id": s.tenant.String()}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// Create inserts a new order: assigns ids and timestamps, derives the
// initial status from the material list when the caller did not set one,
// recomputes the traffic light, and appends the creation timeline entry.
func (s *Store) Create(ctx context.Context, o models.Order, actor string) (models.Order, error) {
	now := time.Now().UTC()

	o.ID = primitive.NewObjectID()
	o.TenantID = s.tenant.String()
	o.Revision = 1
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Materials {
		if o.Materials[i].ID.IsZero() {
			o.Materials[i].ID = primitive.NewObjectID()
		}
	}
	if o.Status == "" {
		o.Status = models.InitialStatus(o.Materials)
	}
	o.RecomputeProductionStatus()
	o.AppendTimeline(o.Status, "Order created", actor, now)

	if _, err := s.c.InsertOne(ctx, o); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Order{}, ErrDuplicateOrderNumber
		}
		return models.Order{}, err
	}
	return o, nil
}

// GetByID returns one order within the tenant, deleted or not. Callers
// that only want live orders must check IsDeleted.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, s.filter(bson.M{"_id": id})).Decode(&o)
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// ListActive returns non-deleted orders, newest first.
func (s *Store) ListActive(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx,
		s.filter(bson.M{"deleted_at": nil}),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// Search matches q case-insensitively against order number, client name,
// client phone, and region. Active orders only, capped at 50 rows.
func (s *Store) Search(ctx context.Context, q string) ([]models.Order, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return s.find(ctx,
		s.filter(bson.M{
			"deleted_at": nil,
			"$or": bson.A{
				bson.M{"manual_order_number": pattern},
				bson.M{"client_name": pattern},
				bson.M{"client_phone": pattern},
				bson.M{"region": pattern},
			},
		}),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(50))
}

// ListDeleted returns soft-deleted orders awaiting purge, most recently
// deleted first.
func (s *Store) ListDeleted(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx,
		s.filter(bson.M{"deleted_at": bson.M{"$ne": nil}}),
		options.Find().SetSort(bson.D{{Key: "deleted_at", Value: -1}}))
}

// FindByManualNumber looks an order up by its human-entered number.
func (s *Store) FindByManualNumber(ctx context.Context, n string) (models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, s.filter(bson.M{"manual_order_number": n})).Decode(&o)
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// Replace writes back a whole aggregate under optimistic concurrency: the
// write only lands if the stored revision still equals the one the caller
// read. A miss on a live document reports ErrRevisionConflict so the
// read-modify-write can be retried.
func (s *Store) Replace(ctx context.Context, o models.Order) (models.Order, error) {
	read := o.Revision
	o.Revision = read + 1
	o.UpdatedAt = time.Now().UTC()
	o.TenantID = s.tenant.String() // never trust the document's own tag

	res, err := s.c.ReplaceOne(ctx, s.filter(bson.M{"_id": o.ID, "revision": read}), o)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Order{}, ErrDuplicateOrderNumber
		}
		return models.Order{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, s.filter(bson.M{"_id": o.ID}))
		if err != nil {
			return models.Order{}, err
		}
		if n == 0 {
			return models.Order{}, mongo.ErrNoDocuments
		}
		return models.Order{}, ErrRevisionConflict
	}
	return o, nil
}

// SoftDelete stamps deleted_at. Deleting an already-deleted order is a
// no-op so the retention clock keeps its original start.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		s.filter(bson.M{"_id": id, "deleted_at": nil}),
		bson.M{
			"$set": bson.M{"deleted_at": now.UTC(), "updated_at": now.UTC()},
			"$inc": bson.M{"revision": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, s.filter(bson.M{"_id": id}))
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		// already deleted
	}
	return nil
}

// Restore clears deleted_at, but only while the order is still inside the
// retention window. A purged or never-deleted id reports ErrNoDocuments,
// indistinguishable from an order that never existed.
func (s *Store) Restore(ctx context.Context, id primitive.ObjectID, now time.Time, retention time.Duration) error {
	cutoff := now.UTC().Add(-retention)
	res, err := s.c.UpdateOne(ctx,
		s.filter(bson.M{"_id": id, "deleted_at": bson.M{"$ne": nil, "$gt": cutoff}}),
		bson.M{
			"$unset": bson.M{"deleted_at": ""},
			"$set":   bson.M{"updated_at": now.UTC()},
			"$inc":   bson.M{"revision": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PurgeExpired permanently removes orders whose deleted_at is older than
// the retention window. One failing record does not abort the sweep; the
// count of purged orders and any per-record errors are both reported.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	cutoff := now.UTC().Add(-retention)
	cur, err := s.c.Find(ctx,
		s.filter(bson.M{"deleted_at": bson.M{"$ne": nil, "$lte": cutoff}}),
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	var purged int64
	var errs []error
	for _, id := range ids {
		res, err := s.c.DeleteOne(ctx, s.filter(bson.M{"_id": id}))
		if err != nil {
			errs = append(errs, fmt.Errorf("purge %s: %w", id.Hex(), err))
			continue
		}
		purged += res.DeletedCount
	}
	return purged, errors.Join(errs...)
}

// MarkMaterialOrdered stamps one material line as ordered. This is a
// targeted field update; the revision still advances so concurrent whole-
// document writers notice.
func (s *Store) MarkMaterialOrdered(ctx context.Context, orderID, materialID primitive.ObjectID, by string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		s.filter(bson.M{"_id": orderID, "materials._id": materialID}),
		bson.M{
			"$set": bson.M{
				"materials.$.is_ordered": true,
				"materials.$.ordered_at": at.UTC(),
				"materials.$.ordered_by": by,
				"updated_at":             time.Now().UTC(),
			},
			"$inc": bson.M{"revision": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Order, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of orders matching extra within the tenant.
func (s *Store) Count(ctx context.Context, extra bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, s.filter(extra))
}
