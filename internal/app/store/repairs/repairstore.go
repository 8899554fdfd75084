// Package repairstore is the tenant-bound data access layer for service
// tickets. Like orderstore, every query carries the tenant filter and whole-
// document writes go through a revision check.
package repairstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// ErrRevisionConflict reports a write that lost an optimistic concurrency
// race; the caller should reload and retry.
var ErrRevisionConflict = errors.New("repair was modified concurrently")

// Store accesses the repairs collection for one tenant.
type Store struct {
	c      *mongo.Collection
	tenant tenant.ID
}

func New(db *mongo.Database, t tenant.ID) *Store {
	return &Store{c: db.Collection("repairs"), tenant: t}
}

func (s *Store) filter(extra bson.M) bson.M {
	f := bson.M{"tenant_id": s.tenant.String()}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// Create inserts a new ticket in the open state with its opening note.
func (s *Store) Create(ctx context.Context, rp models.Repair, actor string) (models.Repair, error) {
	now := time.Now().UTC()
	rp.ID = primitive.NewObjectID()
	rp.TenantID = s.tenant.String()
	rp.Status = models.RepairOpen
	rp.Revision = 1
	rp.CreatedAt = now
	rp.UpdatedAt = now
	rp.AddNote("Repair ticket created", actor, now)

	if _, err := s.c.InsertOne(ctx, rp); err != nil {
		return models.Repair{}, err
	}
	return rp, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Repair, error) {
	var rp models.Repair
	err := s.c.FindOne(ctx, s.filter(bson.M{"_id": id})).Decode(&rp)
	return rp, err
}

// List returns the tenant's tickets, newest first. status narrows to one
// lifecycle state when non-empty; q matches order number, client name, or
// problem text case-insensitively.
func (s *Store) List(ctx context.Context, status models.RepairStatus, q string) ([]models.Repair, error) {
	f := bson.M{}
	if status != "" {
		f["status"] = string(status)
	}
	if q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		f["$or"] = bson.A{
			bson.M{"manual_order_number": pattern},
			bson.M{"client_name": pattern},
			bson.M{"problem": pattern},
		}
	}

	cur, err := s.c.Find(ctx, s.filter(f),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Repair
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes back a whole ticket under the same revision discipline as
// orders: the write lands only if the stored revision matches the one read.
func (s *Store) Replace(ctx context.Context, rp models.Repair) (models.Repair, error) {
	read := rp.Revision
	rp.Revision = read + 1
	rp.UpdatedAt = time.Now().UTC()
	rp.TenantID = s.tenant.String()

	res, err := s.c.ReplaceOne(ctx, s.filter(bson.M{"_id": rp.ID, "revision": read}), rp)
	if err != nil {
		return models.Repair{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, s.filter(bson.M{"_id": rp.ID}))
		if err != nil {
			return models.Repair{}, err
		}
		if n == 0 {
			return models.Repair{}, mongo.ErrNoDocuments
		}
		return models.Repair{}, ErrRevisionConflict
	}
	return rp, nil
}
