// internal/app/store/suppliers/supplierstore.go
package supplierstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Store is the tenant-bound supplier repository.
type Store struct {
	c      *mongo.Collection
	tenant tenant.ID
}

var ErrDuplicateName = errors.New("a supplier with this name already exists")

// New binds a supplier store to one tenant.
func New(db *mongo.Database, t tenant.ID) *Store {
	return &Store{c: db.Collection("suppliers"), tenant: t}
}

func (s *Store) filter(extra bson.M) bson.M {
	f := bson.M{"tenant_id": s.tenant.String()}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func (s *Store) Create(ctx context.Context, sp models.Supplier) (models.Supplier, error) {
	now := time.Now().UTC()
	sp.ID = primitive.NewObjectID()
	sp.TenantID = s.tenant.String()
	sp.Name = strings.TrimSpace(sp.Name)
	sp.CreatedAt = now
	sp.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sp); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Supplier{}, ErrDuplicateName
		}
		return models.Supplier{}, err
	}
	return sp, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Supplier, error) {
	var sp models.Supplier
	err := s.c.FindOne(ctx, s.filter(bson.M{"_id": id})).Decode(&sp)
	if err != nil {
		return models.Supplier{}, err
	}
	return sp, nil
}

// List returns the tenant's suppliers sorted by name. When category is
// non-empty the list is restricted to that material category.
func (s *Store) List(ctx context.Context, category models.MaterialCategory) ([]models.Supplier, error) {
	extra := bson.M{}
	if category != "" {
		extra["category"] = category
	}
	cur, err := s.c.Find(ctx, s.filter(extra),
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Supplier
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, sp models.Supplier) error {
	res, err := s.c.UpdateOne(ctx, s.filter(bson.M{"_id": sp.ID}), bson.M{"$set": bson.M{
		"name":           strings.TrimSpace(sp.Name),
		"contact_person": sp.ContactPerson,
		"phone":          sp.Phone,
		"email":          sp.Email,
		"category":       sp.Category,
		"lead_time_days": sp.LeadTimeDays,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, s.filter(bson.M{"_id": id}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
