// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Store is the tenant-bound product catalog repository.
type Store struct {
	c      *mongo.Collection
	tenant tenant.ID
}

// New binds a product store to one tenant.
func New(db *mongo.Database, t tenant.ID) *Store {
	return &Store{c: db.Collection("products"), tenant: t}
}

func (s *Store) filter(extra bson.M) bson.M {
	f := bson.M{"tenant_id": s.tenant.String()}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.TenantID = s.tenant.String()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, s.filter(bson.M{"_id": id})).Decode(&p)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// List returns the catalog sorted by name, optionally restricted to one
// category.
func (s *Store) List(ctx context.Context, category string) ([]models.Product, error) {
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

	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches a case-insensitive substring against name, sku and color.
func (s *Store) Search(ctx context.Context, q string) ([]models.Product, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	cur, err := s.c.Find(ctx, s.filter(bson.M{"$or": []bson.M{
		{"name": re},
		{"sku": re},
		{"color": re},
	}}), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(50))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, p models.Product) error {
	res, err := s.c.UpdateOne(ctx, s.filter(bson.M{"_id": p.ID}), bson.M{"$set": bson.M{
		"name":        strings.TrimSpace(p.Name),
		"sku":         p.SKU,
		"category":    p.Category,
		"description": p.Description,
		"dimensions":  p.Dimensions,
		"color":       p.Color,
		"supplier":    p.Supplier,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
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
