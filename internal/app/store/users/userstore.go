// internal/app/store/users/userstore.go
package userstore

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

// Store is the tenant-bound user repository.
type Store struct {
	c      *mongo.Collection
	tenant tenant.ID
}

var ErrDuplicateEmail = errors.New("a user with this email already exists")

// New binds a user store to one tenant.
func New(db *mongo.Database, t tenant.ID) *Store {
	return &Store{c: db.Collection("users"), tenant: t}
}

func (s *Store) filter(extra bson.M) bson.M {
	f := bson.M{"tenant_id": s.tenant.String()}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// Create inserts a new user. Emails are stored lowercased so the unique
// index catches case-variant duplicates.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.TenantID = s.tenant.String()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, s.filter(bson.M{"_id": id})).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, s.filter(bson.M{
		"email": strings.ToLower(strings.TrimSpace(email)),
	})).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// List returns all users in the tenant, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	return s.find(ctx, s.filter(bson.M{}),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// ListInstallers returns the users who can be assigned to install jobs.
func (s *Store) ListInstallers(ctx context.Context) ([]models.User, error) {
	return s.find(ctx, s.filter(bson.M{"role": models.RoleInstaller}),
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// Update replaces the mutable fields of an existing user.
func (s *Store) Update(ctx context.Context, u models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := s.c.UpdateOne(ctx, s.filter(bson.M{"_id": u.ID}), bson.M{"$set": bson.M{
		"name":          u.Name,
		"email":         u.Email,
		"role":          u.Role,
		"language":      u.Language,
		"password_hash": u.PasswordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
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

// Count reports the number of users in the tenant matching extra.
func (s *Store) Count(ctx context.Context, extra bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, s.filter(extra))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
