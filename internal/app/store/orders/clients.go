// internal/app/store/orders/clients.go
//
// CRM reads derived from order history. There is no separate client
// collection; clients exist only as the contact fields on their orders.
package orderstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Customer is one client aggregated across their orders.
type Customer struct {
	Name          string    `bson:"_id" json:"name"`
	Phone         string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	LastOrderDate time.Time `bson:"last_order_date" json:"lastOrderDate"`
	TotalOrders   int64     `bson:"total_orders" json:"totalOrders"`
}

// Customers lists all clients grouped by name, most recent first.
func (s *Store) Customers(ctx context.Context) ([]Customer, error) {
	pipeline := []bson.M{
		{"$match": s.filter(bson.M{"deleted_at": nil})},
		{"$group": bson.M{
			"_id":             "$client_name",
			"phone":           bson.M{"$first": "$client_phone"},
			"address":         bson.M{"$first": "$client_address"},
			"last_order_date": bson.M{"$max": "$created_at"},
			"total_orders":    bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"last_order_date": -1}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Customer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClientHistory returns every order for one client name, newest first.
func (s *Store) ClientHistory(ctx context.Context, clientName string) ([]models.Order, error) {
	return s.find(ctx,
		s.filter(bson.M{"deleted_at": nil, "client_name": clientName}),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// ClientByPhone returns the most recent order carrying the given phone
// number, used to auto-fill client details on new-order forms.
func (s *Store) ClientByPhone(ctx context.Context, phone string) (models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx,
		s.filter(bson.M{"deleted_at": nil, "client_phone": phone}),
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&o)
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}
