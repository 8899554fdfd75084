// internal/app/features/orders/handler.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	userstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Handler holds the dependencies of every order endpoint. Stores are not
// fields; they are constructed per request, bound to the caller's tenant.
type Handler struct {
	DB             *mongo.Database
	Log            *zap.Logger
	Sanitize       *bluemonday.Policy
	TrashRetention time.Duration
}

// NewHandler constructs an order Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, trashRetention time.Duration) *Handler {
	return &Handler{
		DB:             db,
		Log:            logger,
		Sanitize:       bluemonday.StrictPolicy(),
		TrashRetention: trashRetention,
	}
}

func (h *Handler) orders(p *auth.Principal) *orderstore.Store {
	return orderstore.New(h.DB, p.Tenant)
}

func (h *Handler) users(p *auth.Principal) *userstore.Store {
	return userstore.New(h.DB, p.Tenant)
}

// principal pulls the caller out of the request context. The signed-in
// middleware guarantees it is there; a miss is a wiring bug, not a user
// error, and renders as 401.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "not signed in"))
	}
	return p, ok
}

func orderID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid order id")
	}
	return id, nil
}

// load fetches one live order. Soft-deleted and missing orders are both
// not-found to everything except the trash endpoints.
func (h *Handler) load(ctx context.Context, st *orderstore.Store, id primitive.ObjectID) (models.Order, error) {
	o, err := st.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, apperr.New(apperr.NotFound, "order not found")
		}
		return models.Order{}, err
	}
	if o.IsDeleted() {
		return models.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	return o, nil
}

// save replaces the order through the revision check, mapping store
// sentinels onto the error taxonomy.
func (h *Handler) save(ctx context.Context, st *orderstore.Store, o models.Order) (models.Order, error) {
	saved, err := st.Replace(ctx, o)
	if err != nil {
		switch {
		case errors.Is(err, orderstore.ErrRevisionConflict):
			return models.Order{}, apperr.Wrap(apperr.Conflict, "order was modified concurrently, reload and retry", err)
		case errors.Is(err, orderstore.ErrDuplicateOrderNumber):
			return models.Order{}, apperr.Wrap(apperr.Conflict, "an order with this number already exists", err)
		case errors.Is(err, mongo.ErrNoDocuments):
			return models.Order{}, apperr.New(apperr.NotFound, "order not found")
		}
		return models.Order{}, err
	}
	return saved, nil
}
