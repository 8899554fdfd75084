// internal/app/features/repairs/handler.go
package repairs

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	repairstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/repairs"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Handler holds the dependencies of the service-ticket endpoints. As with
// orders, stores are constructed per request, bound to the caller's tenant.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Sanitize *bluemonday.Policy
}

// NewHandler constructs a repairs Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Sanitize: bluemonday.StrictPolicy()}
}

func (h *Handler) repairs(p *auth.Principal) *repairstore.Store {
	return repairstore.New(h.DB, p.Tenant)
}

func (h *Handler) orders(p *auth.Principal) *orderstore.Store {
	return orderstore.New(h.DB, p.Tenant)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "not signed in"))
	}
	return p, ok
}

func repairID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid repair id")
	}
	return id, nil
}

func (h *Handler) load(ctx context.Context, st *repairstore.Store, id primitive.ObjectID) (models.Repair, error) {
	rp, err := st.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Repair{}, apperr.New(apperr.NotFound, "repair not found")
		}
		return models.Repair{}, err
	}
	return rp, nil
}

func (h *Handler) save(ctx context.Context, st *repairstore.Store, rp models.Repair) (models.Repair, error) {
	saved, err := st.Replace(ctx, rp)
	if err != nil {
		switch {
		case errors.Is(err, repairstore.ErrRevisionConflict):
			return models.Repair{}, apperr.Wrap(apperr.Conflict, "repair was modified concurrently, reload and retry", err)
		case errors.Is(err, mongo.ErrNoDocuments):
			return models.Repair{}, apperr.New(apperr.NotFound, "repair not found")
		}
		return models.Repair{}, err
	}
	return saved, nil
}

// mutateTicket is the shared load-mutate-save skeleton for the single-ticket
// endpoints. mutate sees the freshly loaded ticket and may return a taxonomy
// error to abort without writing.
func (h *Handler) mutateTicket(w http.ResponseWriter, r *http.Request, mutate func(*models.Repair) error) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := repairID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	st := h.repairs(p)
	rp, err := h.load(ctx, st, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := mutate(&rp); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	saved, err := h.save(ctx, st, rp)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, saved)
}

// linkOrder resolves a manual order number to the matching order's id inside
// the caller's tenant. Unknown numbers are kept as free text with no link,
// the way the front office actually uses the field.
func (h *Handler) linkOrder(ctx context.Context, p *auth.Principal, number string) *primitive.ObjectID {
	if number == "" {
		return nil
	}
	o, err := h.orders(p).FindByManualNumber(ctx, number)
	if err != nil {
		return nil
	}
	return &o.ID
}
