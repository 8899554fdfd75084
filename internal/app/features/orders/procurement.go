// internal/app/features/orders/procurement.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// arriveRetries bounds the optimistic-concurrency loop in HandleArriveItem.
// Two clerks toggling different lines on the same order collide at most a
// couple of times before both land.
const arriveRetries = 3

// HandlePendingMaterials handles GET /orders/procurement/pending.
func (h *Handler) HandlePendingMaterials(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	items, err := h.orders(p).PendingMaterials(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if items == nil {
		items = []orderstore.PendingMaterial{}
	}
	httpjson.Respond(w, http.StatusOK, items)
}

// HandlePurchasingStatus handles GET /orders/procurement/status. Groups are
// keyed by supplier; inside each group not-yet-arrived lines come first,
// then most recently ordered.
func (h *Handler) HandlePurchasingStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	groups, err := h.orders(p).PurchasingStatus(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if groups == nil {
		groups = []orderstore.SupplierGroup{}
	}
	httpjson.Respond(w, http.StatusOK, groups)
}

type materialItemRequest struct {
	OrderID    string `json:"orderId"`
	MaterialID string `json:"materialId"`
}

func (req materialItemRequest) ids() (primitive.ObjectID, primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID,
			apperr.New(apperr.Validation, "invalid orderId")
	}
	mid, err := primitive.ObjectIDFromHex(req.MaterialID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID,
			apperr.New(apperr.Validation, "invalid materialId")
	}
	return oid, mid, nil
}

// HandleOrderItem handles POST /orders/procurement/order-item: marks one
// material line as ordered, stamping who and when. Already-ordered lines
// are left alone.
func (h *Handler) HandleOrderItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req materialItemRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	oid, mid, err := req.ids()
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	st := h.orders(p)
	if err := st.MarkMaterialOrdered(ctx, oid, mid, p.Name, time.Now().UTC()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "order or material not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	o, err := h.load(ctx, st, oid)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, o)
}

// HandleArriveItem handles POST /orders/procurement/arrive-item: toggles a
// material line's arrival, recomputes the per-category traffic light, and
// auto-advances materials_pending orders once everything has arrived. The
// whole sequence is a read-recompute-write under the revision check,
// retried a bounded number of times on conflict.
func (h *Handler) HandleArriveItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req materialItemRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	oid, mid, err := req.ids()
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	st := h.orders(p)
	var saved models.Order
	for attempt := 0; ; attempt++ {
		o, err := h.load(ctx, st, oid)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		if err := toggleArrival(&o, mid, p.Name); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		saved, err = h.save(ctx, st, o)
		if err == nil {
			break
		}
		if errors.Is(err, orderstore.ErrRevisionConflict) && attempt < arriveRetries {
			continue
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, saved)
}

// toggleArrival flips one line's arrival flag and applies the derived
// consequences. The advance out of materials_pending is one-way: a later
// un-toggle never moves the status back.
func toggleArrival(o *models.Order, materialID primitive.ObjectID, actor string) error {
	now := time.Now().UTC()
	found := false
	for i := range o.Materials {
		if o.Materials[i].ID != materialID {
			continue
		}
		found = true
		if o.Materials[i].IsArrived {
			o.Materials[i].IsArrived = false
			o.Materials[i].ArrivedAt = nil
		} else {
			o.Materials[i].IsArrived = true
			o.Materials[i].ArrivedAt = &now
		}
		break
	}
	if !found {
		return apperr.New(apperr.NotFound, "material not found on order")
	}

	o.RecomputeProductionStatus()
	if o.Status == models.StatusMaterialsPending && o.AllMaterialsArrived() {
		o.Status = models.StatusProductionPending
		o.AppendTimeline(models.StatusProductionPending, "All materials arrived", actor, now)
	}
	return nil
}
