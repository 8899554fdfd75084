// internal/app/features/orders/trash.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// HandleSoftDelete handles DELETE /orders/{id}. The order is flagged, not
// removed; deleting an already-deleted order is a quiet no-op.
func (h *Handler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.orders(p).SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "order not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleDeletedList handles GET /orders/deleted.
func (h *Handler) HandleDeletedList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.orders(p).ListDeleted(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleRestore handles POST /orders/{id}/restore. Orders past their
// retention window cannot come back; the purge sweep may already have
// taken them, and behaving as if they were gone keeps the two paths
// consistent.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	st := h.orders(p)
	if err := st.Restore(ctx, id, time.Now().UTC(), h.TrashRetention); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "order not found in trash"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	o, err := h.load(ctx, st, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, o)
}
