// internal/app/features/orders/status.go
package orders

import (
	"context"
	"net/http"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

// HandleStatus handles PUT /orders/{id}/status. Only transitions listed in
// the table are accepted; everything else is a Validation rejection that
// names both states, and the document is untouched.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !req.Status.IsValid() || req.Status.IsLegacy() {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation,
			"unknown status "+string(req.Status)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	st := h.orders(p)
	o, err := h.load(ctx, st, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !o.Status.CanTransitionTo(req.Status) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation,
			"cannot move order from "+string(o.Status)+" to "+string(req.Status)))
		return
	}

	o.Status = req.Status
	o.AppendTimeline(req.Status, h.Sanitize.Sanitize(req.Note), p.Name, time.Now().UTC())

	saved, err := h.save(ctx, st, o)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, saved)
}
