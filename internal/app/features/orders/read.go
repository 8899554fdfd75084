// internal/app/features/orders/read.go
package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// HandleList handles GET /orders. Soft-deleted orders never appear here.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.orders(p).ListActive(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleSearch handles GET /orders/search?q=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "q query parameter is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.orders(p).Search(ctx, q)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleGet handles GET /orders/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	o, err := h.load(ctx, h.orders(p), id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, o)
}
