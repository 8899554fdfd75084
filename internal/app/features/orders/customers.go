// internal/app/features/orders/customers.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// HandleCustomers handles GET /orders/customers/list.
func (h *Handler) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	customers, err := h.orders(p).Customers(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if customers == nil {
		customers = []orderstore.Customer{}
	}
	httpjson.Respond(w, http.StatusOK, customers)
}

// HandleClientHistory handles GET /orders/customers/{name}/history.
func (h *Handler) HandleClientHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "client name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	history, err := h.orders(p).ClientHistory(ctx, name)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if history == nil {
		history = []models.Order{}
	}
	httpjson.Respond(w, http.StatusOK, history)
}

// HandleClientByPhone handles GET /orders/clients/lookup/{phone}: the most
// recent order with that phone number, for auto-filling new-order forms.
func (h *Handler) HandleClientByPhone(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	phone := strings.TrimSpace(chi.URLParam(r, "phone"))
	if phone == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "phone is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	o, err := h.orders(p).ClientByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "no client with that phone number"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{
		"clientName":    o.ClientName,
		"clientPhone":   o.ClientPhone,
		"clientEmail":   o.ClientEmail,
		"clientAddress": o.ClientAddress,
		"region":        o.Region,
	})
}
