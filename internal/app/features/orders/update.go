// internal/app/features/orders/update.go
//
// Section updates: each endpoint replaces one slice or group of fields on
// the order, leaving the rest of the document alone. All of them go through
// the revision check, so two office users editing different sections at the
// same moment cannot silently overwrite each other.
package orders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

const maxTakeListItems = 50

type clientRequest struct {
	ClientName    string `json:"clientName"`
	ClientPhone   string `json:"clientPhone"`
	ClientEmail   string `json:"clientEmail"`
	ClientAddress string `json:"clientAddress"`
}

// HandleClient handles PUT /orders/{id}/client.
func (h *Handler) HandleClient(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req clientRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "clientName is required"))
		return
	}

	h.updateSection(w, r, id, func(o *models.Order) error {
		o.ClientName = req.ClientName
		o.ClientPhone = strings.TrimSpace(req.ClientPhone)
		o.ClientEmail = strings.TrimSpace(req.ClientEmail)
		o.ClientAddress = h.Sanitize.Sanitize(req.ClientAddress)
		o.AppendTimeline(o.Status, "Client details updated", p.Name, time.Now().UTC())
		return nil
	}, p)
}

type generalRequest struct {
	ManualOrderNumber         string  `json:"manualOrderNumber"`
	Region                    string  `json:"region"`
	Deposit                   float64 `json:"deposit"`
	DepositPaid               bool    `json:"depositPaid"`
	EstimatedInstallationDays int     `json:"estimatedInstallationDays"`
}

// HandleGeneral handles PUT /orders/{id}/general. Changing the manual
// number re-runs the per-tenant duplicate check.
func (h *Handler) HandleGeneral(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req generalRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.ManualOrderNumber = strings.TrimSpace(req.ManualOrderNumber)
	if req.ManualOrderNumber == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "manualOrderNumber is required"))
		return
	}
	if req.EstimatedInstallationDays < 0 {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "estimatedInstallationDays cannot be negative"))
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		o.ManualOrderNumber = req.ManualOrderNumber
		o.Region = strings.TrimSpace(req.Region)
		o.Deposit = req.Deposit
		if req.DepositPaid && !o.DepositPaid {
			o.DepositPaidAt = &now
		}
		if !req.DepositPaid {
			o.DepositPaidAt = nil
		}
		o.DepositPaid = req.DepositPaid
		o.EstimatedInstallationDays = req.EstimatedInstallationDays
		o.AppendTimeline(o.Status, "Order general fields updated", p.Name, now)
		return nil
	}, p)
}

type productsRequest struct {
	Products []models.ProductLine `json:"products"`
}

// HandleProducts handles PUT /orders/{id}/products.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req productsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	for _, line := range req.Products {
		if line.Quantity < 0 {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "product quantity cannot be negative"))
			return
		}
	}

	h.updateSection(w, r, id, func(o *models.Order) error {
		o.Products = req.Products
		o.AppendTimeline(o.Status, "Products for client updated", p.Name, time.Now().UTC())
		return nil
	}, p)
}

type materialsRequest struct {
	Materials []models.MaterialLine `json:"materials"`
}

// HandleMaterials handles PUT /orders/{id}/materials. The list is replaced
// wholesale; procurement flags on lines that keep their id survive the
// replace, new lines get fresh ids, and the traffic light is recomputed.
func (h *Handler) HandleMaterials(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req materialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	for _, m := range req.Materials {
		if m.Category != "" && !validCategory(m.Category) {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation,
				"unknown material category "+string(m.Category)))
			return
		}
	}

	h.updateSection(w, r, id, func(o *models.Order) error {
		existing := make(map[string]models.MaterialLine, len(o.Materials))
		for _, m := range o.Materials {
			existing[m.ID.Hex()] = m
		}
		next := make([]models.MaterialLine, 0, len(req.Materials))
		for _, m := range req.Materials {
			if m.Category == "" {
				m.Category = models.CategoryOther
			}
			if prev, ok := existing[m.ID.Hex()]; ok && !m.ID.IsZero() {
				m.IsOrdered = prev.IsOrdered
				m.OrderedAt = prev.OrderedAt
				m.OrderedBy = prev.OrderedBy
				m.IsArrived = prev.IsArrived
				m.ArrivedAt = prev.ArrivedAt
			} else {
				m.ID = primitive.NewObjectID()
				m.IsOrdered = false
				m.OrderedAt = nil
				m.OrderedBy = ""
				m.IsArrived = false
				m.ArrivedAt = nil
			}
			next = append(next, m)
		}
		o.Materials = next
		o.RecomputeProductionStatus()
		o.AppendTimeline(o.Status, "Materials for factory updated", p.Name, time.Now().UTC())
		return nil
	}, p)
}

type takeListRequest struct {
	Items []models.TakeItem `json:"items"`
}

// HandleTakeList handles PUT /orders/{id}/take-list. Blank labels are
// dropped and the list is capped at 50 rows.
func (h *Handler) HandleTakeList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req takeListRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	items := make([]models.TakeItem, 0, len(req.Items))
	for _, item := range req.Items {
		item.Label = strings.TrimSpace(h.Sanitize.Sanitize(item.Label))
		if item.Label == "" {
			continue
		}
		items = append(items, item)
		if len(items) == maxTakeListItems {
			break
		}
	}

	h.updateSection(w, r, id, func(o *models.Order) error {
		o.InstallTakeList = items
		o.AppendTimeline(o.Status, "Installation checklist updated", p.Name, time.Now().UTC())
		return nil
	}, p)
}

// updateSection is the shared load-mutate-save skeleton for the section
// endpoints above. mutate sees the freshly loaded order and may return a
// taxonomy error to abort without writing.
func (h *Handler) updateSection(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, mutate func(*models.Order) error, p *auth.Principal) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	st := h.orders(p)
	o, err := h.load(ctx, st, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := mutate(&o); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	saved, err := h.save(ctx, st, o)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, saved)
}
