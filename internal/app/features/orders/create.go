// internal/app/features/orders/create.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"strings"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type createOrderRequest struct {
	ManualOrderNumber string                `json:"manualOrderNumber"`
	ClientName        string                `json:"clientName"`
	ClientPhone       string                `json:"clientPhone"`
	ClientEmail       string                `json:"clientEmail"`
	ClientAddress     string                `json:"clientAddress"`
	Region            string                `json:"region"`
	Products          []models.ProductLine  `json:"products"`
	Materials         []models.MaterialLine `json:"materials"`

	Deposit                   float64 `json:"deposit"`
	DepositPaid               bool    `json:"depositPaid"`
	EstimatedInstallationDays int     `json:"estimatedInstallationDays"`
}

func (req *createOrderRequest) validate() error {
	req.ManualOrderNumber = strings.TrimSpace(req.ManualOrderNumber)
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ManualOrderNumber == "" {
		return apperr.New(apperr.Validation, "manualOrderNumber is required")
	}
	if req.ClientName == "" {
		return apperr.New(apperr.Validation, "clientName is required")
	}
	for _, p := range req.Products {
		if p.Quantity < 0 {
			return apperr.New(apperr.Validation, "product quantity cannot be negative")
		}
	}
	for _, m := range req.Materials {
		if m.Category != "" && !validCategory(m.Category) {
			return apperr.New(apperr.Validation, "unknown material category "+string(m.Category))
		}
	}
	return nil
}

func validCategory(c models.MaterialCategory) bool {
	for _, known := range models.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// HandleCreate handles POST /orders.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	materials := make([]models.MaterialLine, 0, len(req.Materials))
	for _, m := range req.Materials {
		// Procurement flags are never accepted from the creation payload.
		m.IsOrdered = false
		m.OrderedAt = nil
		m.OrderedBy = ""
		m.IsArrived = false
		m.ArrivedAt = nil
		if m.Category == "" {
			m.Category = models.CategoryOther
		}
		materials = append(materials, m)
	}

	o := models.Order{
		ManualOrderNumber:         req.ManualOrderNumber,
		ClientName:                req.ClientName,
		ClientPhone:               strings.TrimSpace(req.ClientPhone),
		ClientEmail:               strings.TrimSpace(req.ClientEmail),
		ClientAddress:             h.Sanitize.Sanitize(req.ClientAddress),
		Region:                    strings.TrimSpace(req.Region),
		Products:                  req.Products,
		Materials:                 materials,
		Deposit:                   req.Deposit,
		DepositPaid:               req.DepositPaid,
		EstimatedInstallationDays: req.EstimatedInstallationDays,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	created, err := h.orders(p).Create(ctx, o, p.Name)
	if err != nil {
		if errors.Is(err, orderstore.ErrDuplicateOrderNumber) {
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Conflict, "an order with this number already exists", err))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, created)
}
