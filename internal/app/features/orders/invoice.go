// internal/app/features/orders/invoice.go
package orders

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type invoiceRequest struct {
	IsIssued      bool     `json:"isIssued"`
	InvoiceNumber string   `json:"invoiceNumber"`
	Amount        *float64 `json:"amount"`
	IsPaid        bool     `json:"isPaid"`
}

// HandleFinalInvoice handles PUT /orders/{id}/final-invoice. When the
// invoice is issued and paid with a real amount and the current status can
// legally move to completed, the order completes in the same write with a
// second timeline entry. Terminal orders keep their status; the invoice
// fields themselves are still updated.
func (h *Handler) HandleFinalInvoice(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req invoiceRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Amount != nil {
		if *req.Amount < 0 || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "amount must be a non-negative number"))
			return
		}
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		o.FinalInvoice = models.FinalInvoice{
			IsIssued:      req.IsIssued,
			InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
			Amount:        req.Amount,
			IsPaid:        req.IsPaid,
		}
		o.AppendTimeline(o.Status, "Final invoice updated", p.Name, now)
		if o.FinalInvoice.CanClose() && o.Status.CanTransitionTo(models.StatusCompleted) {
			o.Status = models.StatusCompleted
			o.AppendTimeline(models.StatusCompleted,
				"Final invoice issued and paid; order completed", p.Name, now)
		}
		return nil
	}, p)
}
