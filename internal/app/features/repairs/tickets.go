// internal/app/features/repairs/tickets.go
package repairs

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

const defaultWorkDays = 1

type createRepairRequest struct {
	ManualOrderNumber string     `json:"manualOrderNumber"`
	ClientName        string     `json:"clientName"`
	ClientPhone       string     `json:"clientPhone"`
	ClientAddress     string     `json:"clientAddress"`
	Region            string     `json:"region"`
	ContactedAt       *time.Time `json:"contactedAt"`
	Problem           string     `json:"problem"`
	WarrantyStatus    string     `json:"warrantyStatus"`
	PaymentNote       string     `json:"paymentNote"`
	EstimatedWorkDays int        `json:"estimatedWorkDays"`
	VisitTime         string     `json:"visitTime"`
}

// warranty folds the wire value onto the two known states; anything that is
// not explicitly out of warranty is treated as covered.
func warranty(s string) models.WarrantyStatus {
	if s == string(models.OutOfWarranty) {
		return models.OutOfWarranty
	}
	return models.InWarranty
}

// HandleCreate handles POST /repairs: opens a service ticket, linking it to
// an order when the given manual number matches one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req createRepairRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Problem = strings.TrimSpace(h.Sanitize.Sanitize(req.Problem))
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.Problem == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "problem is required"))
		return
	}
	if req.ClientName == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "clientName is required"))
		return
	}
	if req.EstimatedWorkDays <= 0 {
		req.EstimatedWorkDays = defaultWorkDays
	}
	contacted := time.Now().UTC()
	if req.ContactedAt != nil {
		contacted = req.ContactedAt.UTC()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	number := strings.TrimSpace(req.ManualOrderNumber)
	rp := models.Repair{
		OrderID:           h.linkOrder(ctx, p, number),
		ManualOrderNumber: number,
		ClientName:        req.ClientName,
		ClientPhone:       strings.TrimSpace(req.ClientPhone),
		ClientAddress:     h.Sanitize.Sanitize(req.ClientAddress),
		Region:            strings.TrimSpace(req.Region),
		ContactedAt:       contacted,
		Problem:           req.Problem,
		WarrantyStatus:    warranty(req.WarrantyStatus),
		PaymentNote:       strings.TrimSpace(req.PaymentNote),
		EstimatedWorkDays: req.EstimatedWorkDays,
		VisitTime:         strings.TrimSpace(req.VisitTime),
	}

	created, err := h.repairs(p).Create(ctx, rp, p.Name)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, created)
}

// HandleList handles GET /repairs?status=&q=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	status := models.RepairStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "unknown repair status "+string(status)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.repairs(p).List(ctx, status, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Repair{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleGet handles GET /repairs/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := repairID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	rp, err := h.load(ctx, h.repairs(p), id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, rp)
}

type updateRepairRequest struct {
	ManualOrderNumber *string    `json:"manualOrderNumber"`
	ClientPhone       *string    `json:"clientPhone"`
	ClientAddress     *string    `json:"clientAddress"`
	ContactedAt       *time.Time `json:"contactedAt"`
	Problem           *string    `json:"problem"`
	WarrantyStatus    *string    `json:"warrantyStatus"`
	PaymentNote       *string    `json:"paymentNote"`
	EstimatedWorkDays *int       `json:"estimatedWorkDays"`
	VisitTime         *string    `json:"visitTime"`
	Status            *string    `json:"status"`
}

// HandleUpdate handles PUT /repairs/{id}: a partial update where only the
// fields present in the body change. The status field accepts any known
// repair state; the shortcut endpoints below cover the common moves.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req updateRepairRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Status != nil && !models.RepairStatus(*req.Status).IsValid() {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "unknown repair status "+*req.Status))
		return
	}

	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		if req.Problem != nil {
			problem := strings.TrimSpace(h.Sanitize.Sanitize(*req.Problem))
			if problem == "" {
				return apperr.New(apperr.Validation, "problem cannot be blank")
			}
			rp.Problem = problem
		}
		if req.WarrantyStatus != nil {
			rp.WarrantyStatus = warranty(*req.WarrantyStatus)
		}
		if req.PaymentNote != nil {
			rp.PaymentNote = strings.TrimSpace(*req.PaymentNote)
		}
		if req.ClientPhone != nil {
			rp.ClientPhone = strings.TrimSpace(*req.ClientPhone)
		}
		if req.ClientAddress != nil {
			rp.ClientAddress = h.Sanitize.Sanitize(*req.ClientAddress)
		}
		if req.VisitTime != nil {
			rp.VisitTime = strings.TrimSpace(*req.VisitTime)
		}
		if req.ContactedAt != nil {
			rp.ContactedAt = req.ContactedAt.UTC()
		}
		if req.EstimatedWorkDays != nil && *req.EstimatedWorkDays > 0 {
			rp.EstimatedWorkDays = *req.EstimatedWorkDays
		}
		if req.Status != nil {
			rp.Status = models.RepairStatus(*req.Status)
		}
		if req.ManualOrderNumber != nil {
			number := strings.TrimSpace(*req.ManualOrderNumber)
			rp.ManualOrderNumber = number
			rp.OrderID = h.linkOrder(r.Context(), p, number)
		}
		rp.AddNote("Repair updated", p.Name, now)
		return nil
	})
}
