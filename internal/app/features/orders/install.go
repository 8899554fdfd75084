// internal/app/features/orders/install.go
package orders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// HandleTeamList handles GET /orders/install/team-list: the installers who
// can be put on a crew.
func (h *Handler) HandleTeamList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	installers, err := h.users(p).ListInstallers(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if installers == nil {
		installers = []models.User{}
	}
	httpjson.Respond(w, http.StatusOK, installers)
}

type scheduleRequest struct {
	OrderID           string     `json:"orderId"`
	Installers        []string   `json:"installers"`
	InstallDateStart  *time.Time `json:"installDateStart"`
	InstallDateEnd    *time.Time `json:"installDateEnd"`
	InstallationNotes string     `json:"installationNotes"`
}

func parseInstallerIDs(raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid installer id "+s)
		}
		out = append(out, id)
	}
	return out, nil
}

// installStatus derives the sub-lifecycle state from crew presence.
func installStatus(installers []primitive.ObjectID) models.OrderStatus {
	if len(installers) > 0 {
		return models.StatusScheduled
	}
	return models.StatusInProgress
}

// HandleSchedule handles POST /orders/install/schedule: assigns the crew
// and date window for one order and moves it into the scheduling
// sub-lifecycle. The window must not end before it starts.
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	oid, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid orderId"))
		return
	}
	if req.InstallDateStart != nil && req.InstallDateEnd != nil &&
		req.InstallDateEnd.Before(*req.InstallDateStart) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "installDateEnd cannot be before installDateStart"))
		return
	}
	installers, err := parseInstallerIDs(req.Installers)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, oid, func(o *models.Order) error {
		next := installStatus(installers)
		if o.Status != next && !o.Status.CanTransitionTo(next) {
			return apperr.New(apperr.Validation,
				"cannot move order from "+string(o.Status)+" to "+string(next))
		}
		o.Installers = installers
		o.InstallDateStart = req.InstallDateStart
		o.InstallDateEnd = req.InstallDateEnd
		o.InstallationNotes = strings.TrimSpace(h.Sanitize.Sanitize(req.InstallationNotes))
		if o.Status != next {
			o.Status = next
			o.AppendTimeline(next, "Installation scheduled", p.Name, now)
		}
		return nil
	}, p)
}

type installersRequest struct {
	Installers []string `json:"installers"`
}

// HandleInstallers handles PUT /orders/{id}/installers. Changing the crew
// while the order sits in the sub-lifecycle re-derives scheduled versus
// in_progress.
func (h *Handler) HandleInstallers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req installersRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	installers, err := parseInstallerIDs(req.Installers)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		o.Installers = installers
		if o.Status == models.StatusScheduled || o.Status == models.StatusInProgress {
			next := installStatus(installers)
			if o.Status != next {
				o.Status = next
				o.AppendTimeline(next, "Installation crew updated", p.Name, now)
			}
		}
		return nil
	}, p)
}

type finishRequest struct {
	Note string `json:"note"`
}

// HandleFinish handles POST /orders/{id}/finish: the crew reports the job
// done and the order waits for office approval.
func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req finishRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		if !o.Status.CanTransitionTo(models.StatusPendingApproval) {
			return apperr.New(apperr.Validation,
				"cannot finish an order in status "+string(o.Status))
		}
		o.Status = models.StatusPendingApproval
		note := strings.TrimSpace(h.Sanitize.Sanitize(req.Note))
		if note == "" {
			note = "Installation finished"
		}
		o.AppendTimeline(models.StatusPendingApproval, note, p.Name, now)
		return nil
	}, p)
}
