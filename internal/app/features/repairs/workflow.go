// internal/app/features/repairs/workflow.go
//
// Shortcut endpoints for the common ticket moves: approve to scheduling,
// schedule a crew, and close out a visit. Each stamps its own note.
package repairs

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// HandleApprove handles POST /repairs/{id}/approve: office sign-off that a
// ticket is real work, moving it into the scheduling queue.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.Status = models.RepairReadyToSchedule
		rp.AddNote("Approved to scheduling", p.Name, now)
		return nil
	})
}

type scheduleRepairRequest struct {
	InstallerIDs []string   `json:"installerIds"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Notes        string     `json:"notes"`
}

// HandleSchedule handles POST /repairs/{id}/schedule. Unlike orders, a
// repair visit always requires a crew.
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req scheduleRepairRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if len(req.InstallerIDs) == 0 {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "installerIds is required"))
		return
	}
	if req.StartDate == nil || req.EndDate == nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "startDate and endDate are required"))
		return
	}
	if req.EndDate.Before(*req.StartDate) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "endDate cannot be before startDate"))
		return
	}
	crew := make([]primitive.ObjectID, 0, len(req.InstallerIDs))
	for _, s := range req.InstallerIDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid installer id "+s))
			return
		}
		crew = append(crew, id)
	}

	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.Installers = crew
		rp.InstallDateStart = req.StartDate
		rp.InstallDateEnd = req.EndDate
		rp.SchedulingNotes = strings.TrimSpace(h.Sanitize.Sanitize(req.Notes))
		rp.Status = models.RepairScheduled
		rp.AddNote("Scheduled", p.Name, now)
		return nil
	})
}

// HandleClose handles POST /repairs/{id}/close. The crew closing a visit
// parks the ticket in pending_approval so the office can review billing
// before it is finally completed or closed.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.Status = models.RepairPendingApproval
		rp.AddNote("Closed", p.Name, now)
		return nil
	})
}
