// internal/app/features/orders/issue.go
package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type issueRequest struct {
	IsIssue bool   `json:"isIssue"`
	Reason  string `json:"reason"`
}

// HandleIssue handles PUT /orders/{id}/issue. Raising an issue stamps who
// and when; clearing it stamps resolvedAt. The order status is untouched
// either way.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req issueRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Reason = strings.TrimSpace(h.Sanitize.Sanitize(req.Reason))
	if req.IsIssue && req.Reason == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "reason is required when raising an issue"))
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		if req.IsIssue {
			o.Issue = models.OrderIssue{
				IsIssue:   true,
				Reason:    req.Reason,
				CreatedAt: &now,
				CreatedBy: p.Name,
			}
			o.AppendTimeline(o.Status, "Marked as issue: "+req.Reason, p.Name, now)
			return nil
		}
		if o.Issue.IsIssue {
			o.Issue.IsIssue = false
			o.Issue.ResolvedAt = &now
			o.AppendTimeline(o.Status, "Issue resolved", p.Name, now)
		}
		return nil
	}, p)
}
