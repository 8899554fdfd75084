// internal/app/features/repairs/extras.go
package repairs

import (
	"net/http"
	"strings"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type repairNoteRequest struct {
	Text string `json:"text"`
}

// HandleAddNote handles POST /repairs/{id}/notes.
func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req repairNoteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Text = strings.TrimSpace(h.Sanitize.Sanitize(req.Text))
	if req.Text == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "text is required"))
		return
	}

	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.AddNote(req.Text, p.Name, now)
		return nil
	})
}

type repairMediaRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

func mediaType(s string) models.RepairMediaType {
	switch models.RepairMediaType(s) {
	case models.MediaVideo:
		return models.MediaVideo
	case models.MediaDocument:
		return models.MediaDocument
	default:
		return models.MediaPhoto
	}
}

// HandleAddMedia handles POST /repairs/{id}/media: attaches a photo, video,
// or document reference to the ticket.
func (h *Handler) HandleAddMedia(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req repairMediaRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "url is required"))
		return
	}

	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.Media = append(rp.Media, models.RepairMedia{
			URL:       strings.TrimSpace(req.URL),
			Type:      mediaType(req.Type),
			Name:      strings.TrimSpace(req.Name),
			CreatedAt: now,
			CreatedBy: p.Name,
		})
		return nil
	})
}

type repairIssueRequest struct {
	IsIssue bool   `json:"isIssue"`
	Reason  string `json:"reason"`
}

// HandleIssue handles PUT /repairs/{id}/issue, mirroring the order issue
// flag: raising stamps who and why, clearing stamps resolvedAt.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req repairIssueRequest
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
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		if req.IsIssue {
			rp.Issue = models.OrderIssue{
				IsIssue:   true,
				Reason:    req.Reason,
				CreatedAt: &now,
				CreatedBy: p.Name,
			}
			rp.AddNote("Marked as issue: "+req.Reason, p.Name, now)
			return nil
		}
		if rp.Issue.IsIssue {
			rp.Issue.IsIssue = false
			rp.Issue.ResolvedAt = &now
			rp.AddNote("Issue resolved", p.Name, now)
		}
		return nil
	})
}

type repairTakeListRequest struct {
	Items []models.TakeItem `json:"items"`
}

// HandleTakeList handles PUT /repairs/{id}/take-list, with the same
// normalization as the order take list.
func (h *Handler) HandleTakeList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req repairTakeListRequest
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
	}

	now := time.Now().UTC()
	h.mutateTicket(w, r, func(rp *models.Repair) error {
		rp.InstallTakeList = items
		rp.AddNote("Install take list updated", p.Name, now)
		return nil
	})
}
