// internal/app/features/orders/notes.go
package orders

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

type noteRequest struct {
	Stage string `json:"stage"`
	Text  string `json:"text"`
}

// HandleAddNote handles POST /orders/{id}/notes. Notes are append-only.
func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req noteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Text = strings.TrimSpace(h.Sanitize.Sanitize(req.Text))
	if req.Text == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "text is required"))
		return
	}
	stage := strings.TrimSpace(req.Stage)
	if stage == "" {
		stage = "general"
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		o.Notes = append(o.Notes, models.OrderNote{
			Stage:     stage,
			Text:      req.Text,
			CreatedAt: now,
			CreatedBy: p.Name,
		})
		o.AppendTimeline(o.Status, "Note added ("+stage+")", p.Name, now)
		return nil
	}, p)
}

type fileRequest struct {
	Name string               `json:"name"`
	URL  string               `json:"url"`
	Type models.OrderFileType `json:"type"`
}

// HandleAddFile handles POST /orders/{id}/files. Blobs live elsewhere;
// only the reference is recorded. A new master plan replaces the previous
// one, other file types accumulate.
func (h *Handler) HandleAddFile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req fileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if req.Name == "" || req.URL == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name and url are required"))
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "url must be absolute http(s)"))
		return
	}
	switch req.Type {
	case models.FileMasterPlan, models.FileDocument, models.FileSitePhoto:
	case "":
		req.Type = models.FileDocument
	default:
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "unknown file type "+string(req.Type)))
		return
	}

	now := time.Now().UTC()
	h.updateSection(w, r, id, func(o *models.Order) error {
		file := models.OrderFile{
			Name:       req.Name,
			URL:        req.URL,
			Type:       req.Type,
			UploadedAt: now,
			UploadedBy: p.Name,
		}
		if req.Type == models.FileMasterPlan {
			kept := o.Files[:0]
			for _, f := range o.Files {
				if f.Type != models.FileMasterPlan {
					kept = append(kept, f)
				}
			}
			o.Files = kept
		}
		o.Files = append(o.Files, file)
		return nil
	}, p)
}
