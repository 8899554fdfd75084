// internal/app/features/suppliers/handler.go
package suppliers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	supplierstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/suppliers"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

const defaultLeadTimeDays = 7

// Handler holds the dependencies of the supplier endpoints.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a suppliers Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store(p *auth.Principal) *supplierstore.Store {
	return supplierstore.New(h.DB, p.Tenant)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "not signed in"))
	}
	return p, ok
}

func supplierID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid supplier id")
	}
	return id, nil
}

type supplierRequest struct {
	Name          string                  `json:"name"`
	ContactPerson string                  `json:"contactPerson"`
	Phone         string                  `json:"phone"`
	Email         string                  `json:"email"`
	Category      models.MaterialCategory `json:"category"`
	LeadTimeDays  int                     `json:"leadTimeDays"`
}

func (req *supplierRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	switch req.Category {
	case models.CategoryGlass, models.CategoryPaint, models.CategoryAluminum,
		models.CategoryHardware, models.CategoryOther:
	case "":
		req.Category = models.CategoryOther
	default:
		return apperr.New(apperr.Validation, "unknown category "+string(req.Category))
	}
	if req.LeadTimeDays < 0 {
		return apperr.New(apperr.Validation, "leadTimeDays cannot be negative")
	}
	if req.LeadTimeDays == 0 {
		req.LeadTimeDays = defaultLeadTimeDays
	}
	return nil
}

// HandleList handles GET /suppliers?category=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.store(p).List(ctx, models.MaterialCategory(r.URL.Query().Get("category")))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Supplier{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleCreate handles POST /suppliers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	sp, err := h.store(p).Create(ctx, models.Supplier{
		Name:          req.Name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Category:      req.Category,
		LeadTimeDays:  req.LeadTimeDays,
	})
	if err != nil {
		if errors.Is(err, supplierstore.ErrDuplicateName) {
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Conflict, "a supplier with this name already exists", err))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, sp)
}

// HandleUpdate handles PUT /suppliers/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := supplierID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req supplierRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	st := h.store(p)
	sp := models.Supplier{
		ID:            id,
		Name:          req.Name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Category:      req.Category,
		LeadTimeDays:  req.LeadTimeDays,
	}
	if err := st.Update(ctx, sp); err != nil {
		switch {
		case errors.Is(err, supplierstore.ErrDuplicateName):
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Conflict, "a supplier with this name already exists", err))
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "supplier not found"))
		default:
			httpjson.Error(w, h.Log, err)
		}
		return
	}
	updated, err := st.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /suppliers/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := supplierID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.store(p).Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "supplier not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]bool{"deleted": true})
}
