// internal/app/features/products/handler.go
package products

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	productstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/products"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Handler holds the dependencies of the product catalog endpoints.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a products Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store(p *auth.Principal) *productstore.Store {
	return productstore.New(h.DB, p.Tenant)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "not signed in"))
	}
	return p, ok
}

func productID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid product id")
	}
	return id, nil
}

type productRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Dimensions  string `json:"dimensions"`
	Color       string `json:"color"`
	Supplier    string `json:"supplier"`
}

func (req *productRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	return nil
}

func (req *productRequest) model() models.Product {
	return models.Product{
		Name:        req.Name,
		SKU:         strings.TrimSpace(req.SKU),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Dimensions:  strings.TrimSpace(req.Dimensions),
		Color:       strings.TrimSpace(req.Color),
		Supplier:    strings.TrimSpace(req.Supplier),
	}
}

// HandleList handles GET /products?category=&q=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	var (
		list []models.Product
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		list, err = h.store(p).Search(ctx, q)
	} else {
		list, err = h.store(p).List(ctx, strings.TrimSpace(r.URL.Query().Get("category")))
	}
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

// HandleCreate handles POST /products.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req productRequest
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

	created, err := h.store(p).Create(ctx, req.model())
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /products/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req productRequest
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
	m := req.model()
	m.ID = id
	if err := st.Update(ctx, m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "product not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	updated, err := st.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /products/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.store(p).Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "product not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]bool{"deleted": true})
}
