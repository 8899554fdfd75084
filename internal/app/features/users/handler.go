// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Handler holds the dependencies of the user admin endpoints.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store(p *auth.Principal) *userstore.Store {
	return userstore.New(h.DB, p.Tenant)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "not signed in"))
	}
	return p, ok
}

func userID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "invalid user id")
	}
	return id, nil
}

// HandleList handles GET /users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.store(p).List(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	httpjson.Respond(w, http.StatusOK, list)
}

type createUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Language string      `json:"language"`
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name and email are required"))
		return
	}
	if len(req.Password) < 8 {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "password must be at least 8 characters"))
		return
	}
	if !models.ValidRole(req.Role) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "unknown role "+string(req.Role)))
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.store(p).Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Language:     req.Language,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Conflict, "a user with this email already exists", err))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, u)
}

type updateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Language string      `json:"language"`
}

// HandleUpdate handles PUT /users/{id}. An empty password leaves the
// current hash in place.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := userID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	var req updateUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name and email are required"))
		return
	}
	if !models.ValidRole(req.Role) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "unknown role "+string(req.Role)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	st := h.store(p)
	u, err := st.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	u.Name = req.Name
	u.Email = req.Email
	u.Role = req.Role
	if req.Language != "" {
		u.Language = req.Language
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "password must be at least 8 characters"))
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		u.PasswordHash = string(hash)
	}

	if err := st.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			httpjson.Error(w, h.Log, apperr.Wrap(apperr.Conflict, "a user with this email already exists", err))
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
		default:
			httpjson.Error(w, h.Log, err)
		}
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

// HandleDelete handles DELETE /users/{id}. Admins cannot delete their own
// account; someone else has to pull that trigger.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := userID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if id == p.UserID {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "you cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.store(p).Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]bool{"deleted": true})
}
