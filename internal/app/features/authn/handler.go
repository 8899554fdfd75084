// internal/app/features/authn/handler.go
//
// Login and first-admin registration. Password checks use bcrypt; failed
// logins are deliberately indistinguishable between unknown email and
// wrong password.
package authn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Handler holds the dependencies of the auth endpoints.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Tokens *auth.TokenManager
}

// NewHandler constructs an auth Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, tokens *auth.TokenManager) *Handler {
	return &Handler{DB: db, Log: logger, Tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	users := userstore.New(h.DB, tenant.OrDefault(req.TenantID))
	u, err := users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	h.Log.Info("user signed in",
		zap.String("tenant", u.TenantID),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)))
	httpjson.Respond(w, http.StatusOK, loginResponse{Token: token, User: u})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Language string `json:"language"`
	TenantID string `json:"tenantId"`
}

// HandleRegister handles POST /auth/register: bootstrap path that creates
// the first admin of a tenant. Once any user exists in the tenant, further
// accounts go through the admin user endpoints.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
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
	if req.Language == "" {
		req.Language = "en"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	users := userstore.New(h.DB, tenant.OrDefault(req.TenantID))
	existing, err := users.Count(ctx, nil)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if existing > 0 {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "tenant already has users; ask an admin to create your account"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	u, err := users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
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

	token, err := h.Tokens.Issue(u)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, loginResponse{Token: token, User: u})
}
