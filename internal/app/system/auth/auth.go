// Package auth issues and verifies the signed bearer tokens that carry a
// principal's identity, role, and owning tenant. The tenant claim set at
// token issuance is the single source of tenant context for the request;
// principals that predate tenant support resolve to the default tenant.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/httpjson"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Principal is the authenticated caller injected into the request context.
type Principal struct {
	UserID primitive.ObjectID
	Name   string
	Email  string
	Role   models.Role
	Tenant tenant.ID
}

// Claims is the JWT payload. Subject holds the user id hex.
type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies bearer tokens with a shared HS256 secret.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	log    *zap.Logger
}

// NewTokenManager builds a TokenManager. The secret must be non-empty;
// short secrets are accepted with a warning so local dev keeps working.
func NewTokenManager(secret, issuer string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide at least 32 random chars")
	}
	if len(secret) < 32 && logger != nil {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if issuer == "" {
		issuer = "alucontrol"
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, log: logger}, nil
}

// Issue creates a signed token for u.
func (tm *TokenManager) Issue(u models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		TenantID: u.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			Issuer:    tm.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Verify parses raw and resolves the principal, including its tenant.
func (tm *TokenManager) Verify(raw string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid token", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token")
	}
	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token subject")
	}
	return &Principal{
		UserID: uid,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   models.Role(claims.Role),
		Tenant: tenant.OrDefault(claims.TenantID),
	}, nil
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentUser returns the principal placed in context by RequireSignedIn.
func CurrentUser(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// WithTestPrincipal injects a principal directly, bypassing token
// verification. Test use only.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

// RequireSignedIn extracts and verifies the bearer token, rejecting the
// request with 401 when it is missing or invalid.
func (tm *TokenManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok { // already injected (tests)
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpjson.Error(w, tm.log, apperr.New(apperr.Unauthenticated, "missing bearer token"))
			return
		}
		p, err := tm.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpjson.Error(w, tm.log, err)
			return
		}
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

// RequireRole allows only principals whose role is in the given set. It
// must run after RequireSignedIn.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, nil, apperr.New(apperr.Unauthenticated, "not signed in"))
				return
			}
			if _, has := set[p.Role]; !has {
				httpjson.Error(w, nil, apperr.New(apperr.Forbidden, "role not allowed for this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
