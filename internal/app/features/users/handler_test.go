package users_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rafaelGenish111/Alu-Control/internal/app/features/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
	"github.com/rafaelGenish111/Alu-Control/internal/testutil"
)

const tenantA = tenant.ID("tenant_a")

func TestHandleDeleteRefusesSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := users.NewHandler(db, zap.NewNop())

	admin := fx.CreateUser(ctx, tenantA, "Root", "root@a.test", models.RoleAdmin)
	p := testutil.TestPrincipal(tenantA, models.RoleAdmin)
	p.UserID = admin.ID

	req := testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("DELETE", "/users/x", nil), "id", admin.ID.Hex()), p)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("self delete: got %d, want 403; body %s", rec.Code, rec.Body.String())
	}

	// Deleting someone else works.
	victim := fx.CreateUser(ctx, tenantA, "Temp", "temp@a.test", models.RoleOffice)
	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("DELETE", "/users/x", nil), "id", victim.ID.Hex()), p)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("delete other: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCreateValidations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := users.NewHandler(db, zap.NewNop())
	p := testutil.TestPrincipal(tenantA, models.RoleAdmin)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"name": "X", "password": "longenough", "role": "office"}},
		{"short password", map[string]any{"name": "X", "email": "x@a.test", "password": "short", "role": "office"}},
		{"bad role", map[string]any{"name": "X", "email": "x@a.test", "password": "longenough", "role": "wizard"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/users", tc.body), p)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400; body %s", rec.Code, rec.Body.String())
			}
		})
	}
}
