package authn_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rafaelGenish111/Alu-Control/internal/app/features/authn"
	"github.com/rafaelGenish111/Alu-Control/internal/app/store/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
	"github.com/rafaelGenish111/Alu-Control/internal/testutil"
)

const tenantA = tenant.ID("tenant_a")

func newHandler(t *testing.T) *authn.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens, err := auth.NewTokenManager("test-secret-test-secret-long-enough", "alucontrol", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return authn.NewHandler(db, zap.NewNop(), tokens)
}

func seedUser(t *testing.T, h *authn.Handler, email, password string) {
	t.Helper()
	ctx := testutil.TestContext(t)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	st := userstore.New(h.DB, tenantA)
	u := models.User{Name: "Seed", Email: email, Role: models.RoleOffice, PasswordHash: string(hash)}
	if _, err := st.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestHandleLogin(t *testing.T) {
	h := newHandler(t)
	seedUser(t, h, "ada@a.test", "correct horse")

	login := func(email, password string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
			"email": email, "password": password, "tenantId": string(tenantA),
		})
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		return rec
	}

	rec := login("ada@a.test", "correct horse")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Token == "" {
		t.Error("empty token")
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash leaked in login response")
	}

	// Unknown account and bad password must be indistinguishable.
	badPass := login("ada@a.test", "wrong")
	noUser := login("nobody@a.test", "whatever")
	if badPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("got %d / %d, want 401 / 401", badPass.Code, noUser.Code)
	}
	if badPass.Body.String() != noUser.Body.String() {
		t.Errorf("failure responses differ: %q vs %q", badPass.Body.String(), noUser.Body.String())
	}
}

func TestHandleRegisterBootstrapsOnce(t *testing.T) {
	h := newHandler(t)

	body := map[string]string{
		"name": "Founder", "email": "founder@a.test",
		"password": "longenough", "tenantId": string(tenantA),
	}
	req := testutil.NewJSONRequest(t, "POST", "/auth/register", body)
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User models.User `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.User.Role != models.RoleAdmin {
		t.Errorf("bootstrap role: got %s, want admin", resp.User.Role)
	}

	// The door closes once a user exists.
	body["email"] = "second@a.test"
	req = testutil.NewJSONRequest(t, "POST", "/auth/register", body)
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("second register: got %d, want 403", rec.Code)
	}
}
