package repairs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rafaelGenish111/Alu-Control/internal/app/features/repairs"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
	"github.com/rafaelGenish111/Alu-Control/internal/testutil"
)

const (
	tenantA = tenant.ID("tenant_a")
	tenantB = tenant.ID("tenant_b")
)

func newHandler(t *testing.T) (*repairs.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return repairs.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestCreateLinksKnownOrderNumber(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "RP-100", nil)

	req := testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
		"manualOrderNumber": "RP-100",
		"clientName":        "Ada",
		"problem":           "window does not close",
	})
	req = testutil.WithPrincipal(req, office)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	var rp models.Repair
	testutil.DecodeJSON(t, rec, &rp)
	if rp.Status != models.RepairOpen {
		t.Errorf("status: got %s, want open", rp.Status)
	}
	if rp.OrderID == nil || *rp.OrderID != o.ID {
		t.Errorf("order link: got %v, want %s", rp.OrderID, o.ID.Hex())
	}
	if rp.WarrantyStatus != models.InWarranty {
		t.Errorf("warranty default: got %s", rp.WarrantyStatus)
	}
	if rp.EstimatedWorkDays != 1 {
		t.Errorf("work days default: got %d", rp.EstimatedWorkDays)
	}
	if len(rp.Notes) != 1 || rp.Notes[0].Text != "Repair ticket created" {
		t.Errorf("opening note: %+v", rp.Notes)
	}

	// An unknown number stays as free text without a link.
	req = testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
		"manualOrderNumber": "NOPE-1",
		"clientName":        "Ada",
		"problem":           "other thing",
	})
	req = testutil.WithPrincipal(req, office)
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create unlinked: got %d", rec.Code)
	}
	testutil.DecodeJSON(t, rec, &rp)
	if rp.OrderID != nil {
		t.Errorf("unknown number must not link, got %v", rp.OrderID)
	}
	if rp.ManualOrderNumber != "NOPE-1" {
		t.Errorf("number not kept as text: %q", rp.ManualOrderNumber)
	}
}

func TestCreateValidations(t *testing.T) {
	h, _ := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing problem", map[string]any{"clientName": "Ada"}},
		{"missing client", map[string]any{"problem": "broken hinge"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/repairs", tc.body), office)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400; body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWorkflowWalk(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	installer := fx.CreateInstaller(ctx, tenantA, "crew-lead")

	req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
		"clientName": "Ada", "problem": "leaking frame",
	}), office)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var rp models.Repair
	testutil.DecodeJSON(t, rec, &rp)

	// Approve moves it into the scheduling queue.
	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("POST", "/repairs/x/approve", nil), "id", rp.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleApprove(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &rp)
	if rp.Status != models.RepairReadyToSchedule {
		t.Errorf("status after approve: %s", rp.Status)
	}

	// Scheduling requires a crew and a sane window.
	start := time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)
	req = testutil.NewJSONRequest(t, "POST", "/repairs/x/schedule", map[string]any{
		"installerIds": []string{installer.ID.Hex()},
		"startDate":    start,
		"endDate":      start.Add(24 * time.Hour),
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", rp.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleSchedule(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &rp)
	if rp.Status != models.RepairScheduled {
		t.Errorf("status after schedule: %s", rp.Status)
	}
	if len(rp.Installers) != 1 || rp.Installers[0] != installer.ID {
		t.Errorf("crew: %+v", rp.Installers)
	}

	// Close parks the ticket for office review.
	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("POST", "/repairs/x/close", nil), "id", rp.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleClose(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("close: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &rp)
	if rp.Status != models.RepairPendingApproval {
		t.Errorf("status after close: %s", rp.Status)
	}

	// Each move left its note in the stream.
	wantNotes := []string{"Repair ticket created", "Approved to scheduling", "Scheduled", "Closed"}
	if len(rp.Notes) != len(wantNotes) {
		t.Fatalf("notes: got %d, want %d: %+v", len(rp.Notes), len(wantNotes), rp.Notes)
	}
	for i, want := range wantNotes {
		if rp.Notes[i].Text != want {
			t.Errorf("note %d: got %q, want %q", i, rp.Notes[i].Text, want)
		}
	}
}

func TestScheduleValidations(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	installer := fx.CreateInstaller(ctx, tenantA, "crew-lead")

	req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
		"clientName": "Ada", "problem": "stuck roller",
	}), office)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	var rp models.Repair
	testutil.DecodeJSON(t, rec, &rp)

	start := time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)

	// No crew.
	req = testutil.NewJSONRequest(t, "POST", "/repairs/x/schedule", map[string]any{
		"installerIds": []string{},
		"startDate":    start,
		"endDate":      start.Add(time.Hour),
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", rp.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleSchedule(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty crew: got %d, want 400", rec.Code)
	}

	// Window runs backwards.
	req = testutil.NewJSONRequest(t, "POST", "/repairs/x/schedule", map[string]any{
		"installerIds": []string{installer.ID.Hex()},
		"startDate":    start,
		"endDate":      start.Add(-time.Hour),
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", rp.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleSchedule(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("backwards window: got %d, want 400", rec.Code)
	}
}

func TestTenantScopingOnRepairs(t *testing.T) {
	h, _ := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	outsider := testutil.TestPrincipal(tenantB, models.RoleOffice)

	req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
		"clientName": "Ada", "problem": "cracked pane",
	}), office)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	var rp models.Repair
	testutil.DecodeJSON(t, rec, &rp)

	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("GET", "/repairs/x", nil), "id", rp.ID.Hex()), outsider)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant get: got %d, want 404", rec.Code)
	}

	req = testutil.WithPrincipal(httptest.NewRequest("GET", "/repairs", nil), outsider)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var list []models.Repair
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("cross-tenant list: got %d repairs, want 0", len(list))
	}
}

func TestListFilters(t *testing.T) {
	h, _ := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)

	for _, problem := range []string{"leaking frame", "stuck roller"} {
		req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/repairs", map[string]any{
			"clientName": "Ada", "problem": problem,
		}), office)
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: got %d", rec.Code)
		}
	}

	req := testutil.WithPrincipal(httptest.NewRequest("GET", "/repairs?q=roller", nil), office)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var list []models.Repair
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].Problem != "stuck roller" {
		t.Errorf("text filter: %+v", list)
	}

	req = testutil.WithPrincipal(httptest.NewRequest("GET", "/repairs?status=scheduled", nil), office)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status filter: got %d", rec.Code)
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("no ticket is scheduled yet: %+v", list)
	}

	req = testutil.WithPrincipal(httptest.NewRequest("GET", "/repairs?status=bogus", nil), office)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status: got %d, want 400", rec.Code)
	}
}
