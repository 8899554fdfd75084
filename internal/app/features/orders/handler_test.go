package orders_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/rafaelGenish111/Alu-Control/internal/app/features/orders"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/indexes"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
	"github.com/rafaelGenish111/Alu-Control/internal/testutil"
)

const (
	tenantA = tenant.ID("tenant_a")
	tenantB = tenant.ID("tenant_b")
)

func newHandler(t *testing.T) (*orders.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := orders.NewHandler(db, zap.NewNop(), 7*24*time.Hour)
	return h, testutil.NewFixtures(t, db)
}

func TestHandleCreateConflictOnDuplicateNumber(t *testing.T) {
	h, _ := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	if err := indexes.EnsureAll(testutil.TestContext(t), h.DB); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	body := map[string]any{
		"manualOrderNumber": "D-1",
		"clientName":        "Ada",
	}

	req := testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/orders", body), office)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: got %d, body %s", rec.Code, rec.Body.String())
	}

	req = testutil.WithPrincipal(testutil.NewJSONRequest(t, "POST", "/orders", body), office)
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: got %d, want 409", rec.Code)
	}
}

func TestHandleStatusRejectsIllegalTransition(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "ST-1", nil) // production_pending

	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/status",
		map[string]string{"status": "completed"})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("illegal transition: got %d, want 400; body %s", rec.Code, rec.Body.String())
	}

	// The order is untouched.
	var stored models.Order
	if err := h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": o.ID}).Decode(&stored); err != nil {
		t.Fatalf("reread: %v", err)
	}
	if stored.Status != models.StatusProductionPending {
		t.Errorf("status changed on rejected transition: %s", stored.Status)
	}
	if len(stored.Timeline) != len(o.Timeline) {
		t.Errorf("timeline grew on rejected transition")
	}
}

func TestHandleStatusAppliesLegalTransition(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "ST-2", nil) // production_pending

	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/status",
		map[string]string{"status": "in_production", "note": "cutting started"})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("legal transition: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusInProduction {
		t.Errorf("status: got %s", resp.Status)
	}
	last := resp.Timeline[len(resp.Timeline)-1]
	if last.Status != models.StatusInProduction || last.Note != "cutting started" {
		t.Errorf("timeline entry: %+v", last)
	}
	if resp.Revision != o.Revision+1 {
		t.Errorf("revision: got %d, want %d", resp.Revision, o.Revision+1)
	}
}

func TestHandleArriveItemAutoAdvance(t *testing.T) {
	h, fx := newHandler(t)
	clerk := testutil.TestPrincipal(tenantA, models.RoleProduction)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "AR-1", []models.MaterialLine{
		testutil.Material(models.CategoryGlass, "GlassCo"),
		testutil.Material(models.CategoryPaint, "PaintCo"),
	}) // materials_pending

	arrive := func(materialHex string) models.Order {
		t.Helper()
		req := testutil.NewJSONRequest(t, "POST", "/orders/procurement/arrive-item",
			map[string]string{"orderId": o.ID.Hex(), "materialId": materialHex})
		req = testutil.WithPrincipal(req, clerk)
		rec := httptest.NewRecorder()
		h.HandleArriveItem(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("arrive: got %d, body %s", rec.Code, rec.Body.String())
		}
		var resp models.Order
		testutil.DecodeJSON(t, rec, &resp)
		return resp
	}

	// First arrival: light flips, status stays put.
	after := arrive(o.Materials[0].ID.Hex())
	if after.ProductionStatus.Glass != models.CategoryArrived {
		t.Errorf("glass light: got %s", after.ProductionStatus.Glass)
	}
	if after.Status != models.StatusMaterialsPending {
		t.Errorf("status advanced early: %s", after.Status)
	}

	// Last arrival: auto-advance fires once.
	after = arrive(o.Materials[1].ID.Hex())
	if after.Status != models.StatusProductionPending {
		t.Errorf("status: got %s, want production_pending", after.Status)
	}
	last := after.Timeline[len(after.Timeline)-1]
	if last.Note != "All materials arrived" {
		t.Errorf("timeline note: %q", last.Note)
	}

	// Un-toggling does not move the status back.
	after = arrive(o.Materials[1].ID.Hex())
	if after.ProductionStatus.Paint != models.CategoryPending {
		t.Errorf("paint light after un-toggle: %s", after.ProductionStatus.Paint)
	}
	if after.Status != models.StatusProductionPending {
		t.Errorf("auto-advance must be one-way, got %s", after.Status)
	}

	// Re-toggling with status already advanced adds no second advance entry.
	advanceEntries := 0
	after = arrive(o.Materials[1].ID.Hex())
	for _, e := range after.Timeline {
		if e.Note == "All materials arrived" {
			advanceEntries++
		}
	}
	if advanceEntries != 1 {
		t.Errorf("advance timeline entries: got %d, want 1", advanceEntries)
	}
}

func TestHandleScheduleValidatesWindow(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "SC-1", nil)

	start := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	req := testutil.NewJSONRequest(t, "POST", "/orders/install/schedule", map[string]any{
		"orderId":          o.ID.Hex(),
		"installDateStart": start,
		"installDateEnd":   end,
	})
	req = testutil.WithPrincipal(req, office)
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("backwards window: got %d, want 400", rec.Code)
	}
}

func TestHandleScheduleDerivesStatusFromCrew(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	installer := fx.CreateInstaller(ctx, tenantA, "crew-lead")

	o := fx.CreateOrder(ctx, tenantA, "SC-2", nil)
	// Walk the order to ready_for_install directly in the collection.
	if _, err := h.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": bson.M{"status": models.StatusReadyForInstall}},
	); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	start := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	req := testutil.NewJSONRequest(t, "POST", "/orders/install/schedule", map[string]any{
		"orderId":          o.ID.Hex(),
		"installers":       []string{installer.ID.Hex()},
		"installDateStart": start,
		"installDateEnd":   end,
	})
	req = testutil.WithPrincipal(req, office)
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusScheduled {
		t.Errorf("status with crew: got %s, want scheduled", resp.Status)
	}
	if len(resp.Installers) != 1 || resp.Installers[0] != installer.ID {
		t.Errorf("installers: %+v", resp.Installers)
	}
}

func TestHandleFinishMovesToPendingApproval(t *testing.T) {
	h, fx := newHandler(t)
	crew := testutil.TestPrincipal(tenantA, models.RoleInstaller)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "FN-1", nil)
	if _, err := h.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": bson.M{"status": models.StatusInProgress}},
	); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	req := testutil.NewJSONRequest(t, "POST", "/orders/x/finish", map[string]string{})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), crew)
	rec := httptest.NewRecorder()
	h.HandleFinish(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusPendingApproval {
		t.Errorf("status: got %s, want pending_approval", resp.Status)
	}

	// Finishing an offer makes no sense.
	fresh := fx.CreateOrder(ctx, tenantA, "FN-2", nil)
	req = testutil.NewJSONRequest(t, "POST", "/orders/x/finish", map[string]string{})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", fresh.ID.Hex()), crew)
	rec = httptest.NewRecorder()
	h.HandleFinish(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("finish from production_pending: got %d, want 400", rec.Code)
	}
}

func TestTrashLifecycleOverHTTP(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "TR-1", nil)

	// Soft delete.
	req := testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("DELETE", "/orders/x", nil), "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleSoftDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Deleted orders drop out of reads.
	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("GET", "/orders/x", nil), "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}

	// But appear in the trash list.
	req = testutil.WithPrincipal(httptest.NewRequest("GET", "/orders/deleted", nil), office)
	rec = httptest.NewRecorder()
	h.HandleDeletedList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("deleted list: got %d", rec.Code)
	}
	var trash []models.Order
	testutil.DecodeJSON(t, rec, &trash)
	if len(trash) != 1 {
		t.Fatalf("trash: got %d, want 1", len(trash))
	}

	// Restore brings it back.
	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("POST", "/orders/x/restore", nil), "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleRestore(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: got %d, body %s", rec.Code, rec.Body.String())
	}

	req = testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("GET", "/orders/x", nil), "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get after restore: got %d, want 200", rec.Code)
	}
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "ISO-1", nil)
	outsider := testutil.TestPrincipal(tenantB, models.RoleAdmin)

	req := testutil.WithPrincipal(testutil.WithChiURLParam(
		httptest.NewRequest("GET", "/orders/x", nil), "id", o.ID.Hex()), outsider)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant get: got %d, want 404", rec.Code)
	}

	req = testutil.WithPrincipal(httptest.NewRequest("GET", "/orders", nil), outsider)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var list []models.Order
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("cross-tenant list: got %d orders, want 0", len(list))
	}
}

func TestHandleFinalInvoiceAutoCompletes(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "INV-1", nil)
	if _, err := h.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": bson.M{"status": models.StatusPendingApproval}},
	); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	// Issued but unpaid: no completion.
	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/final-invoice", map[string]any{
		"isIssued": true, "invoiceNumber": "F-77", "amount": 950.0,
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleFinalInvoice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusPendingApproval {
		t.Errorf("unpaid invoice must not complete, got %s", resp.Status)
	}

	// Paid with amount: completes with its own timeline entry.
	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/final-invoice", map[string]any{
		"isIssued": true, "invoiceNumber": "F-77", "amount": 950.0, "isPaid": true,
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleFinalInvoice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("paid invoice: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusCompleted {
		t.Errorf("status: got %s, want completed", resp.Status)
	}

	// The completion entry is a second entry on top of the invoice-update
	// audit entry, not a replacement for it.
	if n := len(resp.Timeline); n < 2 {
		t.Fatalf("timeline too short: %d entries", n)
	}
	update := resp.Timeline[len(resp.Timeline)-2]
	last := resp.Timeline[len(resp.Timeline)-1]
	if update.Note != "Final invoice updated" {
		t.Errorf("invoice-update entry: %+v", update)
	}
	if last.Status != models.StatusCompleted {
		t.Errorf("completion entry: %+v", last)
	}
}

func TestHandleFinalInvoiceKeepsTerminalStatus(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "INV-2", nil)
	if _, err := h.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": bson.M{"status": models.StatusCancelled}},
	); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/final-invoice", map[string]any{
		"isIssued": true, "invoiceNumber": "F-90", "amount": 120.0, "isPaid": true,
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleFinalInvoice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice on cancelled order: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusCancelled {
		t.Errorf("cancelled order revived to %s", resp.Status)
	}
	if !resp.FinalInvoice.IsPaid || resp.FinalInvoice.InvoiceNumber != "F-90" {
		t.Errorf("invoice fields not stored: %+v", resp.FinalInvoice)
	}
	for _, e := range resp.Timeline {
		if e.Status == models.StatusCompleted {
			t.Errorf("completion entry written on terminal order: %+v", e)
		}
	}

	// An offer is not terminal, but it cannot jump straight to completed
	// either.
	fresh := fx.CreateOrder(ctx, tenantA, "INV-3", nil)
	if _, err := h.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": fresh.ID},
		bson.M{"$set": bson.M{"status": models.StatusOffer}},
	); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/final-invoice", map[string]any{
		"isIssued": true, "invoiceNumber": "F-91", "amount": 10.0, "isPaid": true,
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", fresh.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleFinalInvoice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice on offer: got %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != models.StatusOffer {
		t.Errorf("offer advanced to %s by invoice update", resp.Status)
	}
}

func TestSectionUpdatesAppendAuditEntries(t *testing.T) {
	h, fx := newHandler(t)
	office := testutil.TestPrincipal(tenantA, models.RoleOffice)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "AUD-1", nil)

	lastNote := func(rec *httptest.ResponseRecorder) string {
		t.Helper()
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
		}
		var resp models.Order
		testutil.DecodeJSON(t, rec, &resp)
		return resp.Timeline[len(resp.Timeline)-1].Note
	}

	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/products", map[string]any{
		"products": []map[string]any{{"productType": "door", "quantity": 1}},
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec := httptest.NewRecorder()
	h.HandleProducts(rec, req)
	if got := lastNote(rec); got != "Products for client updated" {
		t.Errorf("products audit entry: %q", got)
	}

	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/issue", map[string]any{
		"isIssue": true, "reason": "glass cracked",
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleIssue(rec, req)
	if got := lastNote(rec); got != "Marked as issue: glass cracked" {
		t.Errorf("issue audit entry: %q", got)
	}

	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/issue", map[string]any{"isIssue": false})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleIssue(rec, req)
	if got := lastNote(rec); got != "Issue resolved" {
		t.Errorf("issue-resolve audit entry: %q", got)
	}

	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/take-list", map[string]any{
		"items": []map[string]any{{"label": "ladders", "done": false}},
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleTakeList(rec, req)
	if got := lastNote(rec); got != "Installation checklist updated" {
		t.Errorf("take-list audit entry: %q", got)
	}

	req = testutil.NewJSONRequest(t, "PUT", "/orders/x/materials", map[string]any{
		"materials": []map[string]any{{"category": "Glass", "quantity": 3}},
	})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), office)
	rec = httptest.NewRecorder()
	h.HandleMaterials(rec, req)
	if got := lastNote(rec); got != "Materials for factory updated" {
		t.Errorf("materials audit entry: %q", got)
	}
}

func TestHandleArriveItemConcurrentToggles(t *testing.T) {
	h, fx := newHandler(t)
	clerk := testutil.TestPrincipal(tenantA, models.RoleProduction)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "AR-2", []models.MaterialLine{
		testutil.Material(models.CategoryGlass, "GlassCo"),
		testutil.Material(models.CategoryAluminum, "AluCo"),
	})

	reqs := make([]*http.Request, 2)
	for i := range reqs {
		req := testutil.NewJSONRequest(t, "POST", "/orders/procurement/arrive-item",
			map[string]string{"orderId": o.ID.Hex(), "materialId": o.Materials[i].ID.Hex()})
		reqs[i] = testutil.WithPrincipal(req, clerk)
	}

	// Two toggles race on the same revision; the loser of the CAS must
	// retry and land on top of the winner rather than erase its write.
	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.HandleArriveItem(rec, reqs[i])
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("toggle %d: got %d", i, code)
		}
	}

	var stored models.Order
	if err := h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": o.ID}).Decode(&stored); err != nil {
		t.Fatalf("reread: %v", err)
	}
	for i, m := range stored.Materials {
		if !m.IsArrived {
			t.Errorf("material %d lost its arrival", i)
		}
	}
	if stored.Status != models.StatusProductionPending {
		t.Errorf("status: got %s, want production_pending", stored.Status)
	}
	if stored.Revision != o.Revision+2 {
		t.Errorf("revision: got %d, want %d", stored.Revision, o.Revision+2)
	}
}

func TestHandleTakeListNormalizes(t *testing.T) {
	h, fx := newHandler(t)
	crew := testutil.TestPrincipal(tenantA, models.RoleInstaller)
	ctx := testutil.TestContext(t)

	o := fx.CreateOrder(ctx, tenantA, "TK-1", nil)

	items := []map[string]any{
		{"label": "ladders", "done": false},
		{"label": "   ", "done": false}, // blank, dropped
		{"label": "sealant", "done": true},
	}
	for i := 0; i < 60; i++ {
		items = append(items, map[string]any{"label": "extra", "done": false})
	}

	req := testutil.NewJSONRequest(t, "PUT", "/orders/x/take-list", map[string]any{"items": items})
	req = testutil.WithPrincipal(testutil.WithChiURLParam(req, "id", o.ID.Hex()), crew)
	rec := httptest.NewRecorder()
	h.HandleTakeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("take list: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Order
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.InstallTakeList) != 50 {
		t.Errorf("take list length: got %d, want 50", len(resp.InstallTakeList))
	}
	if resp.InstallTakeList[0].Label != "ladders" || resp.InstallTakeList[1].Label != "sealant" {
		t.Errorf("blank labels not dropped: %+v", resp.InstallTakeList[:2])
	}
}
