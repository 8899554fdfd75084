package models

import (
	"testing"
	"time"
)

func TestCategoryStatusFor(t *testing.T) {
	o := &Order{Materials: []MaterialLine{
		{Category: CategoryGlass, IsArrived: true},
		{Category: CategoryGlass, IsArrived: true},
		{Category: CategoryPaint, IsArrived: false},
		{Category: CategoryAluminum, IsArrived: true},
		{Category: CategoryAluminum, IsArrived: false},
	}}

	cases := []struct {
		cat  MaterialCategory
		want CategoryStatus
	}{
		{CategoryGlass, CategoryArrived},
		{CategoryPaint, CategoryPending},
		{CategoryAluminum, CategoryPending},
		{CategoryHardware, CategoryNotNeeded},
		{CategoryOther, CategoryNotNeeded},
	}
	for _, tc := range cases {
		if got := o.CategoryStatusFor(tc.cat); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.cat, got, tc.want)
		}
	}
}

func TestRecomputeProductionStatus(t *testing.T) {
	o := &Order{Materials: []MaterialLine{
		{Category: CategoryGlass, IsArrived: true},
		{Category: CategoryHardware, IsArrived: false},
	}}
	o.RecomputeProductionStatus()

	want := ProductionStatus{
		Glass:    CategoryArrived,
		Paint:    CategoryNotNeeded,
		Aluminum: CategoryNotNeeded,
		Hardware: CategoryPending,
		Other:    CategoryNotNeeded,
	}
	if o.ProductionStatus != want {
		t.Errorf("production status: got %+v, want %+v", o.ProductionStatus, want)
	}

	// Flipping the pending line and recomputing turns the light green.
	o.Materials[1].IsArrived = true
	o.RecomputeProductionStatus()
	if o.ProductionStatus.Hardware != CategoryArrived {
		t.Errorf("hardware after arrival: got %s, want arrived", o.ProductionStatus.Hardware)
	}
}

func TestAllMaterialsArrived(t *testing.T) {
	empty := &Order{}
	if empty.AllMaterialsArrived() {
		t.Error("order with no materials must not report all arrived")
	}

	partial := &Order{Materials: []MaterialLine{
		{Category: CategoryGlass, IsArrived: true},
		{Category: CategoryPaint, IsArrived: false},
	}}
	if partial.AllMaterialsArrived() {
		t.Error("partially arrived order must not report all arrived")
	}

	full := &Order{Materials: []MaterialLine{
		{Category: CategoryGlass, IsArrived: true},
		{Category: CategoryPaint, IsArrived: true},
	}}
	if !full.AllMaterialsArrived() {
		t.Error("fully arrived order must report all arrived")
	}
}

func TestFinalInvoiceCanClose(t *testing.T) {
	amount := 1200.50
	cases := []struct {
		name string
		inv  FinalInvoice
		want bool
	}{
		{"issued paid with amount", FinalInvoice{IsIssued: true, IsPaid: true, Amount: &amount}, true},
		{"missing amount", FinalInvoice{IsIssued: true, IsPaid: true}, false},
		{"unpaid", FinalInvoice{IsIssued: true, Amount: &amount}, false},
		{"not issued", FinalInvoice{IsPaid: true, Amount: &amount}, false},
		{"zero value", FinalInvoice{}, false},
	}
	for _, tc := range cases {
		if got := tc.inv.CanClose(); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAppendTimeline(t *testing.T) {
	o := &Order{}
	now := time.Now().UTC()
	o.AppendTimeline(StatusOffer, "Order created", "tester", now)
	o.AppendTimeline(StatusMaterialsPending, "", "tester", now.Add(time.Minute))

	if len(o.Timeline) != 2 {
		t.Fatalf("timeline length: got %d, want 2", len(o.Timeline))
	}
	if o.Timeline[0].Status != StatusOffer || o.Timeline[0].Note != "Order created" {
		t.Errorf("first entry: got %+v", o.Timeline[0])
	}
	if o.Timeline[1].Status != StatusMaterialsPending {
		t.Errorf("second entry: got %+v", o.Timeline[1])
	}
}
