// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaterialCategory is the fixed set of procurement categories an order's
// factory materials fall into. The per-category traffic light in
// ProductionStatus is derived from these.
type MaterialCategory string

const (
	CategoryGlass    MaterialCategory = "Glass"
	CategoryPaint    MaterialCategory = "Paint"
	CategoryAluminum MaterialCategory = "Aluminum"
	CategoryHardware MaterialCategory = "Hardware"
	CategoryOther    MaterialCategory = "Other"
)

// Categories returns the fixed category set in display order.
func Categories() []MaterialCategory {
	return []MaterialCategory{CategoryGlass, CategoryPaint, CategoryAluminum, CategoryHardware, CategoryOther}
}

// CategoryStatus is the derived readiness of one material category.
type CategoryStatus string

const (
	CategoryNotNeeded CategoryStatus = "not_needed"
	CategoryPending   CategoryStatus = "pending"
	CategoryArrived   CategoryStatus = "arrived"
)

// ProductionStatus is the per-category traffic light shown to the factory.
// It is stored on the order but is always derived from Materials; callers
// must recompute it through RecomputeProductionStatus after any material
// mutation rather than editing it directly.
type ProductionStatus struct {
	Glass    CategoryStatus `bson:"glass" json:"glass"`
	Paint    CategoryStatus `bson:"paint" json:"paint"`
	Aluminum CategoryStatus `bson:"aluminum" json:"aluminum"`
	Hardware CategoryStatus `bson:"hardware" json:"hardware"`
	Other    CategoryStatus `bson:"other" json:"other"`
}

// ProductLine is a client-facing line item (window, door, ...).
type ProductLine struct {
	ProductType string `bson:"product_type" json:"productType"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    int    `bson:"quantity" json:"quantity"`
}

// MaterialLine is a factory-facing line item tracked through procurement.
type MaterialLine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category    MaterialCategory   `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Supplier    string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	IsOrdered   bool               `bson:"is_ordered" json:"isOrdered"`
	OrderedAt   *time.Time         `bson:"ordered_at,omitempty" json:"orderedAt,omitempty"`
	OrderedBy   string             `bson:"ordered_by,omitempty" json:"orderedBy,omitempty"`
	IsArrived   bool               `bson:"is_arrived" json:"isArrived"`
	ArrivedAt   *time.Time         `bson:"arrived_at,omitempty" json:"arrivedAt,omitempty"`
}

// OrderFileType classifies an attached file.
type OrderFileType string

const (
	FileMasterPlan OrderFileType = "master_plan"
	FileDocument   OrderFileType = "document"
	FileSitePhoto  OrderFileType = "site_photo"
)

// OrderFile is a typed attachment reference. Blob storage itself is
// external; only the URL handed to us is kept.
type OrderFile struct {
	Name       string        `bson:"name" json:"name"`
	URL        string        `bson:"url" json:"url"`
	Type       OrderFileType `bson:"type" json:"type"`
	UploadedAt time.Time     `bson:"uploaded_at" json:"uploadedAt"`
	UploadedBy string        `bson:"uploaded_by,omitempty" json:"uploadedBy,omitempty"`
}

// OrderNote is stage-tagged free text. Notes are append-only.
type OrderNote struct {
	Stage     string    `bson:"stage" json:"stage"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	CreatedBy string    `bson:"created_by,omitempty" json:"createdBy,omitempty"`
}

// TimelineEntry is one row of the order's append-only audit log.
type TimelineEntry struct {
	Status OrderStatus `bson:"status" json:"status"`
	Note   string      `bson:"note,omitempty" json:"note,omitempty"`
	Actor  string      `bson:"actor,omitempty" json:"actor,omitempty"`
	Date   time.Time   `bson:"date" json:"date"`
}

// TakeItem is one installation-checklist row ("bring ladders", ...).
type TakeItem struct {
	Label string `bson:"label" json:"label"`
	Done  bool   `bson:"done" json:"done"`
}

// OrderIssue flags a problem on the order, toggled independently of status.
type OrderIssue struct {
	IsIssue    bool       `bson:"is_issue" json:"isIssue"`
	Reason     string     `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt  *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	CreatedBy  string     `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
}

// FinalInvoice is the financial closeout sub-record. When it is issued and
// paid with a finite amount the order auto-completes.
type FinalInvoice struct {
	IsIssued      bool     `bson:"is_issued" json:"isIssued"`
	InvoiceNumber string   `bson:"invoice_number,omitempty" json:"invoiceNumber,omitempty"`
	Amount        *float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	IsPaid        bool     `bson:"is_paid" json:"isPaid"`
}

// CanClose reports whether the invoice satisfies the completion gate.
func (f FinalInvoice) CanClose() bool {
	return f.IsIssued && f.IsPaid && f.Amount != nil
}

// Order is the central aggregate. It exclusively owns its nested arrays;
// every mutation goes through an operation that appends a timeline entry.
// Revision is a monotonically increasing counter used for optimistic
// concurrency: whole-document writes must carry the revision they read.
type Order struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID string             `bson:"tenant_id" json:"tenantId"`

	ManualOrderNumber string `bson:"manual_order_number" json:"manualOrderNumber"`

	ClientName    string `bson:"client_name" json:"clientName"`
	ClientPhone   string `bson:"client_phone,omitempty" json:"clientPhone,omitempty"`
	ClientEmail   string `bson:"client_email,omitempty" json:"clientEmail,omitempty"`
	ClientAddress string `bson:"client_address,omitempty" json:"clientAddress,omitempty"`
	Region        string `bson:"region,omitempty" json:"region,omitempty"`

	Status OrderStatus `bson:"status" json:"status"`

	Products  []ProductLine  `bson:"products" json:"products"`
	Materials []MaterialLine `bson:"materials" json:"materials"`
	Files     []OrderFile    `bson:"files,omitempty" json:"files,omitempty"`
	Notes     []OrderNote    `bson:"notes,omitempty" json:"notes,omitempty"`
	Timeline  []TimelineEntry `bson:"timeline" json:"timeline"`

	ProductionStatus ProductionStatus `bson:"production_status" json:"productionStatus"`

	Installers        []primitive.ObjectID `bson:"installers,omitempty" json:"installers,omitempty"`
	InstallDateStart  *time.Time           `bson:"install_date_start,omitempty" json:"installDateStart,omitempty"`
	InstallDateEnd    *time.Time           `bson:"install_date_end,omitempty" json:"installDateEnd,omitempty"`
	InstallationNotes string               `bson:"installation_notes,omitempty" json:"installationNotes,omitempty"`
	InstallTakeList   []TakeItem           `bson:"install_take_list,omitempty" json:"installTakeList,omitempty"`

	Issue        OrderIssue   `bson:"issue" json:"issue"`
	FinalInvoice FinalInvoice `bson:"final_invoice" json:"finalInvoice"`

	Deposit                   float64    `bson:"deposit,omitempty" json:"deposit,omitempty"`
	DepositPaid               bool       `bson:"deposit_paid" json:"depositPaid"`
	DepositPaidAt             *time.Time `bson:"deposit_paid_at,omitempty" json:"depositPaidAt,omitempty"`
	EstimatedInstallationDays int        `bson:"estimated_installation_days,omitempty" json:"estimatedInstallationDays,omitempty"`

	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`

	Revision  int64     `bson:"revision" json:"revision"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CategoryStatusFor folds over Materials for one category: not_needed when
// the category has no lines, arrived when every line has arrived, pending
// otherwise.
func (o *Order) CategoryStatusFor(cat MaterialCategory) CategoryStatus {
	found := false
	arrived := true
	for _, m := range o.Materials {
		if m.Category != cat {
			continue
		}
		found = true
		if !m.IsArrived {
			arrived = false
		}
	}
	if !found {
		return CategoryNotNeeded
	}
	if arrived {
		return CategoryArrived
	}
	return CategoryPending
}

// RecomputeProductionStatus rebuilds the whole traffic light from Materials.
// Material lists are small and bounded, so a full recompute on every
// mutation is cheaper than keeping incremental bookkeeping honest.
func (o *Order) RecomputeProductionStatus() {
	o.ProductionStatus = ProductionStatus{
		Glass:    o.CategoryStatusFor(CategoryGlass),
		Paint:    o.CategoryStatusFor(CategoryPaint),
		Aluminum: o.CategoryStatusFor(CategoryAluminum),
		Hardware: o.CategoryStatusFor(CategoryHardware),
		Other:    o.CategoryStatusFor(CategoryOther),
	}
}

// AllMaterialsArrived reports whether every material line on the order has
// arrived. An order with no materials reports false; the auto-advance out
// of materials_pending only makes sense when something was awaited.
func (o *Order) AllMaterialsArrived() bool {
	if len(o.Materials) == 0 {
		return false
	}
	for _, m := range o.Materials {
		if !m.IsArrived {
			return false
		}
	}
	return true
}

// AppendTimeline adds one audit entry. The timeline is append-only; nothing
// ever rewrites past entries.
func (o *Order) AppendTimeline(status OrderStatus, note, actor string, at time.Time) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status: status,
		Note:   note,
		Actor:  actor,
		Date:   at,
	})
}

// IsDeleted reports whether the order is soft-deleted.
func (o *Order) IsDeleted() bool { return o.DeletedAt != nil }
