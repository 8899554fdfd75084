package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepairStatus is the lifecycle state of a service ticket. Repairs have a
// looser flow than orders: office staff move them between states directly,
// with only the approve/schedule/close shortcuts stamping transitions.
type RepairStatus string

const (
	RepairOpen            RepairStatus = "open"
	RepairReadyToSchedule RepairStatus = "ready_to_schedule"
	RepairScheduled       RepairStatus = "scheduled"
	RepairInProgress      RepairStatus = "in_progress"
	RepairPendingApproval RepairStatus = "pending_approval"
	RepairCompleted       RepairStatus = "completed"
	RepairClosed          RepairStatus = "closed"
)

var repairStatuses = map[RepairStatus]bool{
	RepairOpen:            true,
	RepairReadyToSchedule: true,
	RepairScheduled:       true,
	RepairInProgress:      true,
	RepairPendingApproval: true,
	RepairCompleted:       true,
	RepairClosed:          true,
}

// IsValid reports whether s is a known repair status.
func (s RepairStatus) IsValid() bool { return repairStatuses[s] }

// WarrantyStatus marks whether a repair is billable.
type WarrantyStatus string

const (
	InWarranty    WarrantyStatus = "in_warranty"
	OutOfWarranty WarrantyStatus = "out_of_warranty"
)

// RepairNote is one line of the ticket's audit trail. Unlike orders, which
// split notes and timeline, repairs keep a single note stream.
type RepairNote struct {
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
}

// RepairMediaType classifies an attachment on a repair ticket.
type RepairMediaType string

const (
	MediaPhoto    RepairMediaType = "photo"
	MediaVideo    RepairMediaType = "video"
	MediaDocument RepairMediaType = "document"
)

// RepairMedia is a photo, video, or document attached to a ticket.
type RepairMedia struct {
	URL       string          `bson:"url" json:"url"`
	Type      RepairMediaType `bson:"type" json:"type"`
	Name      string          `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time       `bson:"created_at" json:"createdAt"`
	CreatedBy string          `bson:"created_by" json:"createdBy"`
}

// Repair is a service ticket, optionally linked to the order it services.
type Repair struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID string             `bson:"tenant_id" json:"tenantId"`

	OrderID           *primitive.ObjectID `bson:"order_id,omitempty" json:"orderId,omitempty"`
	ManualOrderNumber string              `bson:"manual_order_number,omitempty" json:"manualOrderNumber,omitempty"`

	ClientName    string `bson:"client_name" json:"clientName"`
	ClientPhone   string `bson:"client_phone,omitempty" json:"clientPhone,omitempty"`
	ClientAddress string `bson:"client_address,omitempty" json:"clientAddress,omitempty"`
	Region        string `bson:"region,omitempty" json:"region,omitempty"`

	ContactedAt       time.Time      `bson:"contacted_at" json:"contactedAt"`
	Problem           string         `bson:"problem" json:"problem"`
	WarrantyStatus    WarrantyStatus `bson:"warranty_status" json:"warrantyStatus"`
	PaymentNote       string         `bson:"payment_note,omitempty" json:"paymentNote,omitempty"`
	EstimatedWorkDays int            `bson:"estimated_work_days" json:"estimatedWorkDays"`
	VisitTime         string         `bson:"visit_time,omitempty" json:"visitTime,omitempty"`

	Status RepairStatus `bson:"status" json:"status"`

	Installers       []primitive.ObjectID `bson:"installers,omitempty" json:"installers,omitempty"`
	InstallDateStart *time.Time           `bson:"install_date_start,omitempty" json:"installDateStart,omitempty"`
	InstallDateEnd   *time.Time           `bson:"install_date_end,omitempty" json:"installDateEnd,omitempty"`
	SchedulingNotes  string               `bson:"scheduling_notes,omitempty" json:"schedulingNotes,omitempty"`
	InstallTakeList  []TakeItem           `bson:"install_take_list,omitempty" json:"installTakeList,omitempty"`

	Issue        OrderIssue   `bson:"issue" json:"issue"`
	FinalInvoice FinalInvoice `bson:"final_invoice" json:"finalInvoice"`

	Notes []RepairNote  `bson:"notes,omitempty" json:"notes,omitempty"`
	Media []RepairMedia `bson:"media,omitempty" json:"media,omitempty"`

	Revision  int64     `bson:"revision" json:"revision"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AddNote appends a line to the ticket's note stream.
func (r *Repair) AddNote(text, actor string, at time.Time) {
	r.Notes = append(r.Notes, RepairNote{Text: text, CreatedAt: at, CreatedBy: actor})
}
