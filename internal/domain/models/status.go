// internal/domain/models/status.go
package models

// OrderStatus is the closed set of workflow states an order moves through.
// The happy path runs offer → materials_pending → production_pending →
// in_production → ready_for_install → scheduled → pending_approval →
// completed. Cancellation is reachable from any non-terminal state.
type OrderStatus string

const (
	StatusOffer             OrderStatus = "offer"
	StatusMaterialsPending  OrderStatus = "materials_pending"
	StatusProductionPending OrderStatus = "production_pending"
	StatusInProduction      OrderStatus = "in_production"
	StatusReadyForInstall   OrderStatus = "ready_for_install"
	StatusScheduled         OrderStatus = "scheduled"
	StatusInProgress        OrderStatus = "in_progress"
	StatusPendingApproval   OrderStatus = "pending_approval"
	StatusCompleted         OrderStatus = "completed"
	StatusCancelled         OrderStatus = "cancelled"
)

// Legacy statuses still present on old documents. They are accepted when
// read back but are never written by new code and are never a valid
// transition target.
const (
	StatusLegacyNew        OrderStatus = "new"
	StatusLegacyProduction OrderStatus = "production"
	StatusLegacyInstall    OrderStatus = "install"
)

var allStatuses = map[OrderStatus]bool{
	StatusOffer:             true,
	StatusMaterialsPending:  true,
	StatusProductionPending: true,
	StatusInProduction:      true,
	StatusReadyForInstall:   true,
	StatusScheduled:         true,
	StatusInProgress:        true,
	StatusPendingApproval:   true,
	StatusCompleted:         true,
	StatusCancelled:         true,
	StatusLegacyNew:         true,
	StatusLegacyProduction:  true,
	StatusLegacyInstall:     true,
}

// IsValid reports whether s is a known status, legacy values included.
func (s OrderStatus) IsValid() bool { return allStatuses[s] }

// IsLegacy reports whether s is one of the retired alias statuses.
func (s OrderStatus) IsLegacy() bool {
	return s == StatusLegacyNew || s == StatusLegacyProduction || s == StatusLegacyInstall
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Normalize maps legacy aliases onto their modern equivalent so transition
// checks on old documents behave like the states they stood for.
func (s OrderStatus) Normalize() OrderStatus {
	switch s {
	case StatusLegacyNew:
		return StatusOffer
	case StatusLegacyProduction:
		return StatusInProduction
	case StatusLegacyInstall:
		return StatusReadyForInstall
	default:
		return s
	}
}

// transitions lists the legal next states per (normalized) current state.
// Cancellation is handled separately in CanTransitionTo.
var transitions = map[OrderStatus][]OrderStatus{
	StatusOffer:             {StatusMaterialsPending, StatusProductionPending},
	StatusMaterialsPending:  {StatusProductionPending},
	StatusProductionPending: {StatusInProduction},
	StatusInProduction:      {StatusReadyForInstall},
	StatusReadyForInstall:   {StatusScheduled, StatusInProgress},
	StatusScheduled:         {StatusInProgress, StatusPendingApproval},
	StatusInProgress:        {StatusScheduled, StatusPendingApproval},
	StatusPendingApproval:   {StatusCompleted, StatusScheduled, StatusInProgress},
}

// InitialStatus picks a new order's starting state: waiting on procurement
// when any material line exists, otherwise straight to the production
// bucket.
func InitialStatus(materials []MaterialLine) OrderStatus {
	if len(materials) > 0 {
		return StatusMaterialsPending
	}
	return StatusProductionPending
}

// CanTransitionTo reports whether moving from s to next is legal. Legacy
// statuses are normalized on the "from" side only; they can never be a
// target. Any non-terminal state may move to cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.IsValid() || next.IsLegacy() {
		return false
	}
	from := s.Normalize()
	if from.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == next {
			return true
		}
	}
	return false
}
