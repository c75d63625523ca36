package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prioridades de una solicitud de compra.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Estados de la solicitud. Rejected y Completed son terminales.
const (
	IndentStatusPending   = "pending"
	IndentStatusApproved  = "approved"
	IndentStatusRejected  = "rejected"
	IndentStatusCompleted = "completed"
)

// PurchaseIndent solicitud interna de compra con flujo de aprobación.
// RejectionReason solo si Status == rejected; ApprovedBy/ApprovedAt solo desde approved.
type PurchaseIndent struct {
	ID              string
	Number          string
	Title           string
	Department      string
	Priority        string
	RequiredDate    time.Time
	Status          string
	Notes           string
	RequestedBy     string
	AssignedTo      string
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []IndentItem
}

// IndentItem línea de la solicitud.
type IndentItem struct {
	ID             string
	IndentID       string
	ItemID         string
	ItemName       string
	Description    string
	Quantity       int64
	Unit           string
	EstimatedPrice decimal.Decimal
	TotalPrice     decimal.Decimal
	CreatedAt      time.Time
}

// ValidPriority valida la prioridad recibida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CanTransitionIndent tabla de transiciones legales.
func CanTransitionIndent(from, to string) bool {
	switch from {
	case IndentStatusPending:
		return to == IndentStatusApproved || to == IndentStatusRejected
	case IndentStatusApproved:
		return to == IndentStatusCompleted
	}
	return false
}

// IndentTotal recalcula TotalPrice de cada línea y devuelve la suma quantity * estimatedPrice.
func IndentTotal(items []IndentItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].TotalPrice = items[i].EstimatedPrice.Mul(decimal.NewFromInt(items[i].Quantity))
		total = total.Add(items[i].TotalPrice)
	}
	return total
}

// IndentStatusChange parámetros de una transición condicional.
type IndentStatusChange struct {
	From            string
	To              string
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string
	At              time.Time
}
