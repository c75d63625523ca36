package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de eventos de dominio emitidos por el núcleo.
const (
	EventTransactionRecorded   = "transaction_recorded"
	EventGatePassStatusChanged = "gate_pass_status_changed"
	EventGatePassItemReturned  = "gate_pass_item_returned"
	EventIndentStatusChanged   = "indent_status_changed"
)

// Event sobre de un evento de dominio. Payload es uno de los tipos *Payload de abajo.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id,omitempty"`
	Payload    any       `json:"payload"`
}

// TransactionRecordedPayload se emite tras confirmar una transacción del libro.
type TransactionRecordedPayload struct {
	TransactionID string `json:"transaction_id"`
	Number        string `json:"number"`
	Type          string `json:"type"`
	ItemID        string `json:"item_id,omitempty"`
	Quantity      int64  `json:"quantity"`
	NewQuantity   *int64 `json:"new_quantity,omitempty"`
	DriftDetected bool   `json:"drift_detected,omitempty"`
}

// GatePassStatusChangedPayload transición de un pase.
type GatePassStatusChangedPayload struct {
	GatePassID string `json:"gate_pass_id"`
	Number     string `json:"number"`
	From       string `json:"from"`
	To         string `json:"to"`
	Reason     string `json:"reason,omitempty"`
}

// GatePassItemReturnedPayload devolución parcial o total de una línea de pase.
type GatePassItemReturnedPayload struct {
	GatePassID       string `json:"gate_pass_id"`
	Number           string `json:"number"`
	GatePassItemID   string `json:"gate_pass_item_id"`
	ItemID           string `json:"item_id,omitempty"`
	ItemName         string `json:"item_name"`
	Quantity         int64  `json:"quantity"`
	ReturnedQuantity int64  `json:"returned_quantity"`
}

// IndentStatusChangedPayload transición de una solicitud. Items se incluye al completar
// para que el libro registre la recepción de lo pedido.
type IndentStatusChangedPayload struct {
	IndentID string         `json:"indent_id"`
	Number   string         `json:"number"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Reason   string         `json:"reason,omitempty"`
	Items    []ReceivedLine `json:"items,omitempty"`
}

// ReceivedLine línea recibida de una solicitud completada.
type ReceivedLine struct {
	ItemID    string          `json:"item_id,omitempty"`
	ItemName  string          `json:"item_name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
