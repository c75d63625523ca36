package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de inventario.
const (
	TransactionTypeInward     = "inward"
	TransactionTypeOutward    = "outward"
	TransactionTypeAdjustment = "adjustment"
	TransactionTypeTransfer   = "transfer"
)

// Referencias de origen de una transacción.
const (
	ReferenceGatePass   = "gate_pass"
	ReferenceIndent     = "indent"
	ReferenceManual     = "manual"
	ReferenceRepair     = "repair"
	ReferenceCorrection = "correction"
)

// Transaction entrada inmutable del libro (append-only). Las correcciones se registran
// como entradas compensatorias con ReferenceType = correction.
type Transaction struct {
	ID                 string
	Number             string
	Type               string
	ItemID             string // vacío para entradas manuales sin vínculo a inventario
	Quantity           int64  // siempre > 0
	UnitPrice          decimal.Decimal
	TotalAmount        decimal.Decimal
	ReferenceType      string
	ReferenceID        string
	FromLocation       string
	ToLocation         string
	PartyName          string
	InvoiceNumber      string
	Notes              string
	DisplayName        string // nombre mostrado cuando no hay ItemID
	Flags              ItemFlags
	ExpectedReturnDate *time.Time
	IdempotencyKey     string // único si no está vacío; evita registrar dos veces el mismo evento
	CreatedBy          string
	CreatedAt          time.Time
}

// AffectsStock indica si la transacción mueve InventoryItem.Quantity.
// Solo inward/outward con artículo vinculado; ajustes y traslados son de auditoría.
func (t *Transaction) AffectsStock() bool {
	if t.ItemID == "" {
		return false
	}
	return t.Type == TransactionTypeInward || t.Type == TransactionTypeOutward
}

// Delta cambio firmado sobre la cantidad del artículo.
func (t *Transaction) Delta() int64 {
	switch t.Type {
	case TransactionTypeInward:
		return t.Quantity
	case TransactionTypeOutward:
		return -t.Quantity
	}
	return 0
}

// ValidTransactionType valida el tipo recibido.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeInward, TransactionTypeOutward, TransactionTypeAdjustment, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionSummary totales por periodo.
type TransactionSummary struct {
	TotalInward      int64
	TotalOutward     int64
	TotalAdjustments int
	TotalTransfers   int
	From             *time.Time
	To               *time.Time
}
