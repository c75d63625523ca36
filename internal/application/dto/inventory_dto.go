package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// CreateItemRequest body para POST /api/inventory/items.
type CreateItemRequest struct {
	ItemCode    string          `json:"item_code" validate:"omitempty,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"max=100"`
	Unit        string          `json:"unit" validate:"max=20"`
	Quantity    int64           `json:"quantity" validate:"min=0"`
	MinQuantity int64           `json:"min_quantity" validate:"min=0"`
	MaxQuantity int64           `json:"max_quantity" validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Location    string          `json:"location"`
	Supplier    string          `json:"supplier"`
	Status      string          `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
	IsRepairing bool            `json:"is_repairing"`
	IsOther     bool            `json:"is_other"`
}

// ItemResponse artículo de inventario.
type ItemResponse struct {
	ID          string          `json:"id"`
	ItemCode    string          `json:"item_code,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Unit        string          `json:"unit"`
	Quantity    int64           `json:"quantity"`
	MinQuantity int64           `json:"min_quantity"`
	MaxQuantity int64           `json:"max_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Location    string          `json:"location,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	Status      string          `json:"status"`
	Kind        string          `json:"kind"`
	IsRepairing bool            `json:"is_repairing"`
	IsOther     bool            `json:"is_other"`
	Version     int64           `json:"version"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemFromEntity mapea el artículo. nil devuelve nil.
func ItemFromEntity(it *entity.InventoryItem) *ItemResponse {
	if it == nil {
		return nil
	}
	return &ItemResponse{
		ID:          it.ID,
		ItemCode:    it.ItemCode,
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		Unit:        it.Unit,
		Quantity:    it.Quantity,
		MinQuantity: it.MinQuantity,
		MaxQuantity: it.MaxQuantity,
		UnitPrice:   it.UnitPrice,
		Location:    it.Location,
		Supplier:    it.Supplier,
		Status:      it.Status,
		Kind:        it.Flags.Kind(),
		IsRepairing: it.Flags.IsRepairing,
		IsOther:     it.Flags.IsOther,
		Version:     it.Version,
		CreatedBy:   it.CreatedBy,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ItemsFromEntities mapea una lista de artículos.
func ItemsFromEntities(list []*entity.InventoryItem) []*ItemResponse {
	out := make([]*ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, ItemFromEntity(it))
	}
	return out
}

// RecordTransactionRequest body para POST /api/transactions.
type RecordTransactionRequest struct {
	Type               string          `json:"type" validate:"required,oneof=inward outward adjustment transfer"`
	ItemID             string          `json:"item_id"`
	Quantity           int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	ReferenceType      string          `json:"reference_type" validate:"omitempty,oneof=gate_pass indent manual repair correction"`
	ReferenceID        string          `json:"reference_id"`
	FromLocation       string          `json:"from_location"`
	ToLocation         string          `json:"to_location"`
	PartyName          string          `json:"party_name"`
	InvoiceNumber      string          `json:"invoice_number"`
	Notes              string          `json:"notes"`
	DisplayName        string          `json:"display_name" validate:"required_without=ItemID"`
	IsRepairing        bool            `json:"is_repairing"`
	IsOther            bool            `json:"is_other"`
	ExpectedReturnDate *time.Time      `json:"expected_return_date"`
	IdempotencyKey     string          `json:"idempotency_key" validate:"max=200"`
}

// TransactionResponse entrada del libro.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	Number             string          `json:"number"`
	Type               string          `json:"type"`
	ItemID             string          `json:"item_id,omitempty"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ReferenceType      string          `json:"reference_type"`
	ReferenceID        string          `json:"reference_id,omitempty"`
	FromLocation       string          `json:"from_location,omitempty"`
	ToLocation         string          `json:"to_location,omitempty"`
	PartyName          string          `json:"party_name,omitempty"`
	InvoiceNumber      string          `json:"invoice_number,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	DisplayName        string          `json:"display_name,omitempty"`
	IsRepairing        bool            `json:"is_repairing"`
	IsOther            bool            `json:"is_other"`
	ExpectedReturnDate *time.Time      `json:"expected_return_date,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TransactionFromEntity mapea la transacción. nil devuelve nil.
func TransactionFromEntity(t *entity.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:                 t.ID,
		Number:             t.Number,
		Type:               t.Type,
		ItemID:             t.ItemID,
		Quantity:           t.Quantity,
		UnitPrice:          t.UnitPrice,
		TotalAmount:        t.TotalAmount,
		ReferenceType:      t.ReferenceType,
		ReferenceID:        t.ReferenceID,
		FromLocation:       t.FromLocation,
		ToLocation:         t.ToLocation,
		PartyName:          t.PartyName,
		InvoiceNumber:      t.InvoiceNumber,
		Notes:              t.Notes,
		DisplayName:        t.DisplayName,
		IsRepairing:        t.Flags.IsRepairing,
		IsOther:            t.Flags.IsOther,
		ExpectedReturnDate: t.ExpectedReturnDate,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
	}
}

// RecordTransactionResponse resultado de registrar una transacción.
// NewQuantity es nil cuando la entrada no mueve stock.
type RecordTransactionResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	NewQuantity *int64               `json:"new_quantity,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// TransactionListResponse página de transacciones.
type TransactionListResponse struct {
	Page         PageResponse           `json:"page"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// SendToRepairRequest body para POST /api/inventory/items/:id/repair.
type SendToRepairRequest struct {
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

// RepairResponse resultado de enviar a reparación.
type RepairResponse struct {
	Item        *ItemResponse        `json:"item"`
	RepairItem  *ItemResponse        `json:"repair_item"`
	Transaction *TransactionResponse `json:"transaction"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// ReconcileResponse resultado de reconciliar un artículo de reparación.
type ReconcileResponse struct {
	Outcome string        `json:"outcome"`
	Item    *ItemResponse `json:"item,omitempty"`
}

// StatsResponse agregados de inventario.
type StatsResponse struct {
	TotalItems    int             `json:"total_items"`
	LowStock      int             `json:"low_stock"`
	OutOfStock    int             `json:"out_of_stock"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ActiveCount   int             `json:"active_count"`
	InactiveCount int             `json:"inactive_count"`
}

// StatsFromEntity mapea los agregados.
func StatsFromEntity(s *entity.InventoryStats) StatsResponse {
	return StatsResponse{
		TotalItems:    s.TotalItems,
		LowStock:      s.LowStock,
		OutOfStock:    s.OutOfStock,
		TotalValue:    s.TotalValue,
		ActiveCount:   s.ActiveCount,
		InactiveCount: s.InactiveCount,
	}
}

// SummaryResponse totales del libro en el periodo.
type SummaryResponse struct {
	TotalInward      int64      `json:"total_inward"`
	TotalOutward     int64      `json:"total_outward"`
	TotalAdjustments int        `json:"total_adjustments"`
	TotalTransfers   int        `json:"total_transfers"`
	From             *time.Time `json:"from,omitempty"`
	To               *time.Time `json:"to,omitempty"`
}

// SummaryFromEntity mapea el resumen.
func SummaryFromEntity(s *entity.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		TotalInward:      s.TotalInward,
		TotalOutward:     s.TotalOutward,
		TotalAdjustments: s.TotalAdjustments,
		TotalTransfers:   s.TotalTransfers,
		From:             s.From,
		To:               s.To,
	}
}
