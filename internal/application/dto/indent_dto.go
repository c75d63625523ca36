package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// DateLayout formato de fechas sin hora (required_date).
const DateLayout = "2006-01-02"

// IndentItemRequest línea de la solicitud.
type IndentItemRequest struct {
	ItemID         string          `json:"item_id"`
	ItemName       string          `json:"item_name" validate:"required,max=200"`
	Description    string          `json:"description"`
	Quantity       int64           `json:"quantity" validate:"required,gt=0"`
	Unit           string          `json:"unit" validate:"max=20"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// CreateIndentRequest body para POST /api/indents.
type CreateIndentRequest struct {
	Title        string              `json:"title" validate:"required,max=200"`
	Department   string              `json:"department" validate:"required,max=100"`
	Priority     string              `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RequiredDate string              `json:"required_date" validate:"required,datetime=2006-01-02"`
	Notes        string              `json:"notes"`
	AssignedTo   string              `json:"assigned_to"`
	Items        []IndentItemRequest `json:"items" validate:"required,min=1,dive"`
}

// RejectIndentRequest body para POST /api/indents/:id/reject.
// El motivo vacío lo rechaza el caso de uso (REASON_REQUIRED).
type RejectIndentRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// IndentItemResponse línea de la solicitud.
type IndentItemResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id,omitempty"`
	ItemName       string          `json:"item_name"`
	Description    string          `json:"description,omitempty"`
	Quantity       int64           `json:"quantity"`
	Unit           string          `json:"unit"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// IndentResponse solicitud con sus líneas.
type IndentResponse struct {
	ID              string               `json:"id"`
	Number          string               `json:"number"`
	Title           string               `json:"title"`
	Department      string               `json:"department"`
	Priority        string               `json:"priority"`
	RequiredDate    string               `json:"required_date"`
	Status          string               `json:"status"`
	Notes           string               `json:"notes,omitempty"`
	RequestedBy     string               `json:"requested_by"`
	AssignedTo      string               `json:"assigned_to,omitempty"`
	ApprovedBy      string               `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time           `json:"approved_at,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Items           []IndentItemResponse `json:"items"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// IndentFromEntity mapea la solicitud. nil devuelve nil.
func IndentFromEntity(in *entity.PurchaseIndent) *IndentResponse {
	if in == nil {
		return nil
	}
	items := make([]IndentItemResponse, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, IndentItemResponse{
			ID:             it.ID,
			ItemID:         it.ItemID,
			ItemName:       it.ItemName,
			Description:    it.Description,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			EstimatedPrice: it.EstimatedPrice,
			TotalPrice:     it.TotalPrice,
		})
	}
	return &IndentResponse{
		ID:              in.ID,
		Number:          in.Number,
		Title:           in.Title,
		Department:      in.Department,
		Priority:        in.Priority,
		RequiredDate:    in.RequiredDate.Format(DateLayout),
		Status:          in.Status,
		Notes:           in.Notes,
		RequestedBy:     in.RequestedBy,
		AssignedTo:      in.AssignedTo,
		ApprovedBy:      in.ApprovedBy,
		ApprovedAt:      in.ApprovedAt,
		RejectionReason: in.RejectionReason,
		TotalAmount:     in.TotalAmount,
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
		Items:           items,
	}
}

// IndentListResponse página de solicitudes.
type IndentListResponse struct {
	Page    PageResponse      `json:"page"`
	Indents []*IndentResponse `json:"indents"`
}
