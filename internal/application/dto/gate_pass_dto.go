package dto

import (
	"time"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// GatePassItemRequest línea del pase.
type GatePassItemRequest struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name" validate:"required,max=200"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Unit        string `json:"unit" validate:"max=20"`
}

// CreateGatePassRequest body para POST /api/gate-passes.
type CreateGatePassRequest struct {
	Type               string                `json:"type" validate:"required,oneof=inward outward returnable non-returnable"`
	PartyName          string                `json:"party_name" validate:"required,max=200"`
	PartyContact       string                `json:"party_contact"`
	VehicleNumber      string                `json:"vehicle_number"`
	DriverName         string                `json:"driver_name"`
	DriverContact      string                `json:"driver_contact"`
	Purpose            string                `json:"purpose"`
	ValidFrom          time.Time             `json:"valid_from" validate:"required"`
	ValidTo            time.Time             `json:"valid_to" validate:"required"`
	ExpectedReturnDate *time.Time            `json:"expected_return_date"`
	Notes              string                `json:"notes"`
	Items              []GatePassItemRequest `json:"items" validate:"dive"`
}

// SetGatePassStatusRequest body para PATCH /api/gate-passes/:id/status.
type SetGatePassStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason"`
}

// RecordReturnRequest body para POST /api/gate-passes/items/:itemId/return.
type RecordReturnRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// VerifyOfflineRequest body para POST /api/gate-passes/verify-token.
type VerifyOfflineRequest struct {
	Token string `json:"token" validate:"required"`
}

// GatePassItemResponse línea del pase.
type GatePassItemResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id,omitempty"`
	ItemName         string    `json:"item_name"`
	Description      string    `json:"description,omitempty"`
	Quantity         int64     `json:"quantity"`
	Unit             string    `json:"unit"`
	ReturnedQuantity int64     `json:"returned_quantity"`
	Outstanding      int64     `json:"outstanding"`
	CreatedAt        time.Time `json:"created_at"`
}

// GatePassResponse pase con sus líneas.
type GatePassResponse struct {
	ID                 string                 `json:"id"`
	Number             string                 `json:"number"`
	Type               string                 `json:"type"`
	PartyName          string                 `json:"party_name"`
	PartyContact       string                 `json:"party_contact,omitempty"`
	VehicleNumber      string                 `json:"vehicle_number,omitempty"`
	DriverName         string                 `json:"driver_name,omitempty"`
	DriverContact      string                 `json:"driver_contact,omitempty"`
	Purpose            string                 `json:"purpose,omitempty"`
	ValidFrom          time.Time              `json:"valid_from"`
	ValidTo            time.Time              `json:"valid_to"`
	ExpectedReturnDate *time.Time             `json:"expected_return_date,omitempty"`
	Status             string                 `json:"status"`
	Notes              string                 `json:"notes,omitempty"`
	CreatedBy          string                 `json:"created_by"`
	ApprovedBy         string                 `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time             `json:"approved_at,omitempty"`
	RejectionReason    string                 `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Items              []GatePassItemResponse `json:"items"`
	Warnings           []string               `json:"warnings,omitempty"`
}

// GatePassItemFromEntity mapea una línea.
func GatePassItemFromEntity(it *entity.GatePassItem) GatePassItemResponse {
	return GatePassItemResponse{
		ID:               it.ID,
		ItemID:           it.ItemID,
		ItemName:         it.ItemName,
		Description:      it.Description,
		Quantity:         it.Quantity,
		Unit:             it.Unit,
		ReturnedQuantity: it.ReturnedQuantity,
		Outstanding:      it.Outstanding(),
		CreatedAt:        it.CreatedAt,
	}
}

// GatePassFromEntity mapea el pase. nil devuelve nil.
func GatePassFromEntity(p *entity.GatePass) *GatePassResponse {
	if p == nil {
		return nil
	}
	items := make([]GatePassItemResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, GatePassItemFromEntity(&p.Items[i]))
	}
	return &GatePassResponse{
		ID:                 p.ID,
		Number:             p.Number,
		Type:               p.Type,
		PartyName:          p.PartyName,
		PartyContact:       p.PartyContact,
		VehicleNumber:      p.VehicleNumber,
		DriverName:         p.DriverName,
		DriverContact:      p.DriverContact,
		Purpose:            p.Purpose,
		ValidFrom:          p.ValidFrom,
		ValidTo:            p.ValidTo,
		ExpectedReturnDate: p.ExpectedReturnDate,
		Status:             p.Status,
		Notes:              p.Notes,
		CreatedBy:          p.CreatedBy,
		ApprovedBy:         p.ApprovedBy,
		ApprovedAt:         p.ApprovedAt,
		RejectionReason:    p.RejectionReason,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Items:              items,
	}
}

// GatePassListResponse página de pases.
type GatePassListResponse struct {
	Page       PageResponse        `json:"page"`
	GatePasses []*GatePassResponse `json:"gate_passes"`
}

// ReturnResponse resultado de registrar una devolución.
type ReturnResponse struct {
	Item      GatePassItemResponse `json:"item"`
	Pass      *GatePassResponse    `json:"gate_pass"`
	Completed bool                 `json:"completed"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// VerificationResponse resultado de verificar un pase en portería.
type VerificationResponse struct {
	Number   string `json:"number"`
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

// VerificationFromEntity mapea la verificación.
func VerificationFromEntity(v entity.Verification) VerificationResponse {
	return VerificationResponse{Number: v.Number, Verified: v.Verified, Reason: v.Reason}
}

// VerificationTokenResponse token firmado para verificación offline (QR).
type VerificationTokenResponse struct {
	Token string `json:"token"`
}
