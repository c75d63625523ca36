package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// RecordInput entrada para registrar una transacción.
// ItemID vacío: entrada manual sin vínculo a inventario (solo auditoría, DisplayName obligatorio).
type RecordInput struct {
	Type               string
	ItemID             string
	Quantity           int64
	UnitPrice          decimal.Decimal
	ReferenceType      string
	ReferenceID        string
	FromLocation       string
	ToLocation         string
	PartyName          string
	InvoiceNumber      string
	Notes              string
	DisplayName        string
	Flags              entity.ItemFlags
	ExpectedReturnDate *time.Time
	IdempotencyKey     string
}

// RecordResult resultado de RecordTransaction. NewQuantity es nil si la transacción no mueve stock.
// Warnings contiene avisos no fatales (domain.ErrStockDriftDetected, fallos de publicación).
type RecordResult struct {
	Transaction *entity.Transaction
	NewQuantity *int64
	Warnings    []error
}

// Drifted indica si la escritura se truncó a cero.
func (r *RecordResult) Drifted() bool {
	for _, w := range r.Warnings {
		if errors.Is(w, domain.ErrStockDriftDetected) {
			return true
		}
	}
	return false
}

// RecordTransaction valida y agrega la transacción al libro y actualiza la cantidad del artículo
// en la misma unidad atómica. Outward mayor que el disponible devuelve domain.ErrInsufficientStock
// sin modificar nada.
func (uc *UseCase) RecordTransaction(ctx context.Context, actor entity.Identity, in RecordInput) (*RecordResult, error) {
	if err := access.Require(actor, access.ActionRecordTransaction); err != nil {
		return nil, err
	}
	return uc.record(ctx, actor.ID, in)
}

func validateRecord(in *RecordInput) error {
	if !entity.ValidTransactionType(in.Type) || in.Quantity <= 0 || in.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	if in.ReferenceType == "" {
		in.ReferenceType = entity.ReferenceManual
	}
	switch in.ReferenceType {
	case entity.ReferenceGatePass, entity.ReferenceIndent, entity.ReferenceManual,
		entity.ReferenceRepair, entity.ReferenceCorrection:
	default:
		return domain.ErrInvalidInput
	}
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.ItemID == "" && in.DisplayName == "" {
		return domain.ErrInvalidInput
	}
	if in.Type == entity.TransactionTypeTransfer && in.ItemID != "" &&
		(in.FromLocation == "" || in.ToLocation == "" || in.FromLocation == in.ToLocation) {
		return domain.ErrInvalidInput
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, actorID string, in RecordInput) (*RecordResult, error) {
	if err := validateRecord(&in); err != nil {
		return nil, err
	}
	now := uc.cfg.Clock()
	t := &entity.Transaction{
		ID:                 uuid.New().String(),
		Type:               in.Type,
		ItemID:             in.ItemID,
		Quantity:           in.Quantity,
		UnitPrice:          in.UnitPrice,
		TotalAmount:        in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity)),
		ReferenceType:      in.ReferenceType,
		ReferenceID:        in.ReferenceID,
		FromLocation:       in.FromLocation,
		ToLocation:         in.ToLocation,
		PartyName:          in.PartyName,
		InvoiceNumber:      in.InvoiceNumber,
		Notes:              in.Notes,
		DisplayName:        in.DisplayName,
		Flags:              in.Flags,
		ExpectedReturnDate: in.ExpectedReturnDate,
		IdempotencyKey:     in.IdempotencyKey,
		CreatedBy:          actorID,
		CreatedAt:          now,
	}

	res := &RecordResult{Transaction: t}
	var prev int64
	_, err := uc.numbers.WithNumber(ctx, entity.SequenceScopeTransaction, now, func(number string) error {
		t.Number = number
		return uc.inTx(ctx, func(ctx context.Context, items repository.InventoryItemRepository, txs repository.TransactionRepository) error {
			res.NewQuantity = nil
			res.Warnings = nil
			if t.AffectsStock() {
				item, err := items.GetByID(ctx, t.ItemID)
				if err != nil {
					return err
				}
				if item == nil {
					return domain.ErrNotFound
				}
				if t.Type == entity.TransactionTypeOutward && t.Quantity > item.Quantity {
					return domain.ErrInsufficientStock
				}
				next, drift := clampQuantity(item.Quantity + t.Delta())
				if drift {
					res.Warnings = append(res.Warnings, domain.ErrStockDriftDetected)
				}
				if err := items.UpdateQuantity(ctx, item.ID, item.Version, next); err != nil {
					return err
				}
				prev = item.Quantity
				res.NewQuantity = &next
				if t.DisplayName == "" {
					t.DisplayName = item.Name
				}
			}
			return txs.Create(ctx, t)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.TransactionRecorded(t.Type)
	drift := res.Drifted()
	if drift {
		uc.metrics.StockDrift()
		uc.log.Warn().
			Str("item_id", t.ItemID).
			Str("transaction", t.Number).
			Int64("previous_quantity", prev).
			Int64("computed_quantity", prev+t.Delta()).
			Msg("stock negativo truncado a 0; revisar historial del artículo")
	}
	if err := uc.publish(ctx, entity.Event{
		Type:       entity.EventTransactionRecorded,
		OccurredAt: now,
		ActorID:    actorID,
		Payload: entity.TransactionRecordedPayload{
			TransactionID: t.ID,
			Number:        t.Number,
			Type:          t.Type,
			ItemID:        t.ItemID,
			Quantity:      t.Quantity,
			NewQuantity:   res.NewQuantity,
			DriftDetected: drift,
		},
	}); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	return res, nil
}

// clampQuantity aplica el piso de 0. Un resultado negativo indica un error previo de validación
// (filas heredadas con cantidad negativa) y se informa como desviación.
func clampQuantity(q int64) (int64, bool) {
	if q < 0 {
		return 0, true
	}
	return q, false
}
