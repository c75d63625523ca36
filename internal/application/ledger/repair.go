package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// Resultados de ReconcileRepairItem.
const (
	ReconcileMerged   = "merged"   // cantidad sumada al artículo normal y artículo de reparación eliminado
	ReconcilePromoted = "promoted" // sin artículo normal: se quitó la bandera de reparación
	ReconcileNoop     = "noop"     // ya reconciliado (reintento)
)

// RepairResult resultado de SendToRepair.
type RepairResult struct {
	Item        *entity.InventoryItem // artículo normal ya descontado
	RepairItem  *entity.InventoryItem // gemelo en reparación con la cantidad acreditada
	Transaction *entity.Transaction
	Warnings    []error
}

// ReconcileResult resultado de ReconcileRepairItem.
type ReconcileResult struct {
	Outcome string
	Item    *entity.InventoryItem // artículo resultante (normal fusionado o promovido)
}

// SendToRepair envía qty unidades de un artículo normal a reparación: descuenta el stock principal,
// acredita (o crea) el gemelo marcado IsRepairing y registra una salida con referencia repair.
// Todo ocurre en una sola unidad atómica.
func (uc *UseCase) SendToRepair(ctx context.Context, actor entity.Identity, itemID string, qty int64, notes string) (*RepairResult, error) {
	if err := access.Require(actor, access.ActionReconcileRepair); err != nil {
		return nil, err
	}
	if itemID == "" || qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.cfg.Clock()
	res := &RepairResult{}
	t := &entity.Transaction{
		ID:            uuid.New().String(),
		Type:          entity.TransactionTypeOutward,
		ItemID:        itemID,
		Quantity:      qty,
		ReferenceType: entity.ReferenceRepair,
		ReferenceID:   itemID,
		Notes:         notes,
		Flags:         entity.ItemFlags{IsRepairing: true},
		CreatedBy:     actor.ID,
		CreatedAt:     now,
	}
	_, err := uc.numbers.WithNumber(ctx, entity.SequenceScopeTransaction, now, func(number string) error {
		t.Number = number
		return uc.inTx(ctx, func(ctx context.Context, items repository.InventoryItemRepository, txs repository.TransactionRepository) error {
			item, err := items.GetByID(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			if !item.IsNormal() {
				return fmt.Errorf("el artículo ya no pertenece al stock principal: %w", domain.ErrInvalidInput)
			}
			if qty > item.Quantity {
				return domain.ErrInsufficientStock
			}
			if err := items.UpdateQuantity(ctx, item.ID, item.Version, item.Quantity-qty); err != nil {
				return err
			}
			item.Quantity -= qty
			item.Version++

			twin, err := items.FindRepairTwin(ctx, entity.NormalizeItemName(item.Name))
			if err != nil {
				return err
			}
			if twin == nil {
				twin = &entity.InventoryItem{
					ID:          uuid.New().String(),
					Name:        item.Name,
					Description: item.Description,
					Category:    item.Category,
					Unit:        item.Unit,
					Quantity:    qty,
					UnitPrice:   item.UnitPrice,
					Location:    item.Location,
					Supplier:    item.Supplier,
					Status:      entity.ItemStatusActive,
					Flags:       entity.ItemFlags{IsRepairing: true},
					Version:     1,
					CreatedBy:   actor.ID,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := items.Create(ctx, twin); err != nil {
					return err
				}
			} else {
				if err := items.UpdateQuantity(ctx, twin.ID, twin.Version, twin.Quantity+qty); err != nil {
					return err
				}
				twin.Quantity += qty
				twin.Version++
			}

			t.UnitPrice = item.UnitPrice
			t.TotalAmount = item.UnitPrice.Mul(decimal.NewFromInt(qty))
			t.DisplayName = item.Name
			if err := txs.Create(ctx, t); err != nil {
				return err
			}
			res.Item, res.RepairItem = item, twin
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	res.Transaction = t
	uc.metrics.TransactionRecorded(t.Type)
	uc.log.Info().Str("item_id", itemID).Str("repair_item_id", res.RepairItem.ID).Int64("qty", qty).Msg("artículo enviado a reparación")
	newQty := res.Item.Quantity
	if err := uc.publish(ctx, entity.Event{
		Type:       entity.EventTransactionRecorded,
		OccurredAt: now,
		ActorID:    actor.ID,
		Payload: entity.TransactionRecordedPayload{
			TransactionID: t.ID,
			Number:        t.Number,
			Type:          t.Type,
			ItemID:        t.ItemID,
			Quantity:      t.Quantity,
			NewQuantity:   &newQty,
		},
	}); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	return res, nil
}

// ReconcileRepairItem devuelve al stock principal un artículo reparado. Si existe un artículo
// normal con el mismo nombre normalizado se le suma la cantidad y el de reparación se elimina;
// si no, se le quita la bandera de reparación. Ambas ramas son una sola unidad atómica
// condicionada a la versión leída, así que un reintento completa la fusión o no hace nada.
func (uc *UseCase) ReconcileRepairItem(ctx context.Context, actor entity.Identity, repairItemID string) (*ReconcileResult, error) {
	if err := access.Require(actor, access.ActionReconcileRepair); err != nil {
		return nil, err
	}
	if repairItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	res := &ReconcileResult{}
	err := uc.inTx(ctx, func(ctx context.Context, items repository.InventoryItemRepository, _ repository.TransactionRepository) error {
		*res = ReconcileResult{}
		repair, err := items.GetByID(ctx, repairItemID)
		if err != nil {
			return err
		}
		if repair == nil {
			// ya fusionado en un intento anterior
			res.Outcome = ReconcileNoop
			return nil
		}
		if !repair.Flags.IsRepairing {
			res.Outcome = ReconcileNoop
			res.Item = repair
			return nil
		}
		primary, err := items.FindNormalByName(ctx, entity.NormalizeItemName(repair.Name), repair.ID)
		if err != nil {
			return err
		}
		if primary == nil {
			flags := repair.Flags
			flags.IsRepairing = false
			if err := items.UpdateFlags(ctx, repair.ID, repair.Version, flags); err != nil {
				return err
			}
			repair.Flags = flags
			repair.Version++
			res.Outcome, res.Item = ReconcilePromoted, repair
			return nil
		}
		if err := items.UpdateQuantity(ctx, primary.ID, primary.Version, primary.Quantity+repair.Quantity); err != nil {
			return err
		}
		if err := items.Delete(ctx, repair.ID, repair.Version); err != nil {
			return err
		}
		primary.Quantity += repair.Quantity
		primary.Version++
		res.Outcome, res.Item = ReconcileMerged, primary
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("repair_item_id", repairItemID).Str("outcome", res.Outcome).Msg("reconciliación de reparación")
	return res, nil
}
