package gatepass

import (
	"context"
	"fmt"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// ReturnResult resultado de RecordReturn.
type ReturnResult struct {
	Item      *entity.GatePassItem
	Pass      *entity.GatePass
	Completed bool // el pase pasó a completed porque todas las líneas quedaron devueltas
	Warnings  []error
}

// RecordReturn suma qty a la cantidad devuelta de una línea de un pase retornable aprobado.
// La suma es condicional en el almacén: nunca supera la cantidad emitida (domain.ErrOverReturn).
// Si con esta devolución todas las líneas quedan devueltas, el pase se completa en la misma
// transacción. La cabecera se lee bloqueada: devoluciones concurrentes del mismo pase se
// serializan y la última en confirmar ve todas las líneas devueltas.
func (uc *UseCase) RecordReturn(ctx context.Context, actor entity.Identity, passItemID string, qty int64) (*ReturnResult, error) {
	if err := access.Require(actor, access.ActionReturnGatePass); err != nil {
		return nil, err
	}
	if passItemID == "" || qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.cfg.Clock()
	res := &ReturnResult{}
	err := uc.inTx(ctx, func(ctx context.Context, passes repository.GatePassRepository) error {
		*res = ReturnResult{}
		line, err := passes.GetItem(ctx, passItemID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		pass, err := passes.GetByIDForUpdate(ctx, line.GatePassID)
		if err != nil {
			return err
		}
		if pass == nil {
			return domain.ErrNotFound
		}
		if pass.Type != entity.GatePassTypeReturnable {
			return fmt.Errorf("el pase %s no es retornable: %w", pass.Number, domain.ErrInvalidInput)
		}
		if pass.Status != entity.GatePassStatusApproved {
			return fmt.Errorf("devolución sobre pase %s: %w", pass.Status, domain.ErrInvalidTransition)
		}
		updated, err := passes.AddReturned(ctx, passItemID, qty)
		if err != nil {
			return err
		}
		for i := range pass.Items {
			if pass.Items[i].ID == updated.ID {
				pass.Items[i] = *updated
			}
		}
		if pass.FullyReturned() {
			ch := entity.GatePassStatusChange{From: entity.GatePassStatusApproved, To: entity.GatePassStatusCompleted, At: now}
			if err := passes.UpdateStatus(ctx, pass.ID, ch); err != nil {
				return err
			}
			applyChange(pass, ch)
			res.Completed = true
		}
		res.Item, res.Pass = updated, pass
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("number", res.Pass.Number).
		Str("line", passItemID).
		Int64("qty", qty).
		Int64("returned", res.Item.ReturnedQuantity).
		Bool("completed", res.Completed).
		Msg("devolución registrada")
	if err := uc.publish(ctx, entity.Event{
		Type:       entity.EventGatePassItemReturned,
		OccurredAt: now,
		ActorID:    actor.ID,
		Payload: entity.GatePassItemReturnedPayload{
			GatePassID:       res.Pass.ID,
			Number:           res.Pass.Number,
			GatePassItemID:   res.Item.ID,
			ItemID:           res.Item.ItemID,
			ItemName:         res.Item.ItemName,
			Quantity:         qty,
			ReturnedQuantity: res.Item.ReturnedQuantity,
		},
	}); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	if res.Completed {
		uc.metrics.StatusTransition(document, entity.GatePassStatusCompleted, "ok")
		if err := uc.publish(ctx, statusEvent(res.Pass, entity.GatePassStatusApproved, "", actor.ID, now)); err != nil {
			res.Warnings = append(res.Warnings, err)
		}
	}
	return res, nil
}
