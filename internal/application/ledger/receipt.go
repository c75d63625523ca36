package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jhoicas/wms-core/internal/application/ports"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
)

var _ ports.EventHandler = (*GoodsReceipt)(nil)

// GoodsReceipt suscriptor del libro: convierte la devolución de material de un pase y la
// recepción de una solicitud completada en entradas Inward. Los flujos de documentos nunca
// llaman al libro directamente.
type GoodsReceipt struct {
	uc *UseCase
}

// NewGoodsReceipt construye el suscriptor sobre el libro.
func NewGoodsReceipt(uc *UseCase) *GoodsReceipt {
	return &GoodsReceipt{uc: uc}
}

// Handle procesa el evento. Un evento redistribuido no se registra dos veces: la clave de
// idempotencia es el ID del evento más la línea.
func (h *GoodsReceipt) Handle(ctx context.Context, ev entity.Event) error {
	switch p := ev.Payload.(type) {
	case entity.GatePassItemReturnedPayload:
		if p.ItemID == "" || p.Quantity <= 0 {
			return nil
		}
		return h.receive(ctx, ev, 0, RecordInput{
			Type:          entity.TransactionTypeInward,
			ItemID:        p.ItemID,
			Quantity:      p.Quantity,
			ReferenceType: entity.ReferenceGatePass,
			ReferenceID:   p.GatePassID,
			Notes:         "devolución " + p.Number,
			DisplayName:   p.ItemName,
		})
	case entity.IndentStatusChangedPayload:
		if p.To != entity.IndentStatusCompleted {
			return nil
		}
		var errs []error
		for i, line := range p.Items {
			if line.ItemID == "" || line.Quantity <= 0 {
				continue
			}
			err := h.receive(ctx, ev, i, RecordInput{
				Type:          entity.TransactionTypeInward,
				ItemID:        line.ItemID,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				ReferenceType: entity.ReferenceIndent,
				ReferenceID:   p.IndentID,
				Notes:         "recepción " + p.Number,
				DisplayName:   line.ItemName,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

func (h *GoodsReceipt) receive(ctx context.Context, ev entity.Event, line int, in RecordInput) error {
	if ev.ID != "" {
		in.IdempotencyKey = ev.ID + ":" + strconv.Itoa(line)
	}
	_, err := h.uc.record(ctx, ev.ActorID, in)
	if errors.Is(err, domain.ErrAlreadyRecorded) {
		h.uc.log.Debug().Str("event_id", ev.ID).Int("line", line).Msg("recepción ya registrada")
		return nil
	}
	if err != nil {
		return fmt.Errorf("recepción %s línea %d: %w", ev.Type, line, err)
	}
	return nil
}
