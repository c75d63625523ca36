// Package indent flujo de solicitudes internas de compra (indents).
//
// Regla de auto-aprobación: una solicitud creada por admin o manager nace aprobada por su
// propio autor. Es un atajo de privilegio deliberado que omite al segundo aprobador; las
// creadas por staff quedan pendientes.
package indent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-core/internal/application/ports"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/metrics"
)

const document = "indent"

// Config parámetros del flujo.
type Config struct {
	QueryTimeout time.Duration
	Clock        func() time.Time
}

// UseCase casos de uso de solicitudes.
type UseCase struct {
	txRunner TxRunner
	indents  repository.IndentRepository
	numbers  NumberAllocator
	events   ports.EventPublisher
	log      zerolog.Logger
	metrics  *metrics.Metrics
	cfg      Config
}

// NewUseCase construye el caso de uso. events y m pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	indents repository.IndentRepository,
	numbers NumberAllocator,
	events ports.EventPublisher,
	log zerolog.Logger,
	m *metrics.Metrics,
	cfg Config,
) *UseCase {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &UseCase{
		txRunner: txRunner,
		indents:  indents,
		numbers:  numbers,
		events:   events,
		log:      log,
		metrics:  m,
		cfg:      cfg,
	}
}

func (uc *UseCase) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.cfg.QueryTimeout)
}

func (uc *UseCase) inTx(ctx context.Context, fn func(ctx context.Context, indents repository.IndentRepository) error) error {
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	return domain.StorageError(uc.txRunner.RunIndent(callCtx, func(indents repository.IndentRepository) error {
		return fn(callCtx, indents)
	}))
}

func (uc *UseCase) publish(ctx context.Context, ev entity.Event) error {
	if uc.events == nil {
		return nil
	}
	ev.ID = uuid.New().String()
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.metrics.EventPublished(ev.Type, "error")
		uc.log.Error().Err(err).Str("event", ev.Type).Msg("no se pudo publicar el evento")
		return fmt.Errorf("publicar %s: %w: %w", ev.Type, domain.ErrEventNotDelivered, err)
	}
	uc.metrics.EventPublished(ev.Type, "ok")
	return nil
}

// Result solicitud tras una operación confirmada. Warnings reúne fallos posteriores a la
// confirmación (domain.ErrEventNotDelivered); tras Complete indica que la recepción no
// llegó al libro y debe registrarse a mano.
type Result struct {
	Indent   *entity.PurchaseIndent
	Warnings []error
}

// ItemInput línea solicitada.
type ItemInput struct {
	ItemID         string
	ItemName       string
	Description    string
	Quantity       int64
	Unit           string
	EstimatedPrice decimal.Decimal
}

// CreateInput datos de la solicitud.
type CreateInput struct {
	Title        string
	Department   string
	Priority     string
	RequiredDate time.Time
	Notes        string
	AssignedTo   string
	Items        []ItemInput
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.Department) == "" || in.RequiredDate.IsZero() || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	if in.Priority == "" {
		in.Priority = entity.PriorityMedium
	}
	if !entity.ValidPriority(in.Priority) {
		return domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ItemName) == "" || it.Quantity <= 0 || it.EstimatedPrice.IsNegative() {
			return fmt.Errorf("línea %q: %w", it.ItemName, domain.ErrInvalidInput)
		}
	}
	return nil
}

// Create asigna el número IND-<año>-NNN, calcula el total y guarda la solicitud con sus líneas.
func (uc *UseCase) Create(ctx context.Context, actor entity.Identity, in CreateInput) (*Result, error) {
	if err := access.Require(actor, access.ActionCreateIndent); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := uc.cfg.Clock()
	ind := &entity.PurchaseIndent{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(in.Title),
		Department:   strings.TrimSpace(in.Department),
		Priority:     in.Priority,
		RequiredDate: in.RequiredDate,
		Status:       entity.IndentStatusPending,
		Notes:        in.Notes,
		RequestedBy:  actor.ID,
		AssignedTo:   in.AssignedTo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, it := range in.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		ind.Items = append(ind.Items, entity.IndentItem{
			ID:             uuid.New().String(),
			IndentID:       ind.ID,
			ItemID:         it.ItemID,
			ItemName:       strings.TrimSpace(it.ItemName),
			Description:    it.Description,
			Quantity:       it.Quantity,
			Unit:           unit,
			EstimatedPrice: it.EstimatedPrice,
			CreatedAt:      now,
		})
	}
	ind.TotalAmount = entity.IndentTotal(ind.Items)
	if actor.IsPrivileged() {
		at := now
		ind.Status = entity.IndentStatusApproved
		ind.ApprovedBy = actor.ID
		ind.ApprovedAt = &at
	}

	_, err := uc.numbers.WithNumber(ctx, entity.SequenceScopeIndent, now, func(number string) error {
		ind.Number = number
		return uc.inTx(ctx, func(ctx context.Context, indents repository.IndentRepository) error {
			return indents.Create(ctx, ind)
		})
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Indent: ind}
	ev := uc.log.Info().Str("number", ind.Number).Str("status", ind.Status).Str("total", ind.TotalAmount.StringFixed(2))
	if ind.Status == entity.IndentStatusApproved {
		ev = ev.Str("approved_by", ind.ApprovedBy).Bool("auto_approved", true)
		uc.metrics.StatusTransition(document, entity.IndentStatusApproved, "auto")
		if err := uc.publish(ctx, statusEvent(ind, entity.IndentStatusPending, "", actor.ID, now)); err != nil {
			res.Warnings = append(res.Warnings, err)
		}
	}
	ev.Msg("solicitud creada")
	return res, nil
}

// Approve aprueba una solicitud pendiente.
func (uc *UseCase) Approve(ctx context.Context, actor entity.Identity, id string) (*Result, error) {
	if err := access.Require(actor, access.ActionDecideIndent); err != nil {
		return nil, err
	}
	return uc.transition(ctx, actor, id, entity.IndentStatusApproved, "")
}

// Reject rechaza una solicitud pendiente. El motivo es obligatorio (domain.ErrReasonRequired).
func (uc *UseCase) Reject(ctx context.Context, actor entity.Identity, id, reason string) (*Result, error) {
	if err := access.Require(actor, access.ActionDecideIndent); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	return uc.transition(ctx, actor, id, entity.IndentStatusRejected, reason)
}

// Complete marca como recibida una solicitud aprobada. El evento lleva las líneas para que
// el libro registre la entrada de lo pedido; si el libro la rechaza, la solicitud queda
// completada y el fallo vuelve en Result.Warnings.
func (uc *UseCase) Complete(ctx context.Context, actor entity.Identity, id string) (*Result, error) {
	if err := access.Require(actor, access.ActionDecideIndent); err != nil {
		return nil, err
	}
	return uc.transition(ctx, actor, id, entity.IndentStatusCompleted, "")
}

func (uc *UseCase) transition(ctx context.Context, actor entity.Identity, id, to, reason string) (*Result, error) {
	now := uc.cfg.Clock()
	var ind *entity.PurchaseIndent
	var from string
	err := uc.inTx(ctx, func(ctx context.Context, indents repository.IndentRepository) error {
		var err error
		ind, err = indents.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ind == nil {
			return domain.ErrNotFound
		}
		from = ind.Status
		if !entity.CanTransitionIndent(from, to) {
			return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
		}
		ch := entity.IndentStatusChange{From: from, To: to, At: now}
		switch to {
		case entity.IndentStatusApproved:
			at := now
			ch.ApprovedBy = actor.ID
			ch.ApprovedAt = &at
		case entity.IndentStatusRejected:
			ch.RejectionReason = reason
		}
		if err := indents.UpdateStatus(ctx, id, ch); err != nil {
			return err
		}
		applyChange(ind, ch)
		return nil
	})
	if err != nil {
		uc.metrics.StatusTransition(document, to, resultLabel(err))
		return nil, err
	}
	uc.metrics.StatusTransition(document, to, "ok")
	uc.log.Info().Str("number", ind.Number).Str("from", from).Str("to", to).Str("actor", actor.ID).Msg("transición de solicitud")
	res := &Result{Indent: ind}
	// la transición ya está confirmada: un fallo de publicación no la deshace
	if err := uc.publish(ctx, statusEvent(ind, from, reason, actor.ID, now)); err != nil {
		if to == entity.IndentStatusCompleted {
			uc.log.Warn().Err(err).Str("number", ind.Number).Msg("recepción de solicitud no registrada en el libro")
		}
		res.Warnings = append(res.Warnings, err)
	}
	return res, nil
}

func applyChange(in *entity.PurchaseIndent, ch entity.IndentStatusChange) {
	in.Status = ch.To
	in.UpdatedAt = ch.At
	switch ch.To {
	case entity.IndentStatusApproved:
		in.ApprovedBy = ch.ApprovedBy
		in.ApprovedAt = ch.ApprovedAt
		in.RejectionReason = ""
	case entity.IndentStatusRejected:
		in.RejectionReason = ch.RejectionReason
		in.ApprovedBy = ""
		in.ApprovedAt = nil
	}
}

func statusEvent(in *entity.PurchaseIndent, from, reason, actorID string, now time.Time) entity.Event {
	p := entity.IndentStatusChangedPayload{
		IndentID: in.ID,
		Number:   in.Number,
		From:     from,
		To:       in.Status,
		Reason:   reason,
	}
	if in.Status == entity.IndentStatusCompleted {
		for _, it := range in.Items {
			p.Items = append(p.Items, entity.ReceivedLine{
				ItemID:    it.ItemID,
				ItemName:  it.ItemName,
				Quantity:  it.Quantity,
				UnitPrice: it.EstimatedPrice,
			})
		}
	}
	return entity.Event{
		Type:       entity.EventIndentStatusChanged,
		OccurredAt: now,
		ActorID:    actorID,
		Payload:    p,
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "error"
}

// Delete override administrativo permitido en cualquier estado. Borra primero las líneas y
// después la cabecera, en la misma transacción.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Identity, id string) error {
	if err := access.Require(actor, access.ActionDeleteIndent); err != nil {
		return err
	}
	var number string
	err := uc.inTx(ctx, func(ctx context.Context, indents repository.IndentRepository) error {
		ind, err := indents.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ind == nil {
			return domain.ErrNotFound
		}
		number = ind.Number
		if err := indents.DeleteItems(ctx, id); err != nil {
			return err
		}
		return indents.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Warn().Str("number", number).Str("actor", actor.ID).Msg("solicitud eliminada por override administrativo")
	return nil
}

// List lista solicitudes. El filtro de solicitante lo impone el rol del actor: staff solo
// recibe las suyas aunque pida otras.
func (uc *UseCase) List(ctx context.Context, actor entity.Identity, f repository.IndentFilter) ([]*entity.PurchaseIndent, int, error) {
	scope, err := access.IndentScope(actor)
	if err != nil {
		return nil, 0, err
	}
	if scope != "" {
		f.RequestedBy = scope
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, total, err := uc.indents.List(callCtx, f)
	if err != nil {
		return nil, 0, domain.StorageError(err)
	}
	return list, total, nil
}

// Get devuelve la solicitud. Fuera del alcance del actor responde domain.ErrNotFound
// para no revelar que existe.
func (uc *UseCase) Get(ctx context.Context, actor entity.Identity, id string) (*entity.PurchaseIndent, error) {
	scope, err := access.IndentScope(actor)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	ind, err := uc.indents.GetByID(callCtx, id)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if ind == nil || (scope != "" && ind.RequestedBy != scope) {
		return nil, domain.ErrNotFound
	}
	return ind, nil
}
