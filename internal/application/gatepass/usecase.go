// Package gatepass flujo de pases de portería: creación con número único, aprobación o
// rechazo condicional, verificación en portería (en línea y offline) y devolución de material.
package gatepass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/wms-core/internal/application/ports"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/metrics"
	"github.com/jhoicas/wms-core/pkg/jwt"
)

const document = "gate_pass"

// Config parámetros del flujo.
type Config struct {
	QueryTimeout time.Duration
	Clock        func() time.Time
}

// UseCase casos de uso de pases.
type UseCase struct {
	txRunner TxRunner
	passes   repository.GatePassRepository
	numbers  NumberAllocator
	signer   TokenSigner
	events   ports.EventPublisher
	log      zerolog.Logger
	metrics  *metrics.Metrics
	cfg      Config
}

// NewUseCase construye el caso de uso. signer, events y m pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	passes repository.GatePassRepository,
	numbers NumberAllocator,
	signer TokenSigner,
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
		passes:   passes,
		numbers:  numbers,
		signer:   signer,
		events:   events,
		log:      log,
		metrics:  m,
		cfg:      cfg,
	}
}

func (uc *UseCase) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.cfg.QueryTimeout)
}

func (uc *UseCase) inTx(ctx context.Context, fn func(ctx context.Context, passes repository.GatePassRepository) error) error {
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	return domain.StorageError(uc.txRunner.RunGatePass(callCtx, func(passes repository.GatePassRepository) error {
		return fn(callCtx, passes)
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

// ItemInput línea del pase. ItemID vacío para material sin vínculo a inventario.
type ItemInput struct {
	ItemID      string
	ItemName    string
	Description string
	Quantity    int64
	Unit        string
}

// CreateInput datos del pase.
type CreateInput struct {
	Type               string
	PartyName          string
	PartyContact       string
	VehicleNumber      string
	DriverName         string
	DriverContact      string
	Purpose            string
	ValidFrom          time.Time
	ValidTo            time.Time
	ExpectedReturnDate *time.Time
	Notes              string
	Items              []ItemInput
}

func (in *CreateInput) validate() error {
	if !entity.ValidGatePassType(in.Type) || strings.TrimSpace(in.PartyName) == "" {
		return domain.ErrInvalidInput
	}
	if in.ValidFrom.IsZero() || in.ValidTo.IsZero() || in.ValidFrom.After(in.ValidTo) {
		return fmt.Errorf("ventana de validez: %w", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ItemName) == "" || it.Quantity <= 0 {
			return fmt.Errorf("línea %q: %w", it.ItemName, domain.ErrInvalidInput)
		}
	}
	return nil
}

// Create asigna el número GP-<año>-NNNN y guarda el pase en estado pending con sus líneas
// en una sola transacción.
func (uc *UseCase) Create(ctx context.Context, actor entity.Identity, in CreateInput) (*entity.GatePass, error) {
	if err := access.Require(actor, access.ActionCreateGatePass); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := uc.cfg.Clock()
	pass := &entity.GatePass{
		ID:                 uuid.New().String(),
		Type:               in.Type,
		PartyName:          strings.TrimSpace(in.PartyName),
		PartyContact:       in.PartyContact,
		VehicleNumber:      in.VehicleNumber,
		DriverName:         in.DriverName,
		DriverContact:      in.DriverContact,
		Purpose:            in.Purpose,
		ValidFrom:          in.ValidFrom,
		ValidTo:            in.ValidTo,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Status:             entity.GatePassStatusPending,
		Notes:              in.Notes,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, it := range in.Items {
		unit := it.Unit
		if unit == "" {
			unit = "pcs"
		}
		pass.Items = append(pass.Items, entity.GatePassItem{
			ID:          uuid.New().String(),
			GatePassID:  pass.ID,
			ItemID:      it.ItemID,
			ItemName:    strings.TrimSpace(it.ItemName),
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        unit,
			CreatedAt:   now,
		})
	}
	_, err := uc.numbers.WithNumber(ctx, entity.SequenceScopeGatePass, now, func(number string) error {
		pass.Number = number
		return uc.inTx(ctx, func(ctx context.Context, passes repository.GatePassRepository) error {
			return passes.Create(ctx, pass)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("number", pass.Number).Str("type", pass.Type).Int("items", len(pass.Items)).Msg("pase creado")
	return pass, nil
}

// SetStatus aprueba o rechaza un pase pendiente. El motivo de rechazo es opcional.
// Desde cualquier otro estado devuelve domain.ErrInvalidTransition; si otro aprobador ganó
// la carrera, domain.ErrConflict.
func (uc *UseCase) SetStatus(ctx context.Context, actor entity.Identity, id, to, reason string) (*TransitionResult, error) {
	if err := access.Require(actor, access.ActionDecideGatePass); err != nil {
		return nil, err
	}
	if to != entity.GatePassStatusApproved && to != entity.GatePassStatusRejected {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, actor, id, to, strings.TrimSpace(reason))
}

// Complete cierra explícitamente un pase aprobado.
func (uc *UseCase) Complete(ctx context.Context, actor entity.Identity, id string) (*TransitionResult, error) {
	if err := access.Require(actor, access.ActionDecideGatePass); err != nil {
		return nil, err
	}
	return uc.transition(ctx, actor, id, entity.GatePassStatusCompleted, "")
}

// TransitionResult pase tras una transición confirmada. Warnings lleva los fallos de
// publicación del evento (domain.ErrEventNotDelivered).
type TransitionResult struct {
	Pass     *entity.GatePass
	Warnings []error
}

func (uc *UseCase) transition(ctx context.Context, actor entity.Identity, id, to, reason string) (*TransitionResult, error) {
	now := uc.cfg.Clock()
	var pass *entity.GatePass
	var from string
	err := uc.inTx(ctx, func(ctx context.Context, passes repository.GatePassRepository) error {
		var err error
		pass, err = passes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if pass == nil {
			return domain.ErrNotFound
		}
		from = pass.Status
		ch, err := buildChange(pass.Status, to, actor.ID, reason, now)
		if err != nil {
			return err
		}
		if err := passes.UpdateStatus(ctx, id, ch); err != nil {
			return err
		}
		applyChange(pass, ch)
		return nil
	})
	if err != nil {
		uc.metrics.StatusTransition(document, to, resultLabel(err))
		return nil, err
	}
	uc.metrics.StatusTransition(document, to, "ok")
	uc.log.Info().Str("number", pass.Number).Str("from", from).Str("to", to).Str("actor", actor.ID).Msg("transición de pase")
	res := &TransitionResult{Pass: pass}
	if err := uc.publish(ctx, statusEvent(pass, from, reason, actor.ID, now)); err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	return res, nil
}

func buildChange(from, to, actorID, reason string, now time.Time) (entity.GatePassStatusChange, error) {
	if !entity.CanTransitionGatePass(from, to) {
		return entity.GatePassStatusChange{}, fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}
	ch := entity.GatePassStatusChange{From: from, To: to, At: now}
	switch to {
	case entity.GatePassStatusApproved:
		at := now
		ch.ApprovedBy = actorID
		ch.ApprovedAt = &at
	case entity.GatePassStatusRejected:
		ch.RejectionReason = reason
	}
	return ch, nil
}

func applyChange(p *entity.GatePass, ch entity.GatePassStatusChange) {
	p.Status = ch.To
	p.UpdatedAt = ch.At
	switch ch.To {
	case entity.GatePassStatusApproved:
		p.ApprovedBy = ch.ApprovedBy
		p.ApprovedAt = ch.ApprovedAt
		p.RejectionReason = ""
	case entity.GatePassStatusRejected:
		p.RejectionReason = ch.RejectionReason
	}
}

func statusEvent(p *entity.GatePass, from, reason, actorID string, now time.Time) entity.Event {
	return entity.Event{
		Type:       entity.EventGatePassStatusChanged,
		OccurredAt: now,
		ActorID:    actorID,
		Payload: entity.GatePassStatusChangedPayload{
			GatePassID: p.ID,
			Number:     p.Number,
			From:       from,
			To:         p.Status,
			Reason:     reason,
		},
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

// Get devuelve el pase con sus líneas.
func (uc *UseCase) Get(ctx context.Context, actor entity.Identity, id string) (*entity.GatePass, error) {
	if err := access.Require(actor, access.ActionReadGatePass); err != nil {
		return nil, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	p, err := uc.passes.GetByID(callCtx, id)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetByNumber busca por número visible (GP-2025-0007).
func (uc *UseCase) GetByNumber(ctx context.Context, actor entity.Identity, number string) (*entity.GatePass, error) {
	if err := access.Require(actor, access.ActionReadGatePass); err != nil {
		return nil, err
	}
	return uc.byNumber(ctx, number)
}

func (uc *UseCase) byNumber(ctx context.Context, number string) (*entity.GatePass, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.ErrInvalidInput
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	p, err := uc.passes.GetByNumber(callCtx, number)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List lista pases con filtros y total para paginar.
func (uc *UseCase) List(ctx context.Context, actor entity.Identity, f repository.GatePassFilter) ([]*entity.GatePass, int, error) {
	if err := access.Require(actor, access.ActionReadGatePass); err != nil {
		return nil, 0, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, total, err := uc.passes.List(callCtx, f)
	if err != nil {
		return nil, 0, domain.StorageError(err)
	}
	return list, total, nil
}

// Verify verificación en portería. Solo lectura: llamarla varias veces con el mismo estado
// devuelve el mismo resultado.
func (uc *UseCase) Verify(ctx context.Context, actor entity.Identity, number string, now time.Time) (entity.Verification, error) {
	if err := access.Require(actor, access.ActionReadGatePass); err != nil {
		return entity.Verification{}, err
	}
	p, err := uc.byNumber(ctx, number)
	if err != nil {
		return entity.Verification{}, err
	}
	return entity.EvaluateGatePass(p.Number, p.Status, p.ValidFrom, p.ValidTo, now), nil
}

// IssueVerificationToken firma el estado actual del pase para el QR.
func (uc *UseCase) IssueVerificationToken(ctx context.Context, actor entity.Identity, id string) (string, error) {
	if uc.signer == nil {
		return "", errors.New("gatepass: firmador de tokens no configurado")
	}
	p, err := uc.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return uc.signer.Sign(jwt.GatePassToken{
		Number:    p.Number,
		Status:    p.Status,
		ValidFrom: p.ValidFrom,
		ValidTo:   p.ValidTo,
		IssuedAt:  uc.cfg.Clock(),
	})
}

// VerifyOffline evalúa un token de QR sin consultar el almacén. Un token con firma inválida
// o alterado se informa como reason invalid, no como error.
func (uc *UseCase) VerifyOffline(token string, now time.Time) (entity.Verification, error) {
	if uc.signer == nil {
		return entity.Verification{}, errors.New("gatepass: firmador de tokens no configurado")
	}
	t, err := uc.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		uc.log.Debug().Err(err).Msg("token de pase rechazado")
		return entity.Verification{Reason: entity.VerifyReasonInvalid}, nil
	}
	return entity.EvaluateGatePass(t.Number, t.Status, t.ValidFrom, t.ValidTo, now), nil
}
