// Package ledger libro de inventario: registra transacciones append-only y mantiene la
// cantidad disponible de cada artículo sin permitir stock negativo ni doble conteo.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
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

// MaxAttempts reintentos de la unidad leer-validar-escribir ante domain.ErrConflict.
const MaxAttempts = 5

// Config parámetros del libro.
type Config struct {
	QueryTimeout    time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Clock           func() time.Time
}

// UseCase casos de uso del libro de inventario.
type UseCase struct {
	txRunner TxRunner
	items    repository.InventoryItemRepository
	txs      repository.TransactionRepository
	numbers  NumberAllocator
	events   ports.EventPublisher
	log      zerolog.Logger
	metrics  *metrics.Metrics
	cfg      Config
}

// NewUseCase construye el caso de uso. events y m pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	txs repository.TransactionRepository,
	numbers NumberAllocator,
	events ports.EventPublisher,
	log zerolog.Logger,
	m *metrics.Metrics,
	cfg Config,
) *UseCase {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 20 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 500 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &UseCase{
		txRunner: txRunner,
		items:    items,
		txs:      txs,
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

// inTx ejecuta fn con timeout acotado y reintenta la unidad completa si otra instancia
// escribió el mismo artículo entre la lectura y la escritura.
func (uc *UseCase) inTx(ctx context.Context, fn func(ctx context.Context, items repository.InventoryItemRepository, txs repository.TransactionRepository) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.cfg.InitialInterval
	b.MaxInterval = uc.cfg.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, MaxAttempts-1), ctx)

	op := func() error {
		callCtx, cancel := uc.timeout(ctx)
		defer cancel()
		err := domain.StorageError(uc.txRunner.RunLedger(callCtx, func(items repository.InventoryItemRepository, txs repository.TransactionRepository) error {
			return fn(callCtx, items, txs)
		}))
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		uc.log.Debug().Err(err).Dur("wait", wait).Msg("reintentando unidad del libro")
	}
	return backoff.RetryNotify(op, policy, notify)
}

func (uc *UseCase) publish(ctx context.Context, ev entity.Event) error {
	if uc.events == nil {
		return nil
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	err := uc.events.Publish(ctx, ev)
	if err != nil {
		uc.metrics.EventPublished(ev.Type, "error")
		uc.log.Error().Err(err).Str("event", ev.Type).Msg("no se pudo publicar el evento")
		return fmt.Errorf("publicar %s: %w: %w", ev.Type, domain.ErrEventNotDelivered, err)
	}
	uc.metrics.EventPublished(ev.Type, "ok")
	return nil
}

// CreateItemInput datos de alta de un artículo.
type CreateItemInput struct {
	ItemCode    string
	Name        string
	Description string
	Category    string
	Unit        string
	Quantity    int64
	MinQuantity int64
	MaxQuantity int64
	UnitPrice   decimal.Decimal
	Location    string
	Supplier    string
	Status      string
	Flags       entity.ItemFlags
}

// CreateItem da de alta un artículo. La categoría (normal, reparación, otro) se fija aquí
// y no se infiere después de texto libre.
func (uc *UseCase) CreateItem(ctx context.Context, actor entity.Identity, in CreateItemInput) (*entity.InventoryItem, error) {
	if err := access.Require(actor, access.ActionManageInventory); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Quantity < 0 || in.MinQuantity < 0 || in.MaxQuantity < 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxQuantity > 0 && in.MinQuantity > in.MaxQuantity {
		return nil, domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = entity.ItemStatusActive
	}
	switch status {
	case entity.ItemStatusActive, entity.ItemStatusInactive, entity.ItemStatusDiscontinued:
	default:
		return nil, domain.ErrInvalidInput
	}
	unit := in.Unit
	if unit == "" {
		unit = "pcs"
	}
	now := uc.cfg.Clock()
	item := &entity.InventoryItem{
		ID:          uuid.New().String(),
		ItemCode:    strings.TrimSpace(in.ItemCode),
		Name:        name,
		Description: in.Description,
		Category:    in.Category,
		Unit:        unit,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		MaxQuantity: in.MaxQuantity,
		UnitPrice:   in.UnitPrice,
		Location:    in.Location,
		Supplier:    in.Supplier,
		Status:      status,
		Flags:       in.Flags,
		Version:     1,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	if err := uc.items.Create(callCtx, item); err != nil {
		return nil, domain.StorageError(err)
	}
	return item, nil
}

// GetItem devuelve el artículo o domain.ErrNotFound.
func (uc *UseCase) GetItem(ctx context.Context, actor entity.Identity, id string) (*entity.InventoryItem, error) {
	if err := access.Require(actor, access.ActionReadInventory); err != nil {
		return nil, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	item, err := uc.items.GetByID(callCtx, id)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListItems lista artículos con filtros.
func (uc *UseCase) ListItems(ctx context.Context, actor entity.Identity, f repository.InventoryItemFilter) ([]*entity.InventoryItem, error) {
	if err := access.Require(actor, access.ActionReadInventory); err != nil {
		return nil, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, err := uc.items.List(callCtx, f)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	return list, nil
}

// CurrentStats agregación pura sobre los artículos actuales.
func (uc *UseCase) CurrentStats(ctx context.Context, actor entity.Identity) (*entity.InventoryStats, error) {
	if err := access.Require(actor, access.ActionReadInventory); err != nil {
		return nil, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, err := uc.items.List(callCtx, repository.InventoryItemFilter{})
	if err != nil {
		return nil, domain.StorageError(err)
	}
	return Stats(list), nil
}

// Stats calcula los indicadores de inventario. lowStock: 0 < cantidad <= mínimo; outOfStock: cantidad == 0.
func Stats(items []*entity.InventoryItem) *entity.InventoryStats {
	s := &entity.InventoryStats{TotalValue: decimal.Zero}
	for _, it := range items {
		s.TotalItems++
		switch {
		case it.Quantity <= 0:
			s.OutOfStock++
		case it.Quantity <= it.MinQuantity:
			s.LowStock++
		}
		s.TotalValue = s.TotalValue.Add(it.Value())
		if it.Status == entity.ItemStatusActive {
			s.ActiveCount++
		} else {
			s.InactiveCount++
		}
	}
	return s
}

// ListTransactions lista el libro, más recientes primero, con el total para paginar.
func (uc *UseCase) ListTransactions(ctx context.Context, actor entity.Identity, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	if err := access.Require(actor, access.ActionReadInventory); err != nil {
		return nil, 0, err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, total, err := uc.txs.List(callCtx, f)
	if err != nil {
		return nil, 0, domain.StorageError(err)
	}
	return list, total, nil
}

// Summary totales de entradas, salidas, ajustes y traslados en el rango (extremos opcionales).
func (uc *UseCase) Summary(ctx context.Context, actor entity.Identity, from, to *time.Time) (*entity.TransactionSummary, error) {
	if err := access.Require(actor, access.ActionReadInventory); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, domain.ErrInvalidInput
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	list, _, err := uc.txs.List(callCtx, repository.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, domain.StorageError(err)
	}
	sum := &entity.TransactionSummary{From: from, To: to}
	for _, t := range list {
		switch t.Type {
		case entity.TransactionTypeInward:
			sum.TotalInward += t.Quantity
		case entity.TransactionTypeOutward:
			sum.TotalOutward += t.Quantity
		case entity.TransactionTypeAdjustment:
			sum.TotalAdjustments++
		case entity.TransactionTypeTransfer:
			sum.TotalTransfers++
		}
	}
	return sum, nil
}

// DeleteTransaction override administrativo: borra la entrada sin tocar el stock.
// Las correcciones normales se registran como entradas compensatorias.
func (uc *UseCase) DeleteTransaction(ctx context.Context, actor entity.Identity, id string) error {
	if err := access.Require(actor, access.ActionDeleteTransaction); err != nil {
		return err
	}
	callCtx, cancel := uc.timeout(ctx)
	defer cancel()
	if err := uc.txs.Delete(callCtx, id); err != nil {
		return domain.StorageError(err)
	}
	uc.log.Warn().Str("transaction_id", id).Str("actor", actor.ID).Msg("transacción eliminada por override administrativo")
	return nil
}
