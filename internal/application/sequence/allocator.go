// Package sequence asigna números de documento únicos y crecientes por (ámbito, periodo).
//
// Nunca se deriva el siguiente número de un conteo de filas existentes: dos instancias que
// leen el mismo conteo antes de insertar emiten el mismo número. Toda asignación pasa por
// la primitiva atómica SequenceStore.Increment, con reintento y backoff exponencial ante
// errores transitorios.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/metrics"
)

// MaxAttempts intentos máximos por asignación (y por inserción con número único).
const MaxAttempts = 5

// Config parámetros del asignador.
type Config struct {
	CallTimeout     time.Duration // timeout por intento contra el almacén
	InitialInterval time.Duration // primer backoff
	MaxInterval     time.Duration
}

// DefaultConfig valores razonables para producción.
func DefaultConfig() Config {
	return Config{
		CallTimeout:     3 * time.Second,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// Allocator asignador de secuencias.
type Allocator struct {
	store   repository.SequenceStore
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewAllocator construye el asignador. m puede ser nil.
func NewAllocator(store repository.SequenceStore, cfg Config, log zerolog.Logger, m *metrics.Metrics) *Allocator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultConfig().MaxInterval
	}
	return &Allocator{store: store, cfg: cfg, log: log, metrics: m}
}

func (a *Allocator) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.InitialInterval
	b.MaxInterval = a.cfg.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxAttempts-1), ctx)
}

// Allocate devuelve el siguiente entero de la clave. Errores transitorios se reintentan
// hasta MaxAttempts; agotados los intentos se devuelve domain.ErrStorageUnavailable.
func (a *Allocator) Allocate(ctx context.Context, key entity.SequenceKey) (int64, error) {
	if key.Scope == "" || key.Period == "" {
		return 0, domain.ErrInvalidInput
	}
	var n int64
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
		defer cancel()
		v, err := a.store.Increment(callCtx, key)
		if err != nil {
			err = domain.StorageError(err)
			if domain.IsTransient(err) {
				a.metrics.SequenceAttempt(key.Scope, "retry")
				return err
			}
			a.metrics.SequenceAttempt(key.Scope, "error")
			return backoff.Permanent(err)
		}
		n = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		a.log.Warn().Err(err).Str("key", key.String()).Dur("wait", wait).Msg("reintentando asignación de secuencia")
	}
	if err := backoff.RetryNotify(op, a.policy(ctx), notify); err != nil {
		if domain.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
			// solo ErrStorageUnavailable queda en la cadena: un ErrConflict agotado no es 409
			return 0, fmt.Errorf("asignar secuencia %s: %w (último error: %v)", key, domain.ErrStorageUnavailable, err)
		}
		return 0, fmt.Errorf("asignar secuencia %s: %w", key, err)
	}
	a.metrics.SequenceAttempt(key.Scope, "ok")
	return n, nil
}

// Next asigna y formatea el número del ámbito para el año de now.
func (a *Allocator) Next(ctx context.Context, scope string, now time.Time) (string, error) {
	key := entity.NewYearKey(scope, now.Year())
	n, err := a.Allocate(ctx, key)
	if err != nil {
		return "", err
	}
	return entity.FormatDocumentNumber(key.Scope, key.Period, n, padFor(scope)), nil
}

// WithNumber asigna un número y ejecuta insert con él. Si la inserción choca con la
// restricción única del número (domain.ErrDuplicate) se asigna otro y se reintenta,
// hasta MaxAttempts. Es la segunda línea de defensa sobre la primitiva atómica.
func (a *Allocator) WithNumber(ctx context.Context, scope string, now time.Time, insert func(number string) error) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		number, err := a.Next(ctx, scope, now)
		if err != nil {
			return "", err
		}
		err = insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return "", err
		}
		lastErr = err
		a.log.Warn().Str("number", number).Int("attempt", attempt).Msg("número de documento duplicado, reasignando")
	}
	return "", fmt.Errorf("insertar con número único (%s): %w", scope, errors.Join(domain.ErrConflict, lastErr))
}

func padFor(scope string) int {
	switch scope {
	case entity.SequenceScopeGatePass:
		return entity.GatePassNumberPad
	case entity.SequenceScopeIndent:
		return entity.IndentNumberPad
	case entity.SequenceScopeTransaction:
		return entity.TransactionNumberPad
	}
	return 4
}
