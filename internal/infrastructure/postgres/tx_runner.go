package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/application/indent"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	_ ledger.TxRunner   = (*TxRunner)(nil)
	_ gatepass.TxRunner = (*TxRunner)(nil)
	_ indent.TxRunner   = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// RunLedger repositorios de artículos y libro atados a la misma tx.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	txs repository.TransactionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryItemRepository(tx), NewTransactionRepository(tx))
	})
}

// RunGatePass repositorio de pases atado a la tx.
func (r *TxRunner) RunGatePass(ctx context.Context, fn func(passes repository.GatePassRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewGatePassRepository(tx))
	})
}

// RunIndent repositorio de solicitudes atado a la tx.
func (r *TxRunner) RunIndent(ctx context.Context, fn func(indents repository.IndentRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewIndentRepository(tx))
	})
}

// Ping comprueba la conexión (health check).
func (r *TxRunner) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping DB: %w", err)
	}
	return nil
}
