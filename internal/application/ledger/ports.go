package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Leer, validar y escribir la cantidad de un artículo ocurre siempre dentro de una sola unidad.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		txs repository.TransactionRepository,
	) error) error
}

// NumberAllocator asigna el número TRX y reintenta la inserción si choca con la restricción única.
type NumberAllocator interface {
	WithNumber(ctx context.Context, scope string, now time.Time, insert func(number string) error) (string, error)
}
