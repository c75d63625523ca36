package indent

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción de BD con el repositorio atado a esa tx.
type TxRunner interface {
	RunIndent(ctx context.Context, fn func(indents repository.IndentRepository) error) error
}

// NumberAllocator asigna el número IND y reintenta la inserción ante número duplicado.
type NumberAllocator interface {
	WithNumber(ctx context.Context, scope string, now time.Time, insert func(number string) error) (string, error)
}
