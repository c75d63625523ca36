package repository

import (
	"context"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// SequenceStore contador atómico por (ámbito, periodo).
// Increment debe ser una primitiva atómica de incrementar-y-devolver en el servidor:
// dos llamadas concurrentes nunca devuelven el mismo valor.
type SequenceStore interface {
	Increment(ctx context.Context, key entity.SequenceKey) (int64, error)
}
