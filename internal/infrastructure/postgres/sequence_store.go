package postgres

import (
	"context"

	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	_ repository.SequenceStore = (*SequenceStore)(nil)
	_ sequence.CounterSource   = (*SequenceStore)(nil)
)

// SequenceStore contador por (ámbito, periodo) en document_sequences.
type SequenceStore struct {
	q Querier
}

// NewSequenceStore construye el contador. Pasar pool: el incremento no debe quedar atado
// a una tx de negocio que pueda deshacerse y devolver el mismo número a otra instancia.
func NewSequenceStore(q Querier) *SequenceStore {
	return &SequenceStore{q: q}
}

// Increment es una única sentencia: PostgreSQL serializa el upsert sobre la fila de la clave,
// así que dos llamadas concurrentes nunca leen el mismo valor.
func (s *SequenceStore) Increment(ctx context.Context, key entity.SequenceKey) (int64, error) {
	const query = `
		INSERT INTO document_sequences (scope, period, value, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (scope, period) DO UPDATE
		SET value = document_sequences.value + 1, updated_at = now()
		RETURNING value`
	var n int64
	if err := s.q.QueryRow(ctx, query, key.Scope, key.Period).Scan(&n); err != nil {
		return 0, wrap("increment sequence "+key.String(), err)
	}
	return n, nil
}

// Counters devuelve el valor actual de todos los contadores.
func (s *SequenceStore) Counters(ctx context.Context) ([]entity.SequenceCounter, error) {
	rows, err := s.q.Query(ctx, `SELECT scope, period, value FROM document_sequences ORDER BY scope, period`)
	if err != nil {
		return nil, wrap("list sequences", err)
	}
	defer rows.Close()
	var out []entity.SequenceCounter
	for rows.Next() {
		var c entity.SequenceCounter
		if err := rows.Scan(&c.Key.Scope, &c.Key.Period, &c.Value); err != nil {
			return nil, wrap("scan sequence", err)
		}
		out = append(out, c)
	}
	return out, wrap("list sequences", rows.Err())
}
