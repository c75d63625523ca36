package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	_ repository.SequenceStore = (*SequenceStore)(nil)
	_ sequence.CounterSource   = (*SequenceStore)(nil)
	_ sequence.CounterSeeder   = (*SequenceStore)(nil)
)

// SequenceStore contador atómico en memoria.
type SequenceStore struct {
	c *conn
}

// Increment suma uno al contador de la clave y devuelve el nuevo valor.
func (r *SequenceStore) Increment(ctx context.Context, key entity.SequenceKey) (int64, error) {
	var n int64
	err := r.c.do(ctx, func(st *state) error {
		st.sequences[key]++
		n = st.sequences[key]
		return nil
	})
	return n, err
}

// Counters devuelve el valor actual de todos los contadores, ordenados por clave.
func (r *SequenceStore) Counters(ctx context.Context) ([]entity.SequenceCounter, error) {
	var out []entity.SequenceCounter
	err := r.c.do(ctx, func(st *state) error {
		for k, v := range st.sequences {
			out = append(out, entity.SequenceCounter{Key: k, Value: v})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, err
}

// Seed fija el contador al menos en n. Nunca lo reduce.
func (r *SequenceStore) Seed(ctx context.Context, key entity.SequenceKey, n int64) error {
	return r.c.do(ctx, func(st *state) error {
		if st.sequences[key] < n {
			st.sequences[key] = n
		}
		return nil
	})
}
