package sequence

import (
	"context"
	"fmt"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// CounterSource entrega el valor actual de todos los contadores.
type CounterSource interface {
	Counters(ctx context.Context) ([]entity.SequenceCounter, error)
}

// CounterSeeder fija un contador al menos en n sin reducirlo nunca.
type CounterSeeder interface {
	Seed(ctx context.Context, key entity.SequenceKey, n int64) error
}

// CopyCounters lleva los contadores de from a to antes de cambiar de backend, para que el
// nuevo contador continúe la numeración en vez de empezar en 1 y chocar con los números
// ya emitidos. Es repetible: Seed no baja un contador que ya avanzó.
func CopyCounters(ctx context.Context, from CounterSource, to CounterSeeder) ([]entity.SequenceCounter, error) {
	counters, err := from.Counters(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer contadores: %w", err)
	}
	for i, c := range counters {
		if err := to.Seed(ctx, c.Key, c.Value); err != nil {
			return counters[:i], fmt.Errorf("sembrar %s: %w", c.Key, err)
		}
	}
	return counters, nil
}
