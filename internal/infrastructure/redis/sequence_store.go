// Package redis contador de secuencias sobre Redis (INCR).
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	_ repository.SequenceStore = (*SequenceStore)(nil)
	_ sequence.CounterSeeder   = (*SequenceStore)(nil)
)

// SequenceStore usa INCR, que Redis ejecuta de forma atómica: dos clientes nunca reciben el mismo valor.
type SequenceStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewSequenceStore construye el contador. prefix vacío usa "seq".
func NewSequenceStore(client goredis.UniversalClient, prefix string) *SequenceStore {
	if prefix == "" {
		prefix = "seq"
	}
	return &SequenceStore{client: client, prefix: prefix}
}

// Key clave Redis del contador: seq:<scope>:<period>.
func (s *SequenceStore) Key(key entity.SequenceKey) string {
	return s.prefix + ":" + key.Scope + ":" + key.Period
}

func (s *SequenceStore) Increment(ctx context.Context, key entity.SequenceKey) (int64, error) {
	n, err := s.client.Incr(ctx, s.Key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", s.Key(key), unavailable(err))
	}
	return n, nil
}

// Seed fija el contador al menos en n. Nunca lo reduce. Lo usa `wmsctl sequence seed-redis`
// al pasar de SEQUENCE_BACKEND=postgres a redis.
func (s *SequenceStore) Seed(ctx context.Context, key entity.SequenceKey, n int64) error {
	const script = `
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
if cur < tonumber(ARGV[1]) then
  redis.call('SET', KEYS[1], ARGV[1])
end
return 0`
	if err := s.client.Eval(ctx, script, []string{s.Key(key)}, n).Err(); err != nil {
		return fmt.Errorf("seed %s: %w", s.Key(key), unavailable(err))
	}
	return nil
}

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// unavailable todo error de Redis en el contador es de infraestructura: se reintenta.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}
