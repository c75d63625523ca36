package sequence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/infrastructure/memory"
)

func TestCopyCounters_ElDestinoContinuaLaNumeracion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	src := memory.NewStore().Sequences()
	dst := memory.NewStore().Sequences()

	from := newAllocator(src)
	for i := 0; i < 3; i++ {
		_, err := from.Next(ctx, entity.SequenceScopeGatePass, now)
		require.NoError(t, err)
	}
	_, err := from.Next(ctx, entity.SequenceScopeIndent, now)
	require.NoError(t, err)

	copied, err := sequence.CopyCounters(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, []entity.SequenceCounter{
		{Key: entity.NewYearKey(entity.SequenceScopeGatePass, 2025), Value: 3},
		{Key: entity.NewYearKey(entity.SequenceScopeIndent, 2025), Value: 1},
	}, copied)

	gp, err := newAllocator(dst).Next(ctx, entity.SequenceScopeGatePass, now)
	require.NoError(t, err)
	assert.Equal(t, "GP-2025-0004", gp)

	// repetir la copia no retrocede el contador que ya avanzó
	_, err = sequence.CopyCounters(ctx, src, dst)
	require.NoError(t, err)
	n, err := dst.Increment(ctx, entity.NewYearKey(entity.SequenceScopeGatePass, 2025))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

type brokenSeeder struct {
	seeded []entity.SequenceKey
	failAt int
}

func (s *brokenSeeder) Seed(_ context.Context, key entity.SequenceKey, _ int64) error {
	if len(s.seeded) == s.failAt {
		return errors.New("redis: conexión rechazada")
	}
	s.seeded = append(s.seeded, key)
	return nil
}

func TestCopyCounters_DevuelveLoSembradoAntesDelFallo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	src := memory.NewStore().Sequences()
	alloc := newAllocator(src)
	for _, scope := range []string{entity.SequenceScopeGatePass, entity.SequenceScopeIndent, entity.SequenceScopeTransaction} {
		_, err := alloc.Next(ctx, scope, now)
		require.NoError(t, err)
	}

	dst := &brokenSeeder{failAt: 1}
	copied, err := sequence.CopyCounters(ctx, src, dst)
	require.Error(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, dst.seeded, []entity.SequenceKey{copied[0].Key})
}
