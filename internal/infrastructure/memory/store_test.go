package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/memory"
)

func TestRunLedger_DescartaCambiosSiFnFalla(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	item := &entity.InventoryItem{Name: "Taladro", Quantity: 5}
	require.NoError(t, store.Items().Create(ctx, item))

	boom := errors.New("boom")
	err := store.RunLedger(ctx, func(items repository.InventoryItemRepository, txs repository.TransactionRepository) error {
		require.NoError(t, items.UpdateQuantity(ctx, item.ID, 1, 99))
		require.NoError(t, txs.Create(ctx, &entity.Transaction{Number: "TRX-2025-00001", ItemID: item.ID, Quantity: 94}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
	assert.Equal(t, int64(1), got.Version)

	_, total, err := store.Transactions().List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInventoryItemRepo_VersionOptimista(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	item := &entity.InventoryItem{Name: "Sierra", Quantity: 1}
	require.NoError(t, store.Items().Create(ctx, item))

	require.NoError(t, store.Items().UpdateQuantity(ctx, item.ID, 1, 2))
	assert.ErrorIs(t, store.Items().UpdateQuantity(ctx, item.ID, 1, 3), domain.ErrConflict)
	assert.ErrorIs(t, store.Items().Delete(ctx, item.ID, 1), domain.ErrConflict)
	require.NoError(t, store.Items().Delete(ctx, item.ID, 2))
}

func TestTransactionRepo_NumeroEIdempotenciaUnicos(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	repo := store.Transactions()

	require.NoError(t, repo.Create(ctx, &entity.Transaction{Number: "TRX-2025-00001", IdempotencyKey: "ev-1:0"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Transaction{Number: "TRX-2025-00001"}), domain.ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, &entity.Transaction{Number: "TRX-2025-00002", IdempotencyKey: "ev-1:0"}), domain.ErrAlreadyRecorded)
	require.NoError(t, repo.Create(ctx, &entity.Transaction{Number: "TRX-2025-00003"}))
	require.NoError(t, repo.Create(ctx, &entity.Transaction{Number: "TRX-2025-00004"}))

	list, total, err := repo.List(ctx, repository.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "TRX-2025-00004", list[0].Number)
}

func TestGatePassRepo_DevolucionYEstadoCondicional(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	repo := store.GatePasses()
	pass := &entity.GatePass{
		Number: "GP-2025-0001",
		Status: entity.GatePassStatusPending,
		Items:  []entity.GatePassItem{{ItemName: "Bomba", Quantity: 3}},
	}
	require.NoError(t, repo.Create(ctx, pass))
	assert.ErrorIs(t, repo.Create(ctx, &entity.GatePass{Number: "GP-2025-0001"}), domain.ErrDuplicate)

	lineID := pass.Items[0].ID
	line, err := repo.AddReturned(ctx, lineID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), line.ReturnedQuantity)
	_, err = repo.AddReturned(ctx, lineID, 2)
	assert.ErrorIs(t, err, domain.ErrOverReturn)
	_, err = repo.AddReturned(ctx, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	approve := entity.GatePassStatusChange{From: entity.GatePassStatusPending, To: entity.GatePassStatusApproved, At: time.Now()}
	require.NoError(t, repo.UpdateStatus(ctx, pass.ID, approve))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, pass.ID, approve), domain.ErrConflict)

	got, err := repo.GetByNumber(ctx, "GP-2025-0001")
	require.NoError(t, err)
	assert.Equal(t, entity.GatePassStatusApproved, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(2), got.Items[0].ReturnedQuantity)
}

func TestIndentRepo_BorradoHijosAntesQuePadre(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	repo := store.Indents()
	ind := &entity.PurchaseIndent{
		Number: "IND-2025-001",
		Status: entity.IndentStatusPending,
		Items:  []entity.IndentItem{{ItemName: "Papel", Quantity: 1}},
	}
	require.NoError(t, repo.Create(ctx, ind))

	assert.ErrorIs(t, repo.Delete(ctx, ind.ID), domain.ErrConflict)
	require.NoError(t, repo.DeleteItems(ctx, ind.ID))
	require.NoError(t, repo.Delete(ctx, ind.ID))

	got, err := repo.GetByID(ctx, ind.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSequenceStore_PlazoVencido(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := store.Sequences().Increment(ctx, entity.NewYearKey("GP", 2025))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	n, err := store.Sequences().Increment(context.Background(), entity.NewYearKey("GP", 2025))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
