package ledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/events"
	"github.com/jhoicas/wms-core/internal/infrastructure/memory"
)

var (
	testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	admin   = entity.Identity{ID: "u-admin", Role: entity.RoleAdmin}
	manager = entity.Identity{ID: "u-manager", Role: entity.RoleManager}
	staff   = entity.Identity{ID: "u-staff", Role: entity.RoleStaff}
	viewer  = entity.Identity{ID: "u-viewer", Role: entity.RoleViewer}
)

type fixture struct {
	uc     *ledger.UseCase
	store  *memory.Store
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	alloc := sequence.NewAllocator(store.Sequences(), sequence.Config{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, zerolog.Nop(), nil)
	rec := &events.Recorder{}
	uc := ledger.NewUseCase(store, store.Items(), store.Transactions(), alloc, rec, zerolog.Nop(), nil, ledger.Config{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Clock:           func() time.Time { return testNow },
	})
	return &fixture{uc: uc, store: store, events: rec}
}

func (f *fixture) item(t *testing.T, name string, qty int64) *entity.InventoryItem {
	t.Helper()
	it, err := f.uc.CreateItem(context.Background(), manager, ledger.CreateItemInput{
		Name:      name,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return it
}

func (f *fixture) quantity(t *testing.T, id string) int64 {
	t.Helper()
	it, err := f.uc.GetItem(context.Background(), viewer, id)
	require.NoError(t, err)
	return it.Quantity
}

func TestRecordTransaction_EntradasYSalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Taladro", 10)

	res, err := f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, res.NewQuantity)
	assert.Equal(t, int64(15), *res.NewQuantity)
	assert.Equal(t, "TRX-2025-00001", res.Transaction.Number)
	assert.Equal(t, entity.ReferenceManual, res.Transaction.ReferenceType)
	assert.Equal(t, "Taladro", res.Transaction.DisplayName)
	assert.Empty(t, res.Warnings)

	res, err = f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeOutward, ItemID: it.ID, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), *res.NewQuantity)
	assert.Equal(t, "TRX-2025-00002", res.Transaction.Number)

	_, err = f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeOutward, ItemID: it.ID, Quantity: 20,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(12), f.quantity(t, it.ID))

	_, total, err := f.uc.ListTransactions(ctx, viewer, repository.TransactionFilter{ItemID: it.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, f.events.OfType(entity.EventTransactionRecorded), 2)
}

func TestRecordTransaction_SalidaExactaDejaCero(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "Cable", 4)

	res, err := f.uc.RecordTransaction(context.Background(), staff, ledger.RecordInput{
		Type: entity.TransactionTypeOutward, ItemID: it.ID, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), *res.NewQuantity)
}

func TestRecordTransaction_DesviacionSeTruncaACero(t *testing.T) {
	f := newFixture(t)
	legacy := &entity.InventoryItem{Name: "Heredado", Quantity: -5, Status: entity.ItemStatusActive, CreatedAt: testNow}
	require.NoError(t, f.store.Items().Create(context.Background(), legacy))

	res, err := f.uc.RecordTransaction(context.Background(), staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, ItemID: legacy.ID, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), *res.NewQuantity)
	assert.True(t, res.Drifted())
	assert.ErrorIs(t, res.Warnings[0], domain.ErrStockDriftDetected)

	evs := f.events.OfType(entity.EventTransactionRecorded)
	require.Len(t, evs, 1)
	payload, ok := evs[0].Payload.(entity.TransactionRecordedPayload)
	require.True(t, ok)
	assert.True(t, payload.DriftDetected)
}

func TestRecordTransaction_EntradaManualSinArticulo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, Quantity: 3, DisplayName: "  Caja suelta ",
	})
	require.NoError(t, err)
	assert.Nil(t, res.NewQuantity)
	assert.Equal(t, "Caja suelta", res.Transaction.DisplayName)

	_, err = f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, Quantity: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordTransaction_AjusteYTrasladoNoMuevenStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Martillo", 8)

	res, err := f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeAdjustment, ItemID: it.ID, Quantity: 2, ReferenceType: entity.ReferenceCorrection,
	})
	require.NoError(t, err)
	assert.Nil(t, res.NewQuantity)

	res, err = f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeTransfer, ItemID: it.ID, Quantity: 5, FromLocation: "A1", ToLocation: "B2",
	})
	require.NoError(t, err)
	assert.Nil(t, res.NewQuantity)
	assert.Equal(t, int64(8), f.quantity(t, it.ID))

	_, err = f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeTransfer, ItemID: it.ID, Quantity: 5, FromLocation: "A1", ToLocation: "A1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordTransaction_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Llave", 1)

	cases := []struct {
		name  string
		actor entity.Identity
		in    ledger.RecordInput
		want  error
	}{
		{"viewer no registra", viewer, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 1}, domain.ErrForbidden},
		{"sin identidad", entity.Identity{}, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 1}, domain.ErrUnauthorized},
		{"cantidad cero", staff, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID}, domain.ErrInvalidInput},
		{"tipo desconocido", staff, ledger.RecordInput{Type: "gift", ItemID: it.ID, Quantity: 1}, domain.ErrInvalidInput},
		{"referencia desconocida", staff, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 1, ReferenceType: "sale"}, domain.ErrInvalidInput},
		{"precio negativo", staff, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}, domain.ErrInvalidInput},
		{"artículo inexistente", staff, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: "nope", Quantity: 1}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RecordTransaction(ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(1), f.quantity(t, it.ID))
}

func TestRecordTransaction_ClaveDeIdempotencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Broca", 0)
	in := ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 4, IdempotencyKey: "req-1"}

	_, err := f.uc.RecordTransaction(ctx, staff, in)
	require.NoError(t, err)
	_, err = f.uc.RecordTransaction(ctx, staff, in)
	assert.ErrorIs(t, err, domain.ErrAlreadyRecorded)
	assert.Equal(t, int64(4), f.quantity(t, it.ID))
}

func TestRecordTransaction_SalidasConcurrentesNuncaNegativas(t *testing.T) {
	f := newFixture(t)
	it := f.item(t, "Tornillo", 10)

	var (
		mu           sync.Mutex
		ok, rejected int
		g            errgroup.Group
	)
	for i := 0; i < 15; i++ {
		g.Go(func() error {
			_, err := f.uc.RecordTransaction(context.Background(), staff, ledger.RecordInput{
				Type: entity.TransactionTypeOutward, ItemID: it.ID, Quantity: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.IsTransient(err):
				return err
			default:
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				rejected++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, int64(0), f.quantity(t, it.ID))
}

// stalledRunner simula un almacén que no responde: cada intento espera al plazo.
type stalledRunner struct {
	calls atomic.Int32
}

func (r *stalledRunner) RunLedger(ctx context.Context, _ func(repository.InventoryItemRepository, repository.TransactionRepository) error) error {
	r.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestRecordTransaction_PlazoVencidoAgotaReintentos(t *testing.T) {
	store := memory.NewStore()
	runner := &stalledRunner{}
	alloc := sequence.NewAllocator(store.Sequences(), sequence.DefaultConfig(), zerolog.Nop(), nil)
	uc := ledger.NewUseCase(runner, store.Items(), store.Transactions(), alloc, nil, zerolog.Nop(), nil, ledger.Config{
		QueryTimeout:    5 * time.Millisecond,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Clock:           func() time.Time { return testNow },
	})

	_, err := uc.RecordTransaction(context.Background(), staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, DisplayName: "Guantes", Quantity: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, int32(ledger.MaxAttempts), runner.calls.Load())
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Pintura", 10)

	for _, in := range []ledger.RecordInput{
		{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 5},
		{Type: entity.TransactionTypeOutward, ItemID: it.ID, Quantity: 3},
		{Type: entity.TransactionTypeAdjustment, ItemID: it.ID, Quantity: 1},
		{Type: entity.TransactionTypeTransfer, ItemID: it.ID, Quantity: 2, FromLocation: "A", ToLocation: "B"},
	} {
		_, err := f.uc.RecordTransaction(ctx, staff, in)
		require.NoError(t, err)
	}

	sum, err := f.uc.Summary(ctx, viewer, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.TotalInward)
	assert.Equal(t, int64(3), sum.TotalOutward)
	assert.Equal(t, 1, sum.TotalAdjustments)
	assert.Equal(t, 1, sum.TotalTransfers)

	from := testNow.Add(time.Hour)
	sum, err = f.uc.Summary(ctx, viewer, &from, nil)
	require.NoError(t, err)
	assert.Zero(t, sum.TotalInward)

	to := testNow.Add(-time.Hour)
	_, err = f.uc.Summary(ctx, viewer, &from, &to)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStats(t *testing.T) {
	items := []*entity.InventoryItem{
		{Quantity: 0, MinQuantity: 2, UnitPrice: decimal.NewFromInt(10), Status: entity.ItemStatusActive},
		{Quantity: 2, MinQuantity: 2, UnitPrice: decimal.NewFromInt(10), Status: entity.ItemStatusActive},
		{Quantity: 9, MinQuantity: 2, UnitPrice: decimal.RequireFromString("1.5"), Status: entity.ItemStatusInactive},
	}
	s := ledger.Stats(items)
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 1, s.LowStock)
	assert.Equal(t, 2, s.ActiveCount)
	assert.Equal(t, 1, s.InactiveCount)
	assert.True(t, decimal.RequireFromString("33.5").Equal(s.TotalValue))
}

func TestDeleteTransaction_SoloAdminYSinTocarStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Sierra", 2)
	res, err := f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{Type: entity.TransactionTypeInward, ItemID: it.ID, Quantity: 3})
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.DeleteTransaction(ctx, manager, res.Transaction.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.DeleteTransaction(ctx, admin, res.Transaction.ID))
	assert.ErrorIs(t, f.uc.DeleteTransaction(ctx, admin, res.Transaction.ID), domain.ErrNotFound)
	assert.Equal(t, int64(5), f.quantity(t, it.ID))
}

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateItem(ctx, staff, ledger.CreateItemInput{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{Name: "X", MinQuantity: 5, MaxQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	it, err := f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{Name: "X", ItemCode: "C-1"})
	require.NoError(t, err)
	assert.Equal(t, "pcs", it.Unit)
	assert.Equal(t, entity.ItemStatusActive, it.Status)

	_, err = f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{Name: "Y", ItemCode: "C-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSendToRepair_YReconciliacionFusiona(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drill := f.item(t, "Drill", 10)

	res, err := f.uc.SendToRepair(ctx, manager, drill.ID, 3, "motor quemado")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Item.Quantity)
	assert.Equal(t, int64(3), res.RepairItem.Quantity)
	assert.True(t, res.RepairItem.Flags.IsRepairing)
	assert.Equal(t, entity.ReferenceRepair, res.Transaction.ReferenceType)
	assert.Equal(t, entity.TransactionTypeOutward, res.Transaction.Type)

	again, err := f.uc.SendToRepair(ctx, manager, drill.ID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, res.RepairItem.ID, again.RepairItem.ID)
	assert.Equal(t, int64(5), again.RepairItem.Quantity)
	assert.Equal(t, int64(5), f.quantity(t, drill.ID))

	rec, err := f.uc.ReconcileRepairItem(ctx, manager, res.RepairItem.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcileMerged, rec.Outcome)
	assert.Equal(t, drill.ID, rec.Item.ID)
	assert.Equal(t, int64(10), f.quantity(t, drill.ID))

	_, err = f.uc.GetItem(ctx, viewer, res.RepairItem.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec, err = f.uc.ReconcileRepairItem(ctx, manager, res.RepairItem.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcileNoop, rec.Outcome)
	assert.Equal(t, int64(10), f.quantity(t, drill.ID))
}

func TestReconcile_FusionConservaElHistorialDelArticuloReparado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	primary := f.item(t, "Pulidora", 1)
	repair, err := f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{
		Name: "Pulidora", Quantity: 1, Flags: entity.ItemFlags{IsRepairing: true},
	})
	require.NoError(t, err)
	in, err := f.uc.RecordTransaction(ctx, staff, ledger.RecordInput{
		Type: entity.TransactionTypeInward, ItemID: repair.ID, Quantity: 2,
	})
	require.NoError(t, err)

	rec, err := f.uc.ReconcileRepairItem(ctx, manager, repair.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcileMerged, rec.Outcome)
	assert.Equal(t, int64(4), f.quantity(t, primary.ID))

	list, total, err := f.uc.ListTransactions(ctx, viewer, repository.TransactionFilter{ItemID: repair.ID, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, in.Transaction.Number, list[0].Number)
	assert.Equal(t, repair.ID, list[0].ItemID)
	assert.Equal(t, int64(2), list[0].Quantity)
}

func TestSendToRepair_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drill := f.item(t, "Drill", 2)

	_, err := f.uc.SendToRepair(ctx, staff, drill.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.SendToRepair(ctx, manager, drill.ID, 5, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	res, err := f.uc.SendToRepair(ctx, manager, drill.ID, 1, "")
	require.NoError(t, err)
	_, err = f.uc.SendToRepair(ctx, manager, res.RepairItem.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_PromueveSinArticuloNormal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repair, err := f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{
		Name: "Compresor", Quantity: 2, Flags: entity.ItemFlags{IsRepairing: true},
	})
	require.NoError(t, err)

	rec, err := f.uc.ReconcileRepairItem(ctx, manager, repair.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcilePromoted, rec.Outcome)
	assert.False(t, rec.Item.Flags.IsRepairing)
	assert.Equal(t, int64(2), rec.Item.Quantity)

	rec, err = f.uc.ReconcileRepairItem(ctx, manager, repair.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcileNoop, rec.Outcome)
}

func TestReconcile_NombreNormalizado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	primary := f.item(t, "drill", 1)
	repair, err := f.uc.CreateItem(ctx, manager, ledger.CreateItemInput{
		Name: "  DRILL ", Quantity: 4, Flags: entity.ItemFlags{IsRepairing: true},
	})
	require.NoError(t, err)

	rec, err := f.uc.ReconcileRepairItem(ctx, manager, repair.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ReconcileMerged, rec.Outcome)
	assert.Equal(t, int64(5), f.quantity(t, primary.ID))
}

func TestGoodsReceipt_DevolucionDePase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, "Andamio", 1)
	h := ledger.NewGoodsReceipt(f.uc)

	ev := entity.Event{
		ID:      "ev-1",
		Type:    entity.EventGatePassItemReturned,
		ActorID: staff.ID,
		Payload: entity.GatePassItemReturnedPayload{
			GatePassID: "gp-1", Number: "GP-2025-0001", ItemID: it.ID, ItemName: "Andamio", Quantity: 2,
		},
	}
	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, int64(3), f.quantity(t, it.ID))

	list, _, err := f.uc.ListTransactions(ctx, viewer, repository.TransactionFilter{ReferenceType: entity.ReferenceGatePass})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "gp-1", list[0].ReferenceID)
}

func TestGoodsReceipt_SolicitudCompletada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "Guantes", 0)
	b := f.item(t, "Cascos", 1)
	h := ledger.NewGoodsReceipt(f.uc)

	approved := entity.Event{
		ID:   "ev-a",
		Type: entity.EventIndentStatusChanged,
		Payload: entity.IndentStatusChangedPayload{
			IndentID: "ind-1", To: entity.IndentStatusApproved,
			Items: []entity.ReceivedLine{{ItemID: a.ID, Quantity: 10}},
		},
	}
	require.NoError(t, h.Handle(ctx, approved))
	assert.Equal(t, int64(0), f.quantity(t, a.ID))

	completed := entity.Event{
		ID:      "ev-c",
		Type:    entity.EventIndentStatusChanged,
		ActorID: manager.ID,
		Payload: entity.IndentStatusChangedPayload{
			IndentID: "ind-1", Number: "IND-2025-001", To: entity.IndentStatusCompleted,
			Items: []entity.ReceivedLine{
				{ItemID: a.ID, ItemName: "Guantes", Quantity: 10, UnitPrice: decimal.NewFromInt(3)},
				{ItemName: "Sin catálogo", Quantity: 1},
				{ItemID: b.ID, ItemName: "Cascos", Quantity: 4},
			},
		},
	}
	require.NoError(t, h.Handle(ctx, completed))
	require.NoError(t, h.Handle(ctx, completed))
	assert.Equal(t, int64(10), f.quantity(t, a.ID))
	assert.Equal(t, int64(5), f.quantity(t, b.ID))
}

func TestInferLegacyFlags(t *testing.T) {
	cases := []struct {
		notes, name string
		want        string
	}{
		{"", "[REPAIR] Drill", entity.ItemKindRepair},
		{"sent for repair", "Drill", entity.ItemKindRepair},
		{"", "Reparación motor", entity.ItemKindRepair},
		{"misc items", "Box", entity.ItemKindOther},
		{"repair of misc", "", entity.ItemKindRepair},
		{"repairman visit", "Drill", entity.ItemKindNormal},
		{"", "", entity.ItemKindNormal},
	}
	for _, tc := range cases {
		t.Run(tc.notes+"|"+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.InferLegacyFlags(tc.notes, tc.name).Kind())
		})
	}
}

func TestBackfillLegacyFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []ledger.CreateItemInput{
		{Name: "Drill"},
		{Name: "Grinder", Description: "sent for repair"},
		{Name: "Misc items"},
	} {
		_, err := f.uc.CreateItem(ctx, manager, in)
		require.NoError(t, err)
	}

	_, err := f.uc.BackfillLegacyFlags(ctx, staff, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	dry, err := f.uc.BackfillLegacyFlags(ctx, admin, true)
	require.NoError(t, err)
	require.Len(t, dry, 2)
	normal, err := f.uc.ListItems(ctx, viewer, repository.InventoryItemFilter{Kind: entity.ItemKindNormal})
	require.NoError(t, err)
	assert.Len(t, normal, 3)

	applied, err := f.uc.BackfillLegacyFlags(ctx, admin, false)
	require.NoError(t, err)
	names := map[string]string{}
	for _, ch := range applied {
		names[ch.Name] = ch.Flags.Kind()
	}
	assert.Equal(t, map[string]string{"Grinder": entity.ItemKindRepair, "Misc items": entity.ItemKindOther}, names)

	repairs, err := f.uc.ListItems(ctx, viewer, repository.InventoryItemFilter{Kind: entity.ItemKindRepair})
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	assert.Equal(t, "Grinder", repairs[0].Name)

	again, err := f.uc.BackfillLegacyFlags(ctx, admin, false)
	require.NoError(t, err)
	assert.Empty(t, again)
}
