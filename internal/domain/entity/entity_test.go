package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

func TestEvaluateGatePass(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		status   string
		from, to time.Time
		now      time.Time
		verified bool
		reason   string
	}{
		{"aprobado en ventana", entity.GatePassStatusApproved, from, to, mid, true, entity.VerifyReasonValid},
		{"borde valid_to", entity.GatePassStatusApproved, from, to, to, true, entity.VerifyReasonValid},
		{"borde valid_from", entity.GatePassStatusApproved, from, to, from, true, entity.VerifyReasonValid},
		{"vencido", entity.GatePassStatusApproved, from, to, to.Add(time.Second), false, entity.VerifyReasonExpired},
		{"antes de vigencia", entity.GatePassStatusApproved, from, to, from.Add(-time.Second), false, entity.VerifyReasonInvalid},
		{"pendiente", entity.GatePassStatusPending, from, to, mid, false, entity.VerifyReasonNotYetApproved},
		{"pendiente vencido", entity.GatePassStatusPending, from, to, to.AddDate(0, 1, 0), false, entity.VerifyReasonNotYetApproved},
		{"rechazado", entity.GatePassStatusRejected, from, to, mid, false, entity.VerifyReasonInvalid},
		{"completado", entity.GatePassStatusCompleted, from, to, mid, false, entity.VerifyReasonInvalid},
		{"ventana invertida", entity.GatePassStatusApproved, to, from, mid, false, entity.VerifyReasonInvalid},
		{"ventana vacía", entity.GatePassStatusApproved, time.Time{}, to, mid, false, entity.VerifyReasonInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := entity.EvaluateGatePass("GP-2025-0001", tc.status, tc.from, tc.to, tc.now)
			assert.Equal(t, "GP-2025-0001", v.Number)
			assert.Equal(t, tc.verified, v.Verified)
			assert.Equal(t, tc.reason, v.Reason)
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, entity.CanTransitionGatePass(entity.GatePassStatusPending, entity.GatePassStatusApproved))
	assert.True(t, entity.CanTransitionGatePass(entity.GatePassStatusPending, entity.GatePassStatusRejected))
	assert.True(t, entity.CanTransitionGatePass(entity.GatePassStatusApproved, entity.GatePassStatusCompleted))
	assert.False(t, entity.CanTransitionGatePass(entity.GatePassStatusPending, entity.GatePassStatusCompleted))
	assert.False(t, entity.CanTransitionGatePass(entity.GatePassStatusApproved, entity.GatePassStatusRejected))
	assert.False(t, entity.CanTransitionGatePass(entity.GatePassStatusRejected, entity.GatePassStatusApproved))
	assert.False(t, entity.CanTransitionGatePass(entity.GatePassStatusCompleted, entity.GatePassStatusApproved))

	assert.True(t, entity.CanTransitionIndent(entity.IndentStatusPending, entity.IndentStatusApproved))
	assert.True(t, entity.CanTransitionIndent(entity.IndentStatusApproved, entity.IndentStatusCompleted))
	assert.False(t, entity.CanTransitionIndent(entity.IndentStatusRejected, entity.IndentStatusApproved))
	assert.False(t, entity.CanTransitionIndent(entity.IndentStatusPending, entity.IndentStatusCompleted))
}

func TestGatePass_FullyReturned(t *testing.T) {
	var empty entity.GatePass
	assert.False(t, empty.FullyReturned())

	p := entity.GatePass{Items: []entity.GatePassItem{
		{Quantity: 5, ReturnedQuantity: 5},
		{Quantity: 2, ReturnedQuantity: 1},
	}}
	assert.False(t, p.FullyReturned())
	p.Items[1].ReturnedQuantity = 2
	assert.True(t, p.FullyReturned())
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "GP-2025-0007", entity.FormatDocumentNumber("GP", "2025", 7, entity.GatePassNumberPad))
	assert.Equal(t, "IND-2025-003", entity.FormatDocumentNumber("IND", "2025", 3, entity.IndentNumberPad))
	assert.Equal(t, "TRX-2026-00042", entity.FormatDocumentNumber("TRX", "2026", 42, entity.TransactionNumberPad))
	assert.Equal(t, "IND-2025-1000", entity.FormatDocumentNumber("IND", "2025", 1000, entity.IndentNumberPad))
}

func TestNormalizeItemName(t *testing.T) {
	assert.Equal(t, entity.NormalizeItemName("drill"), entity.NormalizeItemName("  DRILL "))
	assert.Equal(t, entity.NormalizeItemName("Árbol"), entity.NormalizeItemName("ÁRBOL"))
	assert.NotEqual(t, entity.NormalizeItemName("drill"), entity.NormalizeItemName("drills"))
}

func TestItemFlags_Kind(t *testing.T) {
	assert.Equal(t, entity.ItemKindNormal, entity.ItemFlags{}.Kind())
	assert.Equal(t, entity.ItemKindOther, entity.ItemFlags{IsOther: true}.Kind())
	assert.Equal(t, entity.ItemKindRepair, entity.ItemFlags{IsRepairing: true, IsOther: true}.Kind())
}

func TestIndentTotal(t *testing.T) {
	items := []entity.IndentItem{
		{Quantity: 3, EstimatedPrice: decimal.RequireFromString("2.10")},
		{Quantity: 1, EstimatedPrice: decimal.NewFromInt(7)},
		{Quantity: 4},
	}
	total := entity.IndentTotal(items)
	assert.True(t, decimal.RequireFromString("13.30").Equal(total))
	assert.True(t, decimal.RequireFromString("6.30").Equal(items[0].TotalPrice))
	assert.True(t, items[2].TotalPrice.IsZero())
}

func TestTransaction_Delta(t *testing.T) {
	in := entity.Transaction{Type: entity.TransactionTypeInward, ItemID: "i", Quantity: 4}
	out := entity.Transaction{Type: entity.TransactionTypeOutward, ItemID: "i", Quantity: 4}
	adj := entity.Transaction{Type: entity.TransactionTypeAdjustment, ItemID: "i", Quantity: 4}
	manual := entity.Transaction{Type: entity.TransactionTypeInward, Quantity: 4}

	assert.Equal(t, int64(4), in.Delta())
	assert.Equal(t, int64(-4), out.Delta())
	assert.Zero(t, adj.Delta())
	assert.True(t, in.AffectsStock())
	assert.False(t, adj.AffectsStock())
	assert.False(t, manual.AffectsStock())
}
