package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/internal/infrastructure/metrics"
)

func TestMetrics_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SequenceAttempt("GP", "ok")
	m.SequenceAttempt("GP", "ok")
	m.SequenceAttempt("IND", "retry")
	m.TransactionRecorded("inward")
	m.StockDrift()

	expected := `
# HELP wms_sequence_allocation_attempts_total Intentos de asignación de números de documento por ámbito y resultado.
# TYPE wms_sequence_allocation_attempts_total counter
wms_sequence_allocation_attempts_total{result="ok",scope="GP"} 2
wms_sequence_allocation_attempts_total{result="retry",scope="IND"} 1
# HELP wms_ledger_stock_drift_total Escrituras de stock truncadas a cero (revisión de operador).
# TYPE wms_ledger_stock_drift_total counter
wms_ledger_stock_drift_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"wms_sequence_allocation_attempts_total", "wms_ledger_stock_drift_total"))

	n, err := testutil.GatherAndCount(reg, "wms_ledger_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilEsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.SequenceAttempt("GP", "ok")
		m.TransactionRecorded("inward")
		m.StockDrift()
		m.StatusTransition("gate_pass", "approved", "ok")
		m.EventPublished("x", "ok")
	})
}
