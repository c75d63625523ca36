// Package metrics expone los colectores Prometheus del núcleo de almacén.
// Todos los métodos aceptan receptor nil para poder omitir métricas en tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics agrupa los colectores registrados.
type Metrics struct {
	sequenceAttempts  *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	stockDrift        prometheus.Counter
	statusTransitions *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
}

// New crea y registra los colectores en reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sequenceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Name:      "sequence_allocation_attempts_total",
			Help:      "Intentos de asignación de números de documento por ámbito y resultado.",
		}, []string{"scope", "result"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Name:      "ledger_transactions_total",
			Help:      "Transacciones registradas en el libro por tipo.",
		}, []string{"type"}),
		stockDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wms",
			Name:      "ledger_stock_drift_total",
			Help:      "Escrituras de stock truncadas a cero (revisión de operador).",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Name:      "document_status_transitions_total",
			Help:      "Transiciones de estado de pases y solicitudes.",
		}, []string{"document", "to", "result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Name:      "events_published_total",
			Help:      "Eventos de dominio publicados por tipo y resultado.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.sequenceAttempts, m.transactions, m.stockDrift, m.statusTransitions, m.eventsPublished)
	return m
}

func (m *Metrics) SequenceAttempt(scope, result string) {
	if m == nil {
		return
	}
	m.sequenceAttempts.WithLabelValues(scope, result).Inc()
}

func (m *Metrics) TransactionRecorded(txType string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(txType).Inc()
}

func (m *Metrics) StockDrift() {
	if m == nil {
		return
	}
	m.stockDrift.Inc()
}

func (m *Metrics) StatusTransition(document, to, result string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(document, to, result).Inc()
}

func (m *Metrics) EventPublished(eventType, result string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}
