// Package events adaptadores en proceso del puerto de eventos: reparto a varios destinos
// y publicación en el log estructurado.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/wms-core/internal/application/ports"
	"github.com/jhoicas/wms-core/internal/domain/entity"
)

var (
	_ ports.EventPublisher = (*Dispatcher)(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
)

// Dispatcher reparte cada evento a los publicadores externos y a los suscriptores en proceso,
// en orden y de forma síncrona. Un fallo no impide entregar a los demás destinos.
type Dispatcher struct {
	publishers []ports.EventPublisher
	handlers   []ports.EventHandler
}

// NewDispatcher crea un repartidor vacío.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// AddPublisher registra un destino externo (NATS, log).
func (d *Dispatcher) AddPublisher(p ports.EventPublisher) *Dispatcher {
	d.publishers = append(d.publishers, p)
	return d
}

// Subscribe registra un suscriptor en proceso.
func (d *Dispatcher) Subscribe(h ports.EventHandler) *Dispatcher {
	d.handlers = append(d.handlers, h)
	return d
}

func (d *Dispatcher) Publish(ctx context.Context, ev entity.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	var errs []error
	for _, p := range d.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	for _, h := range d.handlers {
		if err := h.Handle(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("suscriptor %T: %w", h, err))
		}
	}
	return errors.Join(errs...)
}

// LogPublisher escribe cada evento en el log (nivel info).
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador sobre log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev entity.Event) error {
	p.log.Info().
		Str("event_id", ev.ID).
		Str("event", ev.Type).
		Str("actor", ev.ActorID).
		Interface("payload", ev.Payload).
		Time("occurred_at", ev.OccurredAt).
		Msg("evento de dominio")
	return nil
}

// Recorder guarda los eventos publicados. Útil en tests y en diagnósticos.
type Recorder struct {
	mu     sync.Mutex
	events []entity.Event
}

func (r *Recorder) Publish(_ context.Context, ev entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events copia de lo publicado hasta ahora.
func (r *Recorder) Events() []entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Event(nil), r.events...)
}

// OfType filtra por tipo de evento.
func (r *Recorder) OfType(eventType string) []entity.Event {
	var out []entity.Event
	for _, ev := range r.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
