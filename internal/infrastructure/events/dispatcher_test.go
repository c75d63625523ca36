package events_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/infrastructure/events"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, entity.Event) error {
	return errors.New("broker caído")
}

type handlerFunc func(context.Context, entity.Event) error

func (f handlerFunc) Handle(ctx context.Context, ev entity.Event) error { return f(ctx, ev) }

func TestDispatcher_EntregaATodosAunqueUnoFalle(t *testing.T) {
	rec := &events.Recorder{}
	var handled []string
	d := events.NewDispatcher().
		AddPublisher(failingPublisher{}).
		AddPublisher(rec).
		Subscribe(handlerFunc(func(_ context.Context, ev entity.Event) error {
			handled = append(handled, ev.ID)
			return nil
		}))

	err := d.Publish(context.Background(), entity.Event{Type: entity.EventTransactionRecorded})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker caído")

	got := rec.Events()
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, []string{got[0].ID}, handled)
}

func TestDispatcher_ConservaElID(t *testing.T) {
	rec := &events.Recorder{}
	d := events.NewDispatcher().AddPublisher(rec)
	require.NoError(t, d.Publish(context.Background(), entity.Event{ID: "ev-1", Type: entity.EventIndentStatusChanged}))
	assert.Equal(t, "ev-1", rec.Events()[0].ID)
}

func TestDispatcher_ErrorDeSuscriptor(t *testing.T) {
	d := events.NewDispatcher().Subscribe(handlerFunc(func(context.Context, entity.Event) error {
		return errors.New("libro no disponible")
	}))
	err := d.Publish(context.Background(), entity.Event{Type: entity.EventGatePassItemReturned})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "libro no disponible")
}

func TestRecorder_OfType(t *testing.T) {
	rec := &events.Recorder{}
	ctx := context.Background()
	_ = rec.Publish(ctx, entity.Event{Type: entity.EventTransactionRecorded})
	_ = rec.Publish(ctx, entity.Event{Type: entity.EventGatePassStatusChanged})
	_ = rec.Publish(ctx, entity.Event{Type: entity.EventTransactionRecorded})

	assert.Len(t, rec.OfType(entity.EventTransactionRecorded), 2)
	assert.Len(t, rec.OfType(entity.EventIndentStatusChanged), 0)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(zerolog.New(&buf))
	err := p.Publish(context.Background(), entity.Event{
		ID:         "ev-9",
		Type:       entity.EventGatePassStatusChanged,
		OccurredAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		Payload:    entity.GatePassStatusChangedPayload{Number: "GP-2025-0001", From: "pending", To: "approved"},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"event_id":"ev-9"`)
	assert.Contains(t, out, `"event":"gate_pass_status_changed"`)
	assert.Contains(t, out, `"number":"GP-2025-0001"`)
}
