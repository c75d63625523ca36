// Package natsbus publica los eventos de dominio en NATS JetStream.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/jhoicas/wms-core/internal/application/ports"
	"github.com/jhoicas/wms-core/internal/domain/entity"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// SubjectPrefix los eventos se publican en wms.events.<tipo>.
const SubjectPrefix = "wms.events"

// Subject asunto NATS del tipo de evento.
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// Publisher publicador JetStream. El ID del evento va como Nats-Msg-Id para que el servidor
// descarte duplicados dentro de la ventana del stream.
type Publisher struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log zerolog.Logger
}

// Connect abre la conexión, asegura el stream y devuelve el publicador.
func Connect(ctx context.Context, url, stream string, log zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("wms-core"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	if stream != "" {
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:       stream,
			Subjects:   []string{SubjectPrefix + ".>"},
			Storage:    jetstream.FileStorage,
			Duplicates: 2 * time.Minute,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("crear stream %s: %w", stream, err)
		}
	}
	return &Publisher{nc: nc, js: js, log: log}, nil
}

// Publish serializa el evento como JSON y espera el ack de JetStream.
func (p *Publisher) Publish(ctx context.Context, ev entity.Event) error {
	if ev.Type == "" {
		return errors.New("natsbus: evento sin tipo")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	opts := []jetstream.PublishOpt{}
	if ev.ID != "" {
		opts = append(opts, jetstream.WithMsgID(ev.ID))
	}
	ack, err := p.js.Publish(ctx, Subject(ev.Type), data, opts...)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", Subject(ev.Type), err)
	}
	if ack.Duplicate {
		p.log.Debug().Str("event_id", ev.ID).Msg("evento duplicado descartado por jetstream")
	}
	return nil
}

// Close drena la conexión.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
