package ports

import (
	"context"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// EventPublisher define el puerto de salida para eventos de dominio
// (TransactionRecorded, GatePassStatusChanged, IndentStatusChanged, ...).
// Los consumidores (tableros, notificaciones, el propio libro) quedan fuera del núcleo.
// Publish se invoca después de confirmar la escritura: un fallo de publicación
// no deshace lo ya confirmado y se devuelve al llamador para que lo registre.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// EventHandler consumidor en proceso de eventos de dominio.
type EventHandler interface {
	Handle(ctx context.Context, event entity.Event) error
}
