package repository

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// GatePassFilter filtros de listado de pases.
type GatePassFilter struct {
	Type       string
	Status     string
	SearchTerm string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// GatePassRepository puerto de persistencia para pases y sus líneas.
type GatePassRepository interface {
	// Create persiste cabecera y líneas. Usar dentro de un TxRunner para atomicidad.
	// domain.ErrDuplicate si el número ya existe.
	Create(ctx context.Context, pass *entity.GatePass) error
	GetByID(ctx context.Context, id string) (*entity.GatePass, error)
	// GetByIDForUpdate lee el pase bloqueando su cabecera hasta el fin de la transacción
	// y carga las líneas después de obtener el bloqueo. Solo tiene efecto dentro de un
	// TxRunner: quien modifica líneas y decide el cierre del pase debe leerlo así, para
	// que dos devoluciones concurrentes vean cada una la línea que confirmó la otra.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.GatePass, error)
	GetByNumber(ctx context.Context, number string) (*entity.GatePass, error)
	GetItem(ctx context.Context, itemID string) (*entity.GatePassItem, error)
	List(ctx context.Context, filter GatePassFilter) ([]*entity.GatePass, int, error)
	// UpdateStatus transición condicional: solo escribe si el estado actual es change.From,
	// si no devuelve domain.ErrConflict.
	UpdateStatus(ctx context.Context, id string, change entity.GatePassStatusChange) error
	// AddReturned suma qty a returned_quantity solo si no supera quantity (domain.ErrOverReturn).
	AddReturned(ctx context.Context, itemID string, qty int64) (*entity.GatePassItem, error)
}
