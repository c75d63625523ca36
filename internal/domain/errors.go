package domain

import (
	"context"
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrAlreadyRecorded = errors.New("la referencia ya fue registrada en el libro")

	// ErrInvalidTransition el estado actual no admite la transición. Envuelve ErrConflict:
	// quien pierde una carrera de aprobación recibe cualquiera de los dos y debe releer el estado.
	ErrInvalidTransition = fmt.Errorf("transición de estado no permitida: %w", ErrConflict)

	// Reglas de negocio: se muestran al usuario, no se reintentan.
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverReturn        = errors.New("la cantidad devuelta supera la cantidad emitida")
	ErrReasonRequired    = errors.New("el motivo de rechazo es obligatorio")

	// ErrStorageUnavailable error transitorio de persistencia (timeout, conexión caída).
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")

	// ErrStockDriftDetected advertencia no fatal: la cantidad calculada era negativa y se truncó a 0.
	ErrStockDriftDetected = errors.New("desviación de stock detectada")

	// ErrEventNotDelivered advertencia no fatal: el cambio quedó confirmado pero algún
	// publicador o suscriptor falló. En una solicitud completada significa que el libro
	// no registró la recepción.
	ErrEventNotDelivered = errors.New("evento no entregado")
)

// IsTransient indica si el error puede reintentarse con backoff.
func IsTransient(err error) bool {
	if errors.Is(err, ErrInvalidTransition) {
		return false
	}
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrConflict)
}

// StorageError normaliza errores de contexto a ErrStorageUnavailable.
// Cualquier otro error se devuelve intacto.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return err
}
