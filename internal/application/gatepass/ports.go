package gatepass

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/pkg/jwt"
)

// TxRunner ejecuta fn en una transacción de BD: cabecera y líneas del pase se guardan juntas o no se guardan.
type TxRunner interface {
	RunGatePass(ctx context.Context, fn func(passes repository.GatePassRepository) error) error
}

// NumberAllocator asigna el número GP y reintenta la inserción ante número duplicado.
type NumberAllocator interface {
	WithNumber(ctx context.Context, scope string, now time.Time, insert func(number string) error) (string, error)
}

// TokenSigner firma y valida el token del QR.
type TokenSigner interface {
	Sign(t jwt.GatePassToken) (string, error)
	Parse(token string) (jwt.GatePassToken, error)
}
