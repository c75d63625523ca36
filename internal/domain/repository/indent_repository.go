package repository

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// IndentFilter filtros de listado. RequestedBy lo impone el caso de uso según el rol.
type IndentFilter struct {
	Status      string
	Priority    string
	Department  string
	RequestedBy string
	SearchTerm  string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// IndentRepository puerto de persistencia para solicitudes y sus líneas.
type IndentRepository interface {
	// Create persiste cabecera y líneas. domain.ErrDuplicate si el número ya existe.
	Create(ctx context.Context, indent *entity.PurchaseIndent) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseIndent, error)
	List(ctx context.Context, filter IndentFilter) ([]*entity.PurchaseIndent, int, error)
	// UpdateStatus transición condicional sobre change.From; domain.ErrConflict si perdió la carrera.
	UpdateStatus(ctx context.Context, id string, change entity.IndentStatusChange) error
	DeleteItems(ctx context.Context, indentID string) error
	Delete(ctx context.Context, id string) error
}
