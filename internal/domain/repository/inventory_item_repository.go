package repository

import (
	"context"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// InventoryItemFilter filtros de listado de artículos.
type InventoryItemFilter struct {
	Category    string
	Status      string
	Kind        string // normal, repair, other
	SearchTerm  string
	MinQuantity *int64
	MaxQuantity *int64
	Limit       int
	Offset      int
}

// InventoryItemRepository puerto de persistencia para artículos.
// Las escrituras de cantidad y banderas son condicionales a Version (concurrencia optimista):
// si la versión no coincide devuelven domain.ErrConflict sin escribir.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// FindNormalByName busca un artículo normal (sin banderas) por nombre normalizado, excluyendo excludeID.
	FindNormalByName(ctx context.Context, normalizedName, excludeID string) (*entity.InventoryItem, error)
	// FindRepairTwin busca el artículo en reparación con el mismo nombre normalizado.
	FindRepairTwin(ctx context.Context, normalizedName string) (*entity.InventoryItem, error)
	List(ctx context.Context, filter InventoryItemFilter) ([]*entity.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id string, expectedVersion, quantity int64) error
	UpdateFlags(ctx context.Context, id string, expectedVersion int64, flags entity.ItemFlags) error
	Delete(ctx context.Context, id string, expectedVersion int64) error
}
