package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Estados de un artículo de inventario.
const (
	ItemStatusActive       = "active"
	ItemStatusInactive     = "inactive"
	ItemStatusDiscontinued = "discontinued"
)

// Clases de artículo derivadas de las banderas.
const (
	ItemKindNormal = "normal"
	ItemKindRepair = "repair"
	ItemKindOther  = "other"
)

// ItemFlags categoría explícita fijada al crear el artículo.
// Un artículo en reparación u "otro" nunca se suma automáticamente al stock principal.
type ItemFlags struct {
	IsRepairing bool
	IsOther     bool
}

// Kind devuelve la clase del artículo (repair tiene prioridad sobre other).
func (f ItemFlags) Kind() string {
	switch {
	case f.IsRepairing:
		return ItemKindRepair
	case f.IsOther:
		return ItemKindOther
	default:
		return ItemKindNormal
	}
}

// InventoryItem artículo con su cantidad disponible. Quantity >= 0 siempre.
// Version se incrementa en cada escritura (concurrencia optimista).
type InventoryItem struct {
	ID          string
	ItemCode    string
	Name        string
	Description string
	Category    string
	Unit        string
	Quantity    int64
	MinQuantity int64
	MaxQuantity int64
	UnitPrice   decimal.Decimal
	Location    string
	Supplier    string
	Status      string // active, inactive, discontinued
	Flags       ItemFlags
	Version     int64
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsNormal indica que el artículo pertenece al stock principal.
func (i *InventoryItem) IsNormal() bool {
	return i.Flags.Kind() == ItemKindNormal
}

// Value valor del stock a precio unitario.
func (i *InventoryItem) Value() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// InventoryStats agregados sobre los artículos actuales.
type InventoryStats struct {
	TotalItems    int
	LowStock      int
	OutOfStock    int
	TotalValue    decimal.Decimal
	ActiveCount   int
	InactiveCount int
}

// NormalizeItemName clave de comparación de nombres: sin espacios extremos y con
// plegado de mayúsculas Unicode ("  Drill " y "drill" coinciden).
func NormalizeItemName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
