package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación del puerto InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, COALESCE(item_code, ''), name, description, category, unit, quantity, min_quantity, max_quantity,
	unit_price, location, supplier, status, is_repairing, is_other, version, created_by, created_at, updated_at`

func scanItem(row pgxScanner) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.ItemCode, &it.Name, &it.Description, &it.Category, &it.Unit,
		&it.Quantity, &it.MinQuantity, &it.MaxQuantity, &it.UnitPrice, &it.Location, &it.Supplier,
		&it.Status, &it.Flags.IsRepairing, &it.Flags.IsOther, &it.Version, &it.CreatedBy,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un artículo. name_key guarda el nombre normalizado para las búsquedas de reconciliación.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	if item.Version == 0 {
		item.Version = 1
	}
	query := `
		INSERT INTO inventory_items (id, item_code, name, name_key, description, category, unit, quantity,
			min_quantity, max_quantity, unit_price, location, supplier, status, is_repairing, is_other,
			version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		item.ID, nullString(item.ItemCode), item.Name, entity.NormalizeItemName(item.Name), item.Description,
		item.Category, item.Unit, item.Quantity, item.MinQuantity, item.MaxQuantity, item.UnitPrice,
		item.Location, item.Supplier, item.Status, item.Flags.IsRepairing, item.Flags.IsOther,
		item.Version, item.CreatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert inventory item", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID; (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get inventory item", err)
	}
	return it, nil
}

func (r *InventoryItemRepo) FindNormalByName(ctx context.Context, normalizedName, excludeID string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE name_key = $1 AND id <> $2 AND NOT is_repairing AND NOT is_other
		ORDER BY created_at, id LIMIT 1`
	return r.findOne(ctx, "find normal item", query, normalizedName, excludeID)
}

func (r *InventoryItemRepo) FindRepairTwin(ctx context.Context, normalizedName string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE name_key = $1 AND is_repairing
		ORDER BY created_at, id LIMIT 1`
	return r.findOne(ctx, "find repair item", query, normalizedName)
}

func (r *InventoryItemRepo) findOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return it, nil
}

// List lista artículos ordenados por nombre.
func (r *InventoryItemRepo) List(ctx context.Context, f repository.InventoryItemFilter) ([]*entity.InventoryItem, error) {
	var w where
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	switch f.Kind {
	case entity.ItemKindNormal:
		w.conds = append(w.conds, "NOT is_repairing AND NOT is_other")
	case entity.ItemKindRepair:
		w.conds = append(w.conds, "is_repairing")
	case entity.ItemKindOther:
		w.conds = append(w.conds, "is_other AND NOT is_repairing")
	}
	if f.SearchTerm != "" {
		w.add("(name ILIKE ? OR item_code ILIKE ?)", "%"+f.SearchTerm+"%")
	}
	if f.MinQuantity != nil {
		w.add("quantity >= ?", *f.MinQuantity)
	}
	if f.MaxQuantity != nil {
		w.add("quantity <= ?", *f.MaxQuantity)
	}
	page, args := limitClause(w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items`+w.String()+` ORDER BY name, id`+page, args...)
	if err != nil {
		return nil, wrap("list inventory items", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan inventory item", err)
		}
		list = append(list, it)
	}
	return list, wrap("list inventory items", rows.Err())
}

// UpdateQuantity escritura condicional a la versión leída (concurrencia optimista).
func (r *InventoryItemRepo) UpdateQuantity(ctx context.Context, id string, expectedVersion, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET quantity = $3, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $2`,
		id, expectedVersion, quantity,
	)
	if err != nil {
		return wrap("update item quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *InventoryItemRepo) UpdateFlags(ctx context.Context, id string, expectedVersion int64, flags entity.ItemFlags) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET is_repairing = $3, is_other = $4, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $2`,
		id, expectedVersion, flags.IsRepairing, flags.IsOther,
	)
	if err != nil {
		return wrap("update item flags", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *InventoryItemRepo) Delete(ctx context.Context, id string, expectedVersion int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return wrap("delete inventory item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
