package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo artículos en memoria.
type InventoryItemRepo struct {
	c *conn
}

func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.c.do(ctx, func(st *state) error {
		if _, ok := st.items[item.ID]; ok {
			return domain.ErrDuplicate
		}
		if item.ItemCode != "" {
			for _, it := range st.items {
				if it.ItemCode == item.ItemCode {
					return domain.ErrDuplicate
				}
			}
		}
		if item.Version == 0 {
			item.Version = 1
		}
		cp := *item
		st.items[item.ID] = &cp
		return nil
	})
}

func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.c.do(ctx, func(st *state) error {
		if it, ok := st.items[id]; ok {
			cp := *it
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *InventoryItemRepo) FindNormalByName(ctx context.Context, normalizedName, excludeID string) (*entity.InventoryItem, error) {
	return r.findByName(ctx, normalizedName, func(it *entity.InventoryItem) bool {
		return it.ID != excludeID && it.IsNormal()
	})
}

func (r *InventoryItemRepo) FindRepairTwin(ctx context.Context, normalizedName string) (*entity.InventoryItem, error) {
	return r.findByName(ctx, normalizedName, func(it *entity.InventoryItem) bool {
		return it.Flags.IsRepairing
	})
}

// findByName devuelve la coincidencia más antigua para que el resultado sea estable.
func (r *InventoryItemRepo) findByName(ctx context.Context, normalizedName string, keep func(*entity.InventoryItem) bool) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.c.do(ctx, func(st *state) error {
		for _, it := range st.items {
			if entity.NormalizeItemName(it.Name) != normalizedName || !keep(it) {
				continue
			}
			if out == nil || it.CreatedAt.Before(out.CreatedAt) || (it.CreatedAt.Equal(out.CreatedAt) && it.ID < out.ID) {
				cp := *it
				out = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryItemRepo) List(ctx context.Context, f repository.InventoryItemFilter) ([]*entity.InventoryItem, error) {
	var list []*entity.InventoryItem
	err := r.c.do(ctx, func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
		for _, it := range st.items {
			if f.Category != "" && it.Category != f.Category {
				continue
			}
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			if f.Kind != "" && it.Flags.Kind() != f.Kind {
				continue
			}
			if term != "" && !strings.Contains(strings.ToLower(it.Name), term) && !strings.Contains(strings.ToLower(it.ItemCode), term) {
				continue
			}
			if f.MinQuantity != nil && it.Quantity < *f.MinQuantity {
				continue
			}
			if f.MaxQuantity != nil && it.Quantity > *f.MaxQuantity {
				continue
			}
			cp := *it
			list = append(list, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	from, to := paginate(len(list), f.Limit, f.Offset)
	return list[from:to], nil
}

func (r *InventoryItemRepo) UpdateQuantity(ctx context.Context, id string, expectedVersion, quantity int64) error {
	return r.c.do(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok || it.Version != expectedVersion {
			return domain.ErrConflict
		}
		it.Quantity = quantity
		it.Version++
		return nil
	})
}

func (r *InventoryItemRepo) UpdateFlags(ctx context.Context, id string, expectedVersion int64, flags entity.ItemFlags) error {
	return r.c.do(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok || it.Version != expectedVersion {
			return domain.ErrConflict
		}
		it.Flags = flags
		it.Version++
		return nil
	})
}

func (r *InventoryItemRepo) Delete(ctx context.Context, id string, expectedVersion int64) error {
	return r.c.do(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok || it.Version != expectedVersion {
			return domain.ErrConflict
		}
		delete(st.items, id)
		return nil
	})
}
