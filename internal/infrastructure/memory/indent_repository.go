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

var _ repository.IndentRepository = (*IndentRepo)(nil)

// IndentRepo solicitudes en memoria.
type IndentRepo struct {
	c *conn
}

func (r *IndentRepo) Create(ctx context.Context, in *entity.PurchaseIndent) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	return r.c.do(ctx, func(st *state) error {
		for _, existing := range st.indents {
			if existing.Number == in.Number {
				return domain.ErrDuplicate
			}
		}
		header := *in
		header.Items = nil
		st.indents[in.ID] = &header
		for i := range in.Items {
			item := &in.Items[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.IndentID = in.ID
			cp := *item
			st.indentItems[item.ID] = &cp
		}
		return nil
	})
}

func (st *state) indentWithItems(in *entity.PurchaseIndent) *entity.PurchaseIndent {
	out := *in
	out.Items = nil
	for _, it := range st.indentItems {
		if it.IndentID == in.ID {
			out.Items = append(out.Items, *it)
		}
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return &out
}

func (r *IndentRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseIndent, error) {
	var out *entity.PurchaseIndent
	err := r.c.do(ctx, func(st *state) error {
		if in, ok := st.indents[id]; ok {
			out = st.indentWithItems(in)
		}
		return nil
	})
	return out, err
}

// List más recientes primero.
func (r *IndentRepo) List(ctx context.Context, f repository.IndentFilter) ([]*entity.PurchaseIndent, int, error) {
	var list []*entity.PurchaseIndent
	err := r.c.do(ctx, func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
		for _, in := range st.indents {
			if f.Status != "" && in.Status != f.Status {
				continue
			}
			if f.Priority != "" && in.Priority != f.Priority {
				continue
			}
			if f.Department != "" && in.Department != f.Department {
				continue
			}
			if f.RequestedBy != "" && in.RequestedBy != f.RequestedBy {
				continue
			}
			if f.From != nil && in.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && in.CreatedAt.After(*f.To) {
				continue
			}
			if term != "" && !matchesAny(term, in.Number, in.Department, in.Title) {
				continue
			}
			list = append(list, st.indentWithItems(in))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Number > list[j].Number
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	from, to := paginate(len(list), f.Limit, f.Offset)
	return list[from:to], len(list), nil
}

func (r *IndentRepo) UpdateStatus(ctx context.Context, id string, ch entity.IndentStatusChange) error {
	return r.c.do(ctx, func(st *state) error {
		in, ok := st.indents[id]
		if !ok {
			return domain.ErrNotFound
		}
		if in.Status != ch.From {
			return domain.ErrConflict
		}
		in.Status = ch.To
		in.UpdatedAt = ch.At
		switch ch.To {
		case entity.IndentStatusApproved:
			in.ApprovedBy = ch.ApprovedBy
			in.ApprovedAt = ch.ApprovedAt
			in.RejectionReason = ""
		case entity.IndentStatusRejected:
			in.RejectionReason = ch.RejectionReason
			in.ApprovedBy = ""
			in.ApprovedAt = nil
		}
		return nil
	})
}

func (r *IndentRepo) DeleteItems(ctx context.Context, indentID string) error {
	return r.c.do(ctx, func(st *state) error {
		for id, it := range st.indentItems {
			if it.IndentID == indentID {
				delete(st.indentItems, id)
			}
		}
		return nil
	})
}

// Delete falla si quedan líneas: el orden hijos-antes-que-padre es responsabilidad del llamador,
// igual que con una clave foránea sin cascada.
func (r *IndentRepo) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, func(st *state) error {
		if _, ok := st.indents[id]; !ok {
			return domain.ErrNotFound
		}
		for _, it := range st.indentItems {
			if it.IndentID == id {
				return domain.ErrConflict
			}
		}
		delete(st.indents, id)
		return nil
	})
}
