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

var _ repository.GatePassRepository = (*GatePassRepo)(nil)

// GatePassRepo pases en memoria.
type GatePassRepo struct {
	c *conn
}

func (r *GatePassRepo) Create(ctx context.Context, pass *entity.GatePass) error {
	if pass.ID == "" {
		pass.ID = uuid.New().String()
	}
	return r.c.do(ctx, func(st *state) error {
		for _, p := range st.gatePasses {
			if p.Number == pass.Number {
				return domain.ErrDuplicate
			}
		}
		header := *pass
		header.Items = nil
		st.gatePasses[pass.ID] = &header
		for i := range pass.Items {
			item := &pass.Items[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.GatePassID = pass.ID
			cp := *item
			st.gatePassItems[item.ID] = &cp
		}
		return nil
	})
}

func (st *state) gatePassWithItems(p *entity.GatePass) *entity.GatePass {
	out := *p
	out.Items = nil
	for _, it := range st.gatePassItems {
		if it.GatePassID == p.ID {
			out.Items = append(out.Items, *it)
		}
	}
	sort.Slice(out.Items, func(i, j int) bool {
		if out.Items[i].CreatedAt.Equal(out.Items[j].CreatedAt) {
			return out.Items[i].ID < out.Items[j].ID
		}
		return out.Items[i].CreatedAt.Before(out.Items[j].CreatedAt)
	})
	return &out
}

func (r *GatePassRepo) GetByID(ctx context.Context, id string) (*entity.GatePass, error) {
	var out *entity.GatePass
	err := r.c.do(ctx, func(st *state) error {
		if p, ok := st.gatePasses[id]; ok {
			out = st.gatePassWithItems(p)
		}
		return nil
	})
	return out, err
}

// GetByIDForUpdate equivale a GetByID: las transacciones en memoria ya son serializadas.
func (r *GatePassRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.GatePass, error) {
	return r.GetByID(ctx, id)
}

func (r *GatePassRepo) GetByNumber(ctx context.Context, number string) (*entity.GatePass, error) {
	var out *entity.GatePass
	err := r.c.do(ctx, func(st *state) error {
		for _, p := range st.gatePasses {
			if p.Number == number {
				out = st.gatePassWithItems(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *GatePassRepo) GetItem(ctx context.Context, itemID string) (*entity.GatePassItem, error) {
	var out *entity.GatePassItem
	err := r.c.do(ctx, func(st *state) error {
		if it, ok := st.gatePassItems[itemID]; ok {
			cp := *it
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *GatePassRepo) List(ctx context.Context, f repository.GatePassFilter) ([]*entity.GatePass, int, error) {
	var list []*entity.GatePass
	err := r.c.do(ctx, func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
		for _, p := range st.gatePasses {
			if f.Type != "" && p.Type != f.Type {
				continue
			}
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.From != nil && p.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && p.CreatedAt.After(*f.To) {
				continue
			}
			if term != "" && !matchesAny(term, p.Number, p.PartyName, p.Purpose, p.VehicleNumber) {
				continue
			}
			list = append(list, st.gatePassWithItems(p))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number > list[j].Number })
	from, to := paginate(len(list), f.Limit, f.Offset)
	return list[from:to], len(list), nil
}

func (r *GatePassRepo) UpdateStatus(ctx context.Context, id string, ch entity.GatePassStatusChange) error {
	return r.c.do(ctx, func(st *state) error {
		p, ok := st.gatePasses[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Status != ch.From {
			return domain.ErrConflict
		}
		p.Status = ch.To
		p.UpdatedAt = ch.At
		switch ch.To {
		case entity.GatePassStatusApproved:
			p.ApprovedBy = ch.ApprovedBy
			p.ApprovedAt = ch.ApprovedAt
			p.RejectionReason = ""
		case entity.GatePassStatusRejected:
			p.RejectionReason = ch.RejectionReason
		}
		return nil
	})
}

func (r *GatePassRepo) AddReturned(ctx context.Context, itemID string, qty int64) (*entity.GatePassItem, error) {
	var out *entity.GatePassItem
	err := r.c.do(ctx, func(st *state) error {
		it, ok := st.gatePassItems[itemID]
		if !ok {
			return domain.ErrNotFound
		}
		if it.ReturnedQuantity+qty > it.Quantity {
			return domain.ErrOverReturn
		}
		it.ReturnedQuantity += qty
		cp := *it
		out = &cp
		return nil
	})
	return out, err
}
