package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo libro en memoria (orden de inserción).
type TransactionRepo struct {
	c *conn
}

func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	return r.c.do(ctx, func(st *state) error {
		for _, existing := range st.transactions {
			if existing.Number == tx.Number {
				return domain.ErrDuplicate
			}
			if tx.IdempotencyKey != "" && existing.IdempotencyKey == tx.IdempotencyKey {
				return domain.ErrAlreadyRecorded
			}
		}
		cp := *tx
		st.transactions[tx.ID] = &cp
		st.txOrder = append(st.txOrder, tx.ID)
		return nil
	})
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.c.do(ctx, func(st *state) error {
		if t, ok := st.transactions[id]; ok {
			cp := *t
			out = &cp
		}
		return nil
	})
	return out, err
}

// List devuelve las transacciones más recientes primero.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var list []*entity.Transaction
	err := r.c.do(ctx, func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
		for i := len(st.txOrder) - 1; i >= 0; i-- {
			t := st.transactions[st.txOrder[i]]
			if t == nil {
				continue
			}
			if f.Type != "" && t.Type != f.Type {
				continue
			}
			if f.ItemID != "" && t.ItemID != f.ItemID {
				continue
			}
			if f.ReferenceType != "" && t.ReferenceType != f.ReferenceType {
				continue
			}
			if f.From != nil && t.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && t.CreatedAt.After(*f.To) {
				continue
			}
			if term != "" && !matchesAny(term, t.Number, t.PartyName, t.InvoiceNumber, t.Notes) {
				continue
			}
			cp := *t
			list = append(list, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	from, to := paginate(len(list), f.Limit, f.Offset)
	return list[from:to], len(list), nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, func(st *state) error {
		if _, ok := st.transactions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.transactions, id)
		return nil
	})
}

func matchesAny(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
