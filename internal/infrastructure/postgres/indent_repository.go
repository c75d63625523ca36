package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var _ repository.IndentRepository = (*IndentRepo)(nil)

// IndentRepo solicitudes de compra y sus líneas sobre PostgreSQL.
type IndentRepo struct {
	q Querier
}

// NewIndentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIndentRepository(q Querier) *IndentRepo {
	return &IndentRepo{q: q}
}

const indentColumns = `id, number, title, department, priority, required_date, status, notes, requested_by,
	assigned_to, COALESCE(approved_by, ''), approved_at, rejection_reason, total_amount, created_at, updated_at`

const indentItemColumns = `id, indent_id, COALESCE(item_id, ''), item_name, description, quantity, unit,
	estimated_price, total_price, created_at`

func scanIndent(row pgxScanner) (*entity.PurchaseIndent, error) {
	var in entity.PurchaseIndent
	var approvedAt *time.Time
	err := row.Scan(
		&in.ID, &in.Number, &in.Title, &in.Department, &in.Priority, &in.RequiredDate, &in.Status, &in.Notes,
		&in.RequestedBy, &in.AssignedTo, &in.ApprovedBy, &approvedAt, &in.RejectionReason, &in.TotalAmount,
		&in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	in.ApprovedAt = approvedAt
	return &in, nil
}

func scanIndentItem(row pgxScanner) (*entity.IndentItem, error) {
	var it entity.IndentItem
	err := row.Scan(&it.ID, &it.IndentID, &it.ItemID, &it.ItemName, &it.Description, &it.Quantity, &it.Unit,
		&it.EstimatedPrice, &it.TotalPrice, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *IndentRepo) Create(ctx context.Context, in *entity.PurchaseIndent) error {
	query := `
		INSERT INTO purchase_indents (id, number, title, department, priority, required_date, status, notes,
			requested_by, assigned_to, approved_by, approved_at, rejection_reason, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		in.ID, in.Number, in.Title, in.Department, in.Priority, in.RequiredDate, in.Status, in.Notes,
		in.RequestedBy, in.AssignedTo, nullString(in.ApprovedBy), in.ApprovedAt, in.RejectionReason, in.TotalAmount,
		in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert indent", err)
	}
	for i := range in.Items {
		it := &in.Items[i]
		it.IndentID = in.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO indent_items (id, indent_id, item_id, item_name, description, quantity, unit,
				estimated_price, total_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, it.IndentID, nullString(it.ItemID), it.ItemName, it.Description, it.Quantity, it.Unit,
			it.EstimatedPrice, it.TotalPrice, it.CreatedAt,
		)
		if err != nil {
			return wrap("insert indent item", err)
		}
	}
	return nil
}

func (r *IndentRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseIndent, error) {
	in, err := scanIndent(r.q.QueryRow(ctx, `SELECT `+indentColumns+` FROM purchase_indents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get indent", err)
	}
	items, err := r.items(ctx, []string{in.ID})
	if err != nil {
		return nil, err
	}
	in.Items = items[in.ID]
	return in, nil
}

func (r *IndentRepo) items(ctx context.Context, ids []string) (map[string][]entity.IndentItem, error) {
	out := make(map[string][]entity.IndentItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+indentItemColumns+` FROM indent_items
		WHERE indent_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, wrap("list indent items", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanIndentItem(rows)
		if err != nil {
			return nil, wrap("scan indent item", err)
		}
		out[it.IndentID] = append(out[it.IndentID], *it)
	}
	return out, wrap("list indent items", rows.Err())
}

// List el filtro RequestedBy llega ya impuesto por el caso de uso según el rol.
func (r *IndentRepo) List(ctx context.Context, f repository.IndentFilter) ([]*entity.PurchaseIndent, int, error) {
	var w where
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Priority != "" {
		w.add("priority = ?", f.Priority)
	}
	if f.Department != "" {
		w.add("department = ?", f.Department)
	}
	if f.RequestedBy != "" {
		w.add("requested_by = ?", f.RequestedBy)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if f.SearchTerm != "" {
		w.add("(number ILIKE ? OR title ILIKE ? OR department ILIKE ?)", "%"+f.SearchTerm+"%")
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM purchase_indents`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, wrap("count indents", err)
	}
	page, args := limitClause(w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+indentColumns+` FROM purchase_indents`+w.String()+
		` ORDER BY created_at DESC, number DESC`+page, args...)
	if err != nil {
		return nil, 0, wrap("list indents", err)
	}
	var list []*entity.PurchaseIndent
	var ids []string
	for rows.Next() {
		in, err := scanIndent(rows)
		if err != nil {
			rows.Close()
			return nil, 0, wrap("scan indent", err)
		}
		list = append(list, in)
		ids = append(ids, in.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list indents", err)
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, in := range list {
		in.Items = items[in.ID]
	}
	return list, total, nil
}

func (r *IndentRepo) UpdateStatus(ctx context.Context, id string, ch entity.IndentStatusChange) error {
	var query string
	var args []any
	switch ch.To {
	case entity.IndentStatusApproved:
		query = `UPDATE purchase_indents SET status = $3, approved_by = $4, approved_at = $5, rejection_reason = '', updated_at = $6
			WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, nullString(ch.ApprovedBy), ch.ApprovedAt, ch.At}
	case entity.IndentStatusRejected:
		query = `UPDATE purchase_indents SET status = $3, rejection_reason = $4, approved_by = NULL, approved_at = NULL, updated_at = $5
			WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, ch.RejectionReason, ch.At}
	default:
		query = `UPDATE purchase_indents SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, ch.At}
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return wrap("update indent status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *IndentRepo) DeleteItems(ctx context.Context, indentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM indent_items WHERE indent_id = $1`, indentID); err != nil {
		return wrap("delete indent items", err)
	}
	return nil
}

func (r *IndentRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchase_indents WHERE id = $1`, id)
	if err != nil {
		return wrap("delete indent", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
