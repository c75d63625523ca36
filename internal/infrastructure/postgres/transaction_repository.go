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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo libro de transacciones (append-only) sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, number, type, COALESCE(item_id, ''), quantity, unit_price, total_amount, reference_type,
	reference_id, from_location, to_location, party_name, invoice_number, notes, display_name,
	is_repairing, is_other, expected_return_date, COALESCE(idempotency_key, ''), created_by, created_at`

func scanTransaction(row pgxScanner) (*entity.Transaction, error) {
	var t entity.Transaction
	var expected *time.Time
	err := row.Scan(
		&t.ID, &t.Number, &t.Type, &t.ItemID, &t.Quantity, &t.UnitPrice, &t.TotalAmount, &t.ReferenceType,
		&t.ReferenceID, &t.FromLocation, &t.ToLocation, &t.PartyName, &t.InvoiceNumber, &t.Notes, &t.DisplayName,
		&t.Flags.IsRepairing, &t.Flags.IsOther, &expected, &t.IdempotencyKey, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ExpectedReturnDate = expected
	return &t, nil
}

// Create agrega la transacción. El número y la clave de idempotencia son únicos.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO inventory_transactions (id, number, type, item_id, quantity, unit_price, total_amount,
			reference_type, reference_id, from_location, to_location, party_name, invoice_number, notes,
			display_name, is_repairing, is_other, expected_return_date, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Number, t.Type, nullString(t.ItemID), t.Quantity, t.UnitPrice, t.TotalAmount,
		t.ReferenceType, t.ReferenceID, t.FromLocation, t.ToLocation, t.PartyName, t.InvoiceNumber, t.Notes,
		t.DisplayName, t.Flags.IsRepairing, t.Flags.IsOther, t.ExpectedReturnDate, nullString(t.IdempotencyKey),
		t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "inventory_transactions_idempotency_key_key" {
				return domain.ErrAlreadyRecorded
			}
			return domain.ErrDuplicate
		}
		return wrap("insert transaction", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM inventory_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get transaction", err)
	}
	return t, nil
}

// List más recientes primero, con el total de filas que cumplen el filtro.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var w where
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.ItemID != "" {
		w.add("item_id = ?", f.ItemID)
	}
	if f.ReferenceType != "" {
		w.add("reference_type = ?", f.ReferenceType)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if f.SearchTerm != "" {
		w.add("(number ILIKE ? OR party_name ILIKE ? OR invoice_number ILIKE ? OR notes ILIKE ?)", "%"+f.SearchTerm+"%")
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_transactions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, wrap("count transactions", err)
	}
	page, args := limitClause(w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+transactionColumns+` FROM inventory_transactions`+w.String()+
		` ORDER BY created_at DESC, number DESC`+page, args...)
	if err != nil {
		return nil, 0, wrap("list transactions", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, wrap("scan transaction", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list transactions", err)
	}
	return list, total, nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_transactions WHERE id = $1`, id)
	if err != nil {
		return wrap("delete transaction", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
