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

var _ repository.GatePassRepository = (*GatePassRepo)(nil)

// GatePassRepo pases y líneas sobre PostgreSQL.
type GatePassRepo struct {
	q Querier
}

// NewGatePassRepository construye el adaptador. Pasar pool o tx (Querier); Create necesita tx
// para que cabecera y líneas sean atómicas.
func NewGatePassRepository(q Querier) *GatePassRepo {
	return &GatePassRepo{q: q}
}

const gatePassColumns = `id, number, type, party_name, party_contact, vehicle_number, driver_name, driver_contact,
	purpose, valid_from, valid_to, expected_return_date, status, notes, created_by, COALESCE(approved_by, ''),
	approved_at, rejection_reason, created_at, updated_at`

const gatePassItemColumns = `id, gate_pass_id, COALESCE(item_id, ''), item_name, description, quantity, unit,
	returned_quantity, created_at`

func scanGatePass(row pgxScanner) (*entity.GatePass, error) {
	var p entity.GatePass
	var expected, approvedAt *time.Time
	err := row.Scan(
		&p.ID, &p.Number, &p.Type, &p.PartyName, &p.PartyContact, &p.VehicleNumber, &p.DriverName, &p.DriverContact,
		&p.Purpose, &p.ValidFrom, &p.ValidTo, &expected, &p.Status, &p.Notes, &p.CreatedBy, &p.ApprovedBy,
		&approvedAt, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ExpectedReturnDate, p.ApprovedAt = expected, approvedAt
	return &p, nil
}

func scanGatePassItem(row pgxScanner) (*entity.GatePassItem, error) {
	var it entity.GatePassItem
	err := row.Scan(&it.ID, &it.GatePassID, &it.ItemID, &it.ItemName, &it.Description, &it.Quantity, &it.Unit,
		&it.ReturnedQuantity, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *GatePassRepo) Create(ctx context.Context, p *entity.GatePass) error {
	query := `
		INSERT INTO gate_passes (id, number, type, party_name, party_contact, vehicle_number, driver_name,
			driver_contact, purpose, valid_from, valid_to, expected_return_date, status, notes, created_by,
			approved_by, approved_at, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Number, p.Type, p.PartyName, p.PartyContact, p.VehicleNumber, p.DriverName,
		p.DriverContact, p.Purpose, p.ValidFrom, p.ValidTo, p.ExpectedReturnDate, p.Status, p.Notes, p.CreatedBy,
		nullString(p.ApprovedBy), p.ApprovedAt, p.RejectionReason, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert gate pass", err)
	}
	for i := range p.Items {
		it := &p.Items[i]
		it.GatePassID = p.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO gate_pass_items (id, gate_pass_id, item_id, item_name, description, quantity, unit,
				returned_quantity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.GatePassID, nullString(it.ItemID), it.ItemName, it.Description, it.Quantity, it.Unit,
			it.ReturnedQuantity, it.CreatedAt,
		)
		if err != nil {
			return wrap("insert gate pass item", err)
		}
	}
	return nil
}

func (r *GatePassRepo) GetByID(ctx context.Context, id string) (*entity.GatePass, error) {
	return r.getOne(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE id = $1`, id)
}

// GetByIDForUpdate SELECT ... FOR UPDATE sobre la cabecera; las líneas se leen después,
// ya con el bloqueo, y reflejan lo confirmado por la transacción anterior.
func (r *GatePassRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.GatePass, error) {
	return r.getOne(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE id = $1 FOR UPDATE`, id)
}

func (r *GatePassRepo) GetByNumber(ctx context.Context, number string) (*entity.GatePass, error) {
	return r.getOne(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE number = $1`, number)
}

func (r *GatePassRepo) getOne(ctx context.Context, query string, arg string) (*entity.GatePass, error) {
	p, err := scanGatePass(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get gate pass", err)
	}
	items, err := r.items(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Items = items[p.ID]
	return p, nil
}

// items carga las líneas de varios pases en una consulta.
func (r *GatePassRepo) items(ctx context.Context, passIDs []string) (map[string][]entity.GatePassItem, error) {
	out := make(map[string][]entity.GatePassItem, len(passIDs))
	if len(passIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+gatePassItemColumns+` FROM gate_pass_items
		WHERE gate_pass_id = ANY($1) ORDER BY created_at, id`, passIDs)
	if err != nil {
		return nil, wrap("list gate pass items", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanGatePassItem(rows)
		if err != nil {
			return nil, wrap("scan gate pass item", err)
		}
		out[it.GatePassID] = append(out[it.GatePassID], *it)
	}
	return out, wrap("list gate pass items", rows.Err())
}

func (r *GatePassRepo) GetItem(ctx context.Context, itemID string) (*entity.GatePassItem, error) {
	it, err := scanGatePassItem(r.q.QueryRow(ctx, `SELECT `+gatePassItemColumns+` FROM gate_pass_items WHERE id = $1`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get gate pass item", err)
	}
	return it, nil
}

func (r *GatePassRepo) List(ctx context.Context, f repository.GatePassFilter) ([]*entity.GatePass, int, error) {
	var w where
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if f.SearchTerm != "" {
		w.add("(number ILIKE ? OR party_name ILIKE ? OR purpose ILIKE ? OR vehicle_number ILIKE ?)", "%"+f.SearchTerm+"%")
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM gate_passes`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, wrap("count gate passes", err)
	}
	page, args := limitClause(w.args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+gatePassColumns+` FROM gate_passes`+w.String()+` ORDER BY number DESC`+page, args...)
	if err != nil {
		return nil, 0, wrap("list gate passes", err)
	}
	var list []*entity.GatePass
	var ids []string
	for rows.Next() {
		p, err := scanGatePass(rows)
		if err != nil {
			rows.Close()
			return nil, 0, wrap("scan gate pass", err)
		}
		list = append(list, p)
		ids = append(ids, p.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list gate passes", err)
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range list {
		p.Items = items[p.ID]
	}
	return list, total, nil
}

// UpdateStatus UPDATE ... WHERE status = change.From: dos aprobadores concurrentes no pueden
// aplicar ambos su decisión.
func (r *GatePassRepo) UpdateStatus(ctx context.Context, id string, ch entity.GatePassStatusChange) error {
	var query string
	var args []any
	switch ch.To {
	case entity.GatePassStatusApproved:
		query = `UPDATE gate_passes SET status = $3, approved_by = $4, approved_at = $5, rejection_reason = '', updated_at = $6
			WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, nullString(ch.ApprovedBy), ch.ApprovedAt, ch.At}
	case entity.GatePassStatusRejected:
		query = `UPDATE gate_passes SET status = $3, rejection_reason = $4, updated_at = $5
			WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, ch.RejectionReason, ch.At}
	default:
		query = `UPDATE gate_passes SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
		args = []any{id, ch.From, ch.To, ch.At}
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return wrap("update gate pass status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// AddReturned incremento condicional en el servidor; no lee-y-escribe desde el cliente.
func (r *GatePassRepo) AddReturned(ctx context.Context, itemID string, qty int64) (*entity.GatePassItem, error) {
	it, err := scanGatePassItem(r.q.QueryRow(ctx, `
		UPDATE gate_pass_items SET returned_quantity = returned_quantity + $2
		WHERE id = $1 AND returned_quantity + $2 <= quantity
		RETURNING `+gatePassItemColumns, itemID, qty))
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isCheckViolation(err) {
			return nil, domain.ErrOverReturn
		}
		return nil, wrap("add returned quantity", err)
	}
	existing, err := r.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrOverReturn
}
