// Package memory adaptador de persistencia en memoria. Modela el lado servidor del
// almacén compartido: cada operación es atómica respecto al estado y las transacciones
// trabajan sobre una copia que solo se publica si fn termina sin error.
// Se usa en tests y en ejecuciones locales sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/application/indent"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	_ ledger.TxRunner   = (*Store)(nil)
	_ gatepass.TxRunner = (*Store)(nil)
	_ indent.TxRunner   = (*Store)(nil)
)

type state struct {
	sequences     map[entity.SequenceKey]int64
	items         map[string]*entity.InventoryItem
	transactions  map[string]*entity.Transaction
	txOrder       []string
	gatePasses    map[string]*entity.GatePass // sin Items; las líneas viven en gatePassItems
	gatePassItems map[string]*entity.GatePassItem
	indents       map[string]*entity.PurchaseIndent
	indentItems   map[string]*entity.IndentItem
}

func newState() *state {
	return &state{
		sequences:     map[entity.SequenceKey]int64{},
		items:         map[string]*entity.InventoryItem{},
		transactions:  map[string]*entity.Transaction{},
		gatePasses:    map[string]*entity.GatePass{},
		gatePassItems: map[string]*entity.GatePassItem{},
		indents:       map[string]*entity.PurchaseIndent{},
		indentItems:   map[string]*entity.IndentItem{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.transactions {
		cp := *v
		c.transactions[k] = &cp
	}
	c.txOrder = append([]string(nil), s.txOrder...)
	for k, v := range s.gatePasses {
		cp := *v
		c.gatePasses[k] = &cp
	}
	for k, v := range s.gatePassItems {
		cp := *v
		c.gatePassItems[k] = &cp
	}
	for k, v := range s.indents {
		cp := *v
		c.indents[k] = &cp
	}
	for k, v := range s.indentItems {
		cp := *v
		c.indentItems[k] = &cp
	}
	return c
}

// Store base de datos en memoria segura para uso concurrente.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// conn vista sobre el estado: fuera de transacción bloquea por operación,
// dentro de transacción el bloqueo ya lo tiene runTx.
type conn struct {
	store *Store
	tx    *state
}

func (c *conn) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return domain.StorageError(err)
	}
	if c.tx != nil {
		return fn(c.tx)
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return fn(c.store.st)
}

func (s *Store) runTx(ctx context.Context, fn func(c *conn) error) error {
	if err := ctx.Err(); err != nil {
		return domain.StorageError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(&conn{store: s, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.StorageError(err)
	}
	s.st = work
	return nil
}

func (s *Store) pool() *conn { return &conn{store: s} }

// Repositorios fuera de transacción.

func (s *Store) Sequences() *SequenceStore { return &SequenceStore{c: s.pool()} }
func (s *Store) Items() *InventoryItemRepo { return &InventoryItemRepo{c: s.pool()} }
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{c: s.pool()} }
func (s *Store) GatePasses() *GatePassRepo { return &GatePassRepo{c: s.pool()} }
func (s *Store) Indents() *IndentRepo { return &IndentRepo{c: s.pool()} }

// RunLedger implementa ledger.TxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(items repository.InventoryItemRepository, txs repository.TransactionRepository) error) error {
	return s.runTx(ctx, func(c *conn) error {
		return fn(&InventoryItemRepo{c: c}, &TransactionRepo{c: c})
	})
}

// RunGatePass implementa gatepass.TxRunner.
func (s *Store) RunGatePass(ctx context.Context, fn func(passes repository.GatePassRepository) error) error {
	return s.runTx(ctx, func(c *conn) error {
		return fn(&GatePassRepo{c: c})
	})
}

// RunIndent implementa indent.TxRunner.
func (s *Store) RunIndent(ctx context.Context, fn func(indents repository.IndentRepository) error) error {
	return s.runTx(ctx, func(c *conn) error {
		return fn(&IndentRepo{c: c})
	})
}

func paginate(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
