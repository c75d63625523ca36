package repository

import (
	"context"
	"time"

	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// TransactionFilter filtros del libro.
type TransactionFilter struct {
	Type          string
	ItemID        string
	ReferenceType string
	SearchTerm    string // número, contraparte, factura o notas
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// TransactionRepository puerto del libro append-only. No hay Update.
type TransactionRepository interface {
	// Create devuelve domain.ErrDuplicate si el número ya existe y domain.ErrAlreadyRecorded
	// si ya hay una transacción con la misma IdempotencyKey.
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int, error)
	// Delete override administrativo; no forma parte de ningún flujo.
	Delete(ctx context.Context, id string) error
}
