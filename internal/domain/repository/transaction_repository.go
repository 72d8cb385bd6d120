package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// LedgerTotals sumas del ledger para un producto.
type LedgerTotals struct {
	Inbound  int
	Outbound int
}

// Balance es el stock reconstruido por replay del ledger.
func (t LedgerTotals) Balance() int {
	return t.Inbound - t.Outbound
}

// TransactionRepository es el ledger append-only: no existe Update ni Delete.
type TransactionRepository interface {
	Append(ctx context.Context, txn *entity.Transaction) error
	// ListOutboundInWindow devuelve las salidas con created_at en [from, to), ascendente.
	ListOutboundInWindow(ctx context.Context, productID string, from, to time.Time) ([]*entity.Transaction, error)
	// ListRecent devuelve los últimos movimientos, del más reciente al más antiguo; productID vacío = todos.
	ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Transaction, error)
	Totals(ctx context.Context, productID string) (LedgerTotals, error)
}
