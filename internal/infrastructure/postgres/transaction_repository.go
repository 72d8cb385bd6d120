package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, product_id, type, quantity, reference, created_at`

// TransactionRepo ledger append-only sobre la tabla transactions.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el repositorio. Pasar pool o tx.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Append inserta una fila del ledger. El índice único parcial sobre reference impide acreditar dos veces una orden.
func (r *TransactionRepo) Append(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.ProductID, t.Type, t.Quantity, t.Reference, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.AlreadyReceived(t.Reference)
		}
		if isCheckViolation(err) {
			return domain.InvalidQuantity(t.Quantity)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListOutboundInWindow salidas del producto con created_at en [from, to), ascendente.
func (r *TransactionRepo) ListOutboundInWindow(ctx context.Context, productID string, from, to time.Time) ([]*entity.Transaction, error) {
	if !validID(productID) {
		return []*entity.Transaction{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE product_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4
		ORDER BY created_at ASC, id ASC`,
		productID, entity.TransactionOutbound, from, to)
	if err != nil {
		return nil, fmt.Errorf("list outbound transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListRecent últimos movimientos, del más reciente al más antiguo.
func (r *TransactionRepo) ListRecent(ctx context.Context, productID string, limit int) ([]*entity.Transaction, error) {
	if productID != "" && !validID(productID) {
		return []*entity.Transaction{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE ($1 = '' OR product_id::text = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// Totals suma entradas y salidas del producto (replay del ledger).
func (r *TransactionRepo) Totals(ctx context.Context, productID string) (repository.LedgerTotals, error) {
	var totals repository.LedgerTotals
	if !validID(productID) {
		return totals, nil
	}
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'INBOUND'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'OUTBOUND'), 0)
		FROM transactions WHERE product_id = $1`, productID).Scan(&totals.Inbound, &totals.Outbound)
	if err != nil {
		return totals, fmt.Errorf("ledger totals: %w", err)
	}
	return totals, nil
}

func collectTransactions(rows pgx.Rows) ([]*entity.Transaction, error) {
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		list = append(list, &t)
	}
	return list, rows.Err()
}
