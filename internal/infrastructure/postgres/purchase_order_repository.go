package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, product_id, quantity, status, created_at, received_at`

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el repositorio. Pasar pool o tx.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		po.ID, po.ProductID, po.Quantity, po.Status, po.CreatedAt, po.ReceivedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("producto", po.ProductID)
		}
		if isCheckViolation(err) {
			return domain.InvalidQuantity(po.Quantity)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la orden: las recepciones concurrentes esperan aquí.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	po, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return po, nil
}

// MarkReceived transición condicional: solo afecta filas en SENT_TO_SUPPLIER.
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, id string, receivedAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, received_at = $3
		WHERE id = $1 AND status = $4`,
		id, entity.PurchaseOrderReceived, receivedAt, entity.PurchaseOrderSent)
	if err != nil {
		return false, fmt.Errorf("mark purchase order received: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.PurchaseOrder, 0)
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	return list, rows.Err()
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := row.Scan(&po.ID, &po.ProductID, &po.Quantity, &po.Status, &po.CreatedAt, &po.ReceivedAt); err != nil {
		return nil, err
	}
	po.CreatedAt = po.CreatedAt.UTC()
	if po.ReceivedAt != nil {
		at := po.ReceivedAt.UTC()
		po.ReceivedAt = &at
	}
	return &po, nil
}
