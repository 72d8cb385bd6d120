package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// MarkReceived hace la transición SENT_TO_SUPPLIER -> RECEIVED de forma condicional.
	// Devuelve false si la orden ya no estaba en SENT_TO_SUPPLIER.
	MarkReceived(ctx context.Context, id string, receivedAt time.Time) (bool, error)
	// List ordena de la más reciente a la más antigua; status vacío = todas.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
