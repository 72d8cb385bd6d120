package entity

import "time"

// Estados de la orden de compra. RECEIVED es terminal.
const (
	PurchaseOrderSent     = "SENT_TO_SUPPLIER"
	PurchaseOrderReceived = "RECEIVED"
)

// PurchaseOrder orden de reabastecimiento enviada a un proveedor.
type PurchaseOrder struct {
	ID         string
	ProductID  string
	Quantity   int
	Status     string
	CreatedAt  time.Time
	ReceivedAt *time.Time
}

// IsReceived indica si la orden ya pasó a su estado terminal.
func (po *PurchaseOrder) IsReceived() bool {
	return po.Status == PurchaseOrderReceived
}
