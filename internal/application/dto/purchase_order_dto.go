package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r *CreatePurchaseOrderRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Quantity   int        `json:"quantity"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

// PurchaseOrderListResponse lista paginada, de la más reciente a la más antigua.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReceivePurchaseOrderResponse resultado de recibir una orden.
type ReceivePurchaseOrderResponse struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	ProductID       string `json:"product_id"`
	NewStock        int    `json:"new_stock"`
	LedgerEntryID   string `json:"ledger_entry_id"`
}
