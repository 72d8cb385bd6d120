package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// StockOutRequest body para POST /api/products/:id/stock-out.
type StockOutRequest struct {
	Quantity int `json:"quantity"`
}

func (r *StockOutRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// MovementResponse resultado de un movimiento confirmado (salida o recepción).
type MovementResponse struct {
	ProductID     string `json:"product_id"`
	NewStock      int    `json:"new_stock"`
	LedgerEntryID string `json:"ledger_entry_id"`
}

// TransactionResponse entrada del ledger.
type TransactionResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionListResponse historial del ledger, del más reciente al más antiguo.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Limit int                   `json:"limit"`
}

// ReconciliationResponse compara el contador materializado con el replay del ledger.
type ReconciliationResponse struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	CurrentStock  int    `json:"current_stock"`
	Inbound       int    `json:"inbound"`
	Outbound      int    `json:"outbound"`
	LedgerBalance int    `json:"ledger_balance"`
	Consistent    bool   `json:"consistent"`
}

// ReconciliationReport resultado de reconciliar todo el catálogo.
type ReconciliationReport struct {
	Items        []ReconciliationResponse `json:"items"`
	Inconsistent int                      `json:"inconsistent"`
}
