package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario abastecido por un proveedor.
// CurrentStock es el contador materializado; solo cambia junto con una fila del ledger (Transaction).
type Product struct {
	ID           string
	Name         string
	SKU          string // único
	Price        decimal.Decimal
	CurrentStock int
	SupplierID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
