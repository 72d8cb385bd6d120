package entity

import "time"

// Tipos de movimiento del ledger.
const (
	TransactionInbound  = "INBOUND"  // entrada
	TransactionOutbound = "OUTBOUND" // salida
)

// Transaction es una entrada inmutable del ledger de stock.
// Quantity siempre es positiva; la dirección la da Type.
type Transaction struct {
	ID        string
	ProductID string
	Type      string
	Quantity  int
	Reference string // ID de la orden de compra en recepciones
	CreatedAt time.Time
}

// Signed devuelve la cantidad con signo según la dirección del movimiento.
func (t *Transaction) Signed() int {
	if t.Type == TransactionOutbound {
		return -t.Quantity
	}
	return t.Quantity
}

// IsValidTransactionType valida la dirección del movimiento.
func IsValidTransactionType(t string) bool {
	return t == TransactionInbound || t == TransactionOutbound
}
