package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Suppliers repository.SupplierRepository
	Orders    repository.PurchaseOrderRepository
	Ledger    repository.TransactionRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda ningún efecto visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
	// RunSnapshot abre una transacción de solo lectura con lectura repetible:
	// contador y ledger se observan en el mismo instante.
	RunSnapshot(ctx context.Context, fn func(r Repos) error) error
}

// Clock fuente de tiempo inyectable (tests y seed usan relojes fijos).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real en UTC.
type SystemClock struct{}

// Now devuelve la hora actual en UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// MovementEvent se publica después del commit de cada movimiento del ledger.
type MovementEvent struct {
	TransactionID string    `json:"transaction_id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	NewStock      int       `json:"new_stock"`
	Reference     string    `json:"reference,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher notifica movimientos ya confirmados. Es best-effort: un fallo no revierte nada.
type EventPublisher interface {
	Publish(ctx context.Context, evt MovementEvent) error
}

// NoopPublisher descarta los eventos (sin brokers configurados).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, MovementEvent) error { return nil }
