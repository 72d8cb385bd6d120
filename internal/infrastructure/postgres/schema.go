package postgres

import (
	"context"
	"fmt"
)

// Schema DDL idempotente del servicio.
const Schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	lead_time_days INTEGER NOT NULL CHECK (lead_time_days > 0),
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	sku           TEXT NOT NULL UNIQUE,
	price         NUMERIC(14, 2) NOT NULL DEFAULT 0,
	current_stock INTEGER NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
	supplier_id   UUID NOT NULL REFERENCES suppliers (id),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id          UUID PRIMARY KEY,
	product_id  UUID NOT NULL REFERENCES products (id),
	quantity    INTEGER NOT NULL CHECK (quantity > 0),
	status      TEXT NOT NULL CHECK (status IN ('SENT_TO_SUPPLIER', 'RECEIVED')),
	created_at  TIMESTAMPTZ NOT NULL,
	received_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_purchase_orders_created_at ON purchase_orders (created_at DESC);

CREATE TABLE IF NOT EXISTS transactions (
	id         UUID PRIMARY KEY,
	product_id UUID NOT NULL REFERENCES products (id),
	type       TEXT NOT NULL CHECK (type IN ('INBOUND', 'OUTBOUND')),
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	reference  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_product_type_created
	ON transactions (product_id, type, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at DESC);

-- una orden de compra acredita stock una sola vez
CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_inbound_reference
	ON transactions (reference) WHERE type = 'INBOUND' AND reference <> '';
`

// Migrate aplica Schema. Se puede ejecutar en cada arranque.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
