// seed carga un proveedor y un producto de demostración con 90 días de ventas,
// usando los mismos casos de uso que la API para que el ledger quede conciliado.
//
// Uso: go run ./cmd/seed [-sku DEMO-001] [-days 90]
// Lee la conexión de las mismas variables que cmd/api (DATABASE_URL, DB_*).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reabastecimiento-api/pkg/config"
	"github.com/jhoicas/Reabastecimiento-api/pkg/logger"
)

// salesPattern se repite día a día: promedio 6, desviación ~1.63.
var salesPattern = []int{4, 6, 8}

// finalStock stock que queda al terminar la carga (por debajo del punto de reorden).
const finalStock = 50

// backdatedClock permite registrar movimientos en días pasados.
type backdatedClock struct{ now time.Time }

func (c *backdatedClock) Now() time.Time { return c.now }

func main() {
	sku := flag.String("sku", "DEMO-001", "SKU del producto de demostración")
	days := flag.Int("days", 90, "días de historial de ventas")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "El seed solo aplica a STORE_DRIVER=postgres")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar schema: %v\n", err)
		os.Exit(1)
	}

	txRunner := postgres.NewTxRunner(pool)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	clock := &backdatedClock{now: end.AddDate(0, 0, -(*days + 1))}

	suppliers := usecase.NewSupplierUseCase(txRunner, clock, log.Zerolog())
	products := usecase.NewProductUseCase(txRunner, clock, log.Zerolog())
	movements := inventory.NewMovementUseCase(txRunner, clock, inventory.NoopPublisher{}, log.Zerolog())

	supplier, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Proveedor Demo", LeadTimeDays: 14})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear proveedor: %v\n", err)
		os.Exit(1)
	}

	totalSales := 0
	for d := 0; d < *days; d++ {
		totalSales += salesPattern[d%len(salesPattern)]
	}
	product, err := products.Create(ctx, dto.CreateProductRequest{
		SKU:          *sku,
		Name:         "Producto Demo",
		Price:        decimal.RequireFromString("12500"),
		SupplierID:   supplier.ID,
		OpeningStock: totalSales + finalStock,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear producto: %v\n", err)
		os.Exit(1)
	}

	for d := *days; d >= 1; d-- {
		clock.now = end.AddDate(0, 0, -d).Add(12 * time.Hour)
		qty := salesPattern[(*days-d)%len(salesPattern)]
		if _, err := movements.RecordStockOut(ctx, product.ID, qty); err != nil {
			fmt.Fprintf(os.Stderr, "Registrar venta día -%d: %v\n", d, err)
			os.Exit(1)
		}
	}

	log.Info().
		Str("supplier_id", supplier.ID).
		Str("product_id", product.ID).
		Int("sales_days", *days).
		Int("units_sold", totalSales).
		Int("current_stock", finalStock).
		Msg("seed completado")
}
