package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testClock reloj manipulable desde el test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingPublisher guarda los eventos publicados; si err != nil falla siempre.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.MovementEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt inventory.MovementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Events() []inventory.MovementEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]inventory.MovementEvent(nil), p.events...)
}

type stubPDF struct{}

func (stubPDF) GeneratePurchaseOrderPDF(_ context.Context, doc inventory.PurchaseOrderDocument) ([]byte, error) {
	if doc.Order == nil {
		return nil, errors.New("sin orden")
	}
	return []byte("%PDF-" + doc.Order.ID), nil
}

type fixture struct {
	store     *memory.Store
	clock     *testClock
	publisher *recordingPublisher

	suppliers *usecase.SupplierUseCase
	products  *usecase.ProductUseCase
	movements *inventory.MovementUseCase
	orders    *inventory.PurchaseOrderUseCase
	forecasts *inventory.ForecastUseCase
	reconcile *inventory.ReconciliationUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: baseTime}
	pub := &recordingPublisher{}
	log := zerolog.Nop()
	return &fixture{
		store:     store,
		clock:     clock,
		publisher: pub,
		suppliers: usecase.NewSupplierUseCase(store, clock, log),
		products:  usecase.NewProductUseCase(store, clock, log),
		movements: inventory.NewMovementUseCase(store, clock, pub, log),
		orders:    inventory.NewPurchaseOrderUseCase(store, clock, pub, stubPDF{}, log),
		forecasts: inventory.NewForecastUseCase(store, clock, inventory.ForecastSettings{}, log),
		reconcile: inventory.NewReconciliationUseCase(store, log),
	}
}

// supplier crea un proveedor con el lead time indicado.
func (f *fixture) supplier(t *testing.T, leadTimeDays int) string {
	t.Helper()
	s, err := f.suppliers.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: leadTimeDays})
	require.NoError(t, err)
	return s.ID
}

// product crea un producto con stock inicial (registrado como entrada en el ledger).
func (f *fixture) product(t *testing.T, supplierID, sku string, stock int) string {
	t.Helper()
	p, err := f.products.Create(context.Background(), dto.CreateProductRequest{
		SKU: sku, Name: "Producto " + sku, Price: decimal.NewFromInt(100),
		SupplierID: supplierID, OpeningStock: stock,
	})
	require.NoError(t, err)
	return p.ID
}

// sellDaily registra una salida por día, en los días base-days .. base-1, repitiendo pattern.
// Deja el reloj en baseTime.
func (f *fixture) sellDaily(t *testing.T, productID string, days int, pattern []int) {
	t.Helper()
	for d := days; d >= 1; d-- {
		f.clock.Set(baseTime.Add(-time.Duration(d) * 24 * time.Hour))
		_, err := f.movements.RecordStockOut(context.Background(), productID, pattern[(days-d)%len(pattern)])
		require.NoError(t, err)
	}
	f.clock.Set(baseTime)
}

// stock lee el contador materializado.
func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.CurrentStock
}

// ledger devuelve las entradas del producto, de la más reciente a la más antigua.
func (f *fixture) ledger(t *testing.T, productID string) []dto.TransactionResponse {
	t.Helper()
	h, err := f.movements.History(context.Background(), productID, 500)
	require.NoError(t, err)
	return h.Items
}

// order lee una orden directamente del almacén.
func (f *fixture) order(t *testing.T, poID string) *entity.PurchaseOrder {
	t.Helper()
	var po *entity.PurchaseOrder
	err := f.store.RunSnapshot(context.Background(), func(r inventory.Repos) error {
		var err error
		po, err = r.Orders.GetByID(context.Background(), poID)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, po)
	return po
}
