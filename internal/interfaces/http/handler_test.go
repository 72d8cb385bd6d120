package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Reabastecimiento-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// buildTestApp arma la API completa sobre el almacén en memoria.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	clock := fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	log := zerolog.Nop()

	app := fiber.New(fiber.Config{Immutable: true})
	apphttp.Router(app, apphttp.RouterDeps{
		SupplierUC:       usecase.NewSupplierUseCase(store, clock, log),
		ProductUC:        usecase.NewProductUseCase(store, clock, log),
		MovementUC:       inventory.NewMovementUseCase(store, clock, inventory.NoopPublisher{}, log),
		PurchaseOrderUC:  inventory.NewPurchaseOrderUseCase(store, clock, inventory.NoopPublisher{}, pdf.NewMarotoPDFGenerator("Test"), log),
		ForecastUC:       inventory.NewForecastUseCase(store, clock, inventory.ForecastSettings{}, log),
		ReconciliationUC: inventory.NewReconciliationUseCase(store, log),
	})
	return app, store
}

// doJSON lanza la petición y devuelve la respuesta con el cuerpo ya leído.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// seedProduct crea proveedor (lead time 14) y producto con stock inicial.
func seedProduct(t *testing.T, app *fiber.App, stock int) dto.ProductResponse {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/suppliers", map[string]any{"name": "Acme", "lead_time_days": 14})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	supplier := decode[dto.SupplierResponse](t, raw)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": "WID-001", "name": "Widget", "price": "12.50",
		"supplier_id": supplier.ID, "opening_stock": stock,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.ProductResponse](t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestStockOut_DecrementsAndRejectsOversell(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 40)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 30})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	mv := decode[dto.MovementResponse](t, raw)
	assert.Equal(t, 10, mv.NewStock)
	assert.NotEmpty(t, mv.LedgerEntryID)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 30})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, "CONFLICT", errBody.Kind)
	require.NotNil(t, errBody.Available)
	assert.Equal(t, 10, *errBody.Available)
}

func TestStockOut_ZeroQuantityIsInvalidQuantity(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 5)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "INVALID_QUANTITY", errBody.Code)
	assert.Equal(t, "VALIDATION", errBody.Kind)
	assert.Nil(t, errBody.Available)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decode[dto.ProductResponse](t, raw).CurrentStock)
}

func TestStockOut_StorageFailureIs503(t *testing.T) {
	app, store := buildTestApp(t)
	p := seedProduct(t, app, 5)
	store.FailOn(memory.OpLedgerAppend, errors.New("disco lleno"))

	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 1})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "STORAGE", decode[dto.ErrorResponse](t, raw).Kind)

	store.ClearFaults()
	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decode[dto.ProductResponse](t, raw).CurrentStock)
}

func TestGetProduct_NotFound(t *testing.T) {
	app, _ := buildTestApp(t)
	resp, raw := doJSON(t, app, http.MethodGet, "/api/products/no-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 0)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": p.SKU, "name": "Otro", "price": "1", "supplier_id": p.SupplierID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, raw).Code)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	app, _ := buildTestApp(t)
	resp, raw := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Sin SKU"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "INVALID_INPUT", errBody.Code)
	assert.Contains(t, errBody.Message, "sku")
}

func TestPurchaseOrder_ReceiveTwiceCreditsOnce(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 10)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/purchase-orders", map[string]any{"product_id": p.ID, "quantity": 25})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	po := decode[dto.PurchaseOrderResponse](t, raw)
	assert.Equal(t, "SENT_TO_SUPPLIER", po.Status)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, 35, decode[dto.ReceivePurchaseOrderResponse](t, raw).NewStock)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_RECEIVED", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 35, decode[dto.ProductResponse](t, raw).CurrentStock)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/purchase-orders?status=RECEIVED", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.PurchaseOrderListResponse](t, raw).Items, 1)
}

func TestPurchaseOrder_PDF(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 10)
	_, raw := doJSON(t, app, http.MethodPost, "/api/purchase-orders", map[string]any{"product_id": p.ID, "quantity": 5})
	po := decode[dto.PurchaseOrderResponse](t, raw)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/purchase-orders/"+po.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "orden-compra-")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestSimulate(t *testing.T) {
	app, _ := buildTestApp(t)
	resp, raw := doJSON(t, app, http.MethodPost, "/api/forecast/simulate", map[string]any{
		"avg_daily_sales": 6.5, "std_dev": 2.1, "lead_time_days": 14, "service_level_z": 1.65,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	out := decode[dto.SimulateResponse](t, raw)
	assert.Equal(t, 13, out.SafetyStock)
	assert.Equal(t, 104, out.ReorderPoint)
	assert.InDelta(t, 91.0, out.LeadTimeDemand, 1e-9)
}

func TestForecast_InvalidQuery(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 10)
	resp, raw := doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/forecast?window_days=-3", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Kind)
}

func TestForecast_NoHistoryIsSafe(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 10)
	resp, raw := doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/forecast", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	out := decode[dto.ForecastResponse](t, raw)
	assert.Equal(t, 0, out.ReorderPoint)
	assert.Equal(t, "SAFE", out.Status)
	assert.Equal(t, 14, out.LeadTimeDays)
	assert.Equal(t, 90, out.WindowDays)
}

func TestHistoryAndReconciliation(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 20)
	doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 3})

	resp, raw := doJSON(t, app, http.MethodGet, "/api/transactions?product_id="+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	hist := decode[dto.TransactionListResponse](t, raw)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, "OUTBOUND", hist.Items[0].Type)
	assert.Equal(t, "INBOUND", hist.Items[1].Type)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/reconciliation/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rec := decode[dto.ReconciliationResponse](t, raw)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 17, rec.LedgerBalance)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[dto.ReconciliationReport](t, raw).Inconsistent)
}

func TestStockOut_LedgerSurvivesLaterRequests(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 20)
	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/stock-out", map[string]any{"quantity": 3})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	// Otra petición cualquiera reutiliza los buffers de fasthttp.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/suppliers?limit=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	report := decode[dto.ReconciliationReport](t, raw)
	assert.Equal(t, 0, report.Inconsistent)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 17, report.Items[0].CurrentStock)
	assert.Equal(t, 3, report.Items[0].Outbound)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/transactions?product_id="+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	hist := decode[dto.TransactionListResponse](t, raw)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, p.ID, hist.Items[0].ProductID)
	assert.Equal(t, "OUTBOUND", hist.Items[0].Type)
}

func TestDeleteSupplier(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 0)

	resp, raw := doJSON(t, app, http.MethodDelete, "/api/suppliers/"+p.SupplierID, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "SUPPLIER_IN_USE", errBody.Code)
	assert.Equal(t, "CONFLICT", errBody.Kind)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/suppliers", map[string]any{"name": "Libre", "lead_time_days": 3})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	free := decode[dto.SupplierResponse](t, raw)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/suppliers/"+free.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/suppliers/"+free.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRestock_NothingToOrderIsInvalidQuantity(t *testing.T) {
	app, _ := buildTestApp(t)
	p := seedProduct(t, app, 10)
	// Sin ventas: ROP 0, cantidad 0*2-10 < 0.
	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/restock", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decode[dto.ErrorResponse](t, raw).Code)
}
