package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SupplierUC       *usecase.SupplierUseCase
	ProductUC        *usecase.ProductUseCase
	MovementUC       *inventory.MovementUseCase
	PurchaseOrderUC  *inventory.PurchaseOrderUseCase
	ForecastUC       *inventory.ForecastUseCase
	ReconciliationUC *inventory.ReconciliationUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Suppliers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.ReconciliationUC)
	forecastHandler := NewForecastHandler(deps.ForecastUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/stock-out", inventoryHandler.StockOut)
	products.Get("/:id/forecast", forecastHandler.Forecast)
	products.Post("/:id/restock", forecastHandler.Restock)

	// Purchase orders
	orders := api.Group("/purchase-orders")
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/receive", orderHandler.Receive)
	orders.Get("/:id/pdf", orderHandler.PDF)

	// Forecast & reportes
	api.Post("/forecast/simulate", forecastHandler.Simulate)
	api.Get("/reorder-report", forecastHandler.ReorderReport)

	// Ledger
	api.Get("/transactions", inventoryHandler.History)
	api.Get("/reconciliation", inventoryHandler.ReconcileAll)
	api.Get("/reconciliation/:productId", inventoryHandler.Reconcile)
}
