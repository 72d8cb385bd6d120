package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
)

// InventoryHandler salidas de stock, historial del ledger y reconciliación.
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	reconcile *inventory.ReconciliationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, reconcile *inventory.ReconciliationUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, reconcile: reconcile}
}

// StockOut godoc
// @Summary      Registrar salida de stock (venta)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del producto"
// @Param        body  body  dto.StockOutRequest  true  "Cantidad a descontar"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK incluye available"
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock-out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.movements.RecordStockOut(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial del ledger
// @Tags         inventory
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite (máx. 500)"  default(50)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	out, err := h.movements.History(c.UserContext(), c.Query("product_id"), c.QueryInt("limit", inventory.DefaultHistoryLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReconcileAll godoc
// @Summary      Reconciliar todo el catálogo
// @Description  Compara current_stock con la suma del ledger de cada producto.
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReport
// @Router       /api/reconciliation [get]
func (h *InventoryHandler) ReconcileAll(c *fiber.Ctx) error {
	out, err := h.reconcile.ReconcileAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar un producto
// @Tags         inventory
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/{productId} [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Reconcile(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
