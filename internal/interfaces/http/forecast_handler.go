package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
)

// ForecastHandler pronóstico, simulador y reporte de reorden.
type ForecastHandler struct {
	uc *inventory.ForecastUseCase
}

// NewForecastHandler construye el handler.
func NewForecastHandler(uc *inventory.ForecastUseCase) *ForecastHandler {
	return &ForecastHandler{uc: uc}
}

// Forecast godoc
// @Summary      Pronóstico de demanda de un producto
// @Tags         forecast
// @Produce      json
// @Param        id              path   string  true   "ID del producto"
// @Param        window_days     query  int     false  "Ventana en días"  default(90)
// @Param        lead_time_days  query  int     false  "Lead time; por defecto el del proveedor"
// @Param        service_level   query  number  false  "Nivel de servicio en %"  default(95)
// @Success      200  {object}  dto.ForecastResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/forecast [get]
func (h *ForecastHandler) Forecast(c *fiber.Ctx) error {
	var q dto.ForecastQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, domain.InvalidInput("parámetros de consulta inválidos"))
	}
	if err := validate(&q); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Compute(c.UserContext(), c.Params("id"), inventory.ForecastParams{
		WindowDays:   q.WindowDays,
		LeadTimeDays: q.LeadTimeDays,
		ServiceLevel: q.ServiceLevel,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Simulate godoc
// @Summary      Simulador what-if
// @Description  Calcula safety stock y punto de reorden hipotéticos sin persistir nada.
// @Tags         forecast
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SimulateRequest  true  "Demanda, desviación, lead time y nivel de servicio"
// @Success      200   {object}  dto.SimulateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/forecast/simulate [post]
func (h *ForecastHandler) Simulate(c *fiber.Ctx) error {
	var in dto.SimulateRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Simulate(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Confirmar reabastecimiento
// @Description  Crea una orden de compra por reorder_point*2 - current_stock.
// @Tags         forecast
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del producto"
// @Param        body  body  dto.RestockRequest  false  "Parámetros hipotéticos"
// @Success      201   {object}  dto.RestockResponse
// @Failure      400   {object}  dto.ErrorResponse  "INVALID_QUANTITY si no hace falta pedir"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/restock [post]
func (h *ForecastHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	out, err := h.uc.ConfirmRestock(c.UserContext(), c.Params("id"), in.LeadTimeDays, in.ServiceLevel)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReorderReport godoc
// @Summary      Reporte de reorden
// @Description  Productos en WARNING o CRITICAL, CRITICAL primero y luego por mayor déficit.
// @Tags         forecast
// @Produce      json
// @Success      200  {array}   dto.ReorderReportItem
// @Router       /api/reorder-report [get]
func (h *ForecastHandler) ReorderReport(c *fiber.Ctx) error {
	list, err := h.uc.ReorderReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
