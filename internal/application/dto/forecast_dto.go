package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/forecast"
)

// ForecastQuery parámetros opcionales del pronóstico; cero = valor por defecto.
type ForecastQuery struct {
	WindowDays   int     `query:"window_days"`
	LeadTimeDays int     `query:"lead_time_days"`
	ServiceLevel float64 `query:"service_level"`
}

func (q *ForecastQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.WindowDays, validation.Min(1), validation.Max(forecast.MaxWindowDays)),
		validation.Field(&q.LeadTimeDays, validation.Min(1), validation.Max(forecast.MaxLeadTimeDays)),
		validation.Field(&q.ServiceLevel, validation.Min(1.0), validation.Max(99.99)),
	)
}

// ChartPoint ventas agregadas de un día (solo visualización).
type ChartPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Sales int    `json:"sales"`
}

// ForecastResponse resultado del motor de pronóstico para un producto.
type ForecastResponse struct {
	ProductID      string       `json:"product_id"`
	ProductName    string       `json:"product_name"`
	CurrentStock   int          `json:"current_stock"`
	LeadTimeDays   int          `json:"lead_time_days"`
	WindowDays     int          `json:"window_days"`
	ServiceLevelZ  float64      `json:"service_level_z"`
	AvgDailySales  float64      `json:"avg_daily_sales"`
	StdDev         float64      `json:"std_dev"`
	LeadTimeDemand float64      `json:"lead_time_demand"`
	SafetyStock    int          `json:"safety_stock"`
	ReorderPoint   int          `json:"reorder_point"`
	Status         string       `json:"status"`
	ChartSeries    []ChartPoint `json:"chart_series"`
}

// SimulateRequest body para POST /api/forecast/simulate.
// ServiceLevelZ tiene prioridad; si es cero se usa ServiceLevel (%).
type SimulateRequest struct {
	AvgDailySales float64 `json:"avg_daily_sales"`
	StdDev        float64 `json:"std_dev"`
	LeadTimeDays  int     `json:"lead_time_days"`
	ServiceLevelZ float64 `json:"service_level_z"`
	ServiceLevel  float64 `json:"service_level"`
}

func (r *SimulateRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.AvgDailySales, validation.Min(0.0)),
		validation.Field(&r.StdDev, validation.Min(0.0)),
		validation.Field(&r.LeadTimeDays, validation.Required, validation.Min(1), validation.Max(forecast.MaxLeadTimeDays)),
		validation.Field(&r.ServiceLevelZ, validation.Min(0.0)),
		validation.Field(&r.ServiceLevel, validation.Min(0.0), validation.Max(99.99)),
	)
}

// SimulateResponse umbrales hipotéticos.
type SimulateResponse struct {
	SafetyStock    int     `json:"safety_stock"`
	ReorderPoint   int     `json:"reorder_point"`
	LeadTimeDemand float64 `json:"lead_time_demand"`
	ServiceLevelZ  float64 `json:"service_level_z"`
}

// RestockRequest body para POST /api/products/:id/restock; cero = valor actual del proveedor / nivel por defecto.
type RestockRequest struct {
	LeadTimeDays int     `json:"lead_time_days"`
	ServiceLevel float64 `json:"service_level"`
}

func (r *RestockRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.LeadTimeDays, validation.Min(1), validation.Max(forecast.MaxLeadTimeDays)),
		validation.Field(&r.ServiceLevel, validation.Min(1.0), validation.Max(99.99)),
	)
}

// RestockResponse orden generada por el simulador.
type RestockResponse struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	Quantity        int    `json:"quantity"`
	ReorderPoint    int    `json:"reorder_point"`
	CurrentStock    int    `json:"current_stock"`
}

// ReorderReportItem producto en WARNING o CRITICAL.
type ReorderReportItem struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	SafetyStock  int    `json:"safety_stock"`
	ReorderPoint int    `json:"reorder_point"`
	Deficit      int    `json:"deficit"` // ReorderPoint - CurrentStock
	SuggestedQty int    `json:"suggested_qty"`
	Status       string `json:"status"`
	Priority     int    `json:"priority"` // 1 = más urgente
}
