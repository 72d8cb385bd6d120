package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/forecast"
)

// catalogPageSize tamaño de página al recorrer todo el catálogo.
const catalogPageSize = 100

// ForecastSettings valores por defecto del motor (configurables).
type ForecastSettings struct {
	WindowDays   int
	ServiceLevel float64 // porcentaje, ej. 95
}

// ForecastParams parámetros de una consulta; cero = valor por defecto.
type ForecastParams struct {
	WindowDays   int
	LeadTimeDays int     // 0 = lead time del proveedor
	ServiceLevel float64 // 0 = ForecastSettings.ServiceLevel
}

// ForecastUseCase pronóstico de demanda y política de reorden.
type ForecastUseCase struct {
	txRunner TxRunner
	clock    Clock
	settings ForecastSettings
	log      zerolog.Logger
}

// NewForecastUseCase construye el caso de uso. Settings en cero toman 90 días y 95%.
func NewForecastUseCase(txRunner TxRunner, clock Clock, settings ForecastSettings, log zerolog.Logger) *ForecastUseCase {
	if settings.WindowDays <= 0 || settings.WindowDays > forecast.MaxWindowDays {
		settings.WindowDays = forecast.DefaultWindowDays
	}
	if settings.ServiceLevel <= 0 {
		settings.ServiceLevel = forecast.ServiceLevel95
	}
	return &ForecastUseCase{
		txRunner: txRunner,
		clock:    clock,
		settings: settings,
		log:      log.With().Str("usecase", "forecast").Logger(),
	}
}

// Compute calcula estadísticas de demanda y umbrales de reorden para un producto.
// Lee contador y ledger en una transacción snapshot.
func (uc *ForecastUseCase) Compute(ctx context.Context, productID string, params ForecastParams) (*dto.ForecastResponse, error) {
	ctx, span := startSpan(ctx, "inventory.ComputeForecast", attribute.String("product_id", productID))
	var res *dto.ForecastResponse
	err := uc.validateParams(productID, params)
	if err == nil {
		now := uc.clock.Now()
		err = uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
			var err error
			res, err = uc.computeTx(ctx, r, productID, params, now)
			return err
		})
	}
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *ForecastUseCase) validateParams(productID string, params ForecastParams) error {
	if productID == "" {
		return domain.InvalidInput("product_id es obligatorio")
	}
	if params.WindowDays < 0 || params.WindowDays > forecast.MaxWindowDays {
		return domain.InvalidInput(fmt.Sprintf("window_days debe estar entre 1 y %d", forecast.MaxWindowDays))
	}
	if params.LeadTimeDays < 0 || params.LeadTimeDays > forecast.MaxLeadTimeDays {
		return domain.InvalidInput(fmt.Sprintf("lead_time_days debe estar entre 1 y %d", forecast.MaxLeadTimeDays))
	}
	if params.ServiceLevel < 0 || params.ServiceLevel >= 100 {
		return domain.InvalidInput("service_level debe estar entre 0 y 100")
	}
	return nil
}

// computeTx ejecuta los pasos del pronóstico con los repositorios de la transacción en curso.
func (uc *ForecastUseCase) computeTx(ctx context.Context, r Repos, productID string, params ForecastParams, now time.Time) (*dto.ForecastResponse, error) {
	product, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", productID)
	}
	return uc.forecastProduct(ctx, r, product, params, now)
}

func (uc *ForecastUseCase) forecastProduct(ctx context.Context, r Repos, product *entity.Product, params ForecastParams, now time.Time) (*dto.ForecastResponse, error) {
	window := params.WindowDays
	if window == 0 {
		window = uc.settings.WindowDays
	}
	leadTime := params.LeadTimeDays
	if leadTime == 0 {
		supplier, err := r.Suppliers.GetByID(ctx, product.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.NotFound("proveedor", product.SupplierID)
		}
		leadTime = supplier.LeadTimeDays
	}
	level := params.ServiceLevel
	if level == 0 {
		level = uc.settings.ServiceLevel
	}
	z := forecast.ZScore(level)

	from := now.Add(-time.Duration(window) * 24 * time.Hour)
	sales, err := r.Ledger.ListOutboundInWindow(ctx, product.ID, from, now)
	if err != nil {
		return nil, err
	}
	quantities := make([]int, 0, len(sales))
	for _, s := range sales {
		quantities = append(quantities, s.Quantity)
	}

	demand := forecast.DemandFromSales(quantities, window)
	th := forecast.ReorderThresholds(demand, leadTime, z)

	return &dto.ForecastResponse{
		ProductID:      product.ID,
		ProductName:    product.Name,
		CurrentStock:   product.CurrentStock,
		LeadTimeDays:   leadTime,
		WindowDays:     window,
		ServiceLevelZ:  z,
		AvgDailySales:  forecast.Round(demand.AvgDailySales, 2),
		StdDev:         forecast.Round(demand.StdDev, 4),
		LeadTimeDemand: forecast.Round(th.LeadTimeDemand, 2),
		SafetyStock:    th.SafetyStock,
		ReorderPoint:   th.ReorderPoint,
		Status:         forecast.Classify(product.CurrentStock, th.ReorderPoint),
		ChartSeries:    dailySeries(sales),
	}, nil
}

// dailySeries agrupa las salidas por día UTC en orden ascendente. Solo para gráficos.
func dailySeries(sales []*entity.Transaction) []dto.ChartPoint {
	byDay := make(map[string]int)
	days := make([]string, 0)
	for _, s := range sales {
		day := s.CreatedAt.UTC().Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] += s.Quantity
	}
	sort.Strings(days)
	series := make([]dto.ChartPoint, 0, len(days))
	for _, d := range days {
		series = append(series, dto.ChartPoint{Date: d, Sales: byDay[d]})
	}
	return series
}

// Simulate calcula umbrales hipotéticos sin tocar el almacenamiento.
func (uc *ForecastUseCase) Simulate(in dto.SimulateRequest) (*dto.SimulateResponse, error) {
	if in.LeadTimeDays <= 0 || in.LeadTimeDays > forecast.MaxLeadTimeDays {
		return nil, domain.InvalidInput(fmt.Sprintf("lead_time_days debe estar entre 1 y %d", forecast.MaxLeadTimeDays))
	}
	if in.AvgDailySales < 0 || in.StdDev < 0 || in.ServiceLevelZ < 0 {
		return nil, domain.InvalidInput("avg_daily_sales, std_dev y service_level_z no pueden ser negativos")
	}
	z := in.ServiceLevelZ
	if z == 0 {
		level := in.ServiceLevel
		if level == 0 {
			level = uc.settings.ServiceLevel
		}
		z = forecast.ZScore(level)
	}
	th := forecast.ReorderThresholds(
		forecast.Demand{AvgDailySales: in.AvgDailySales, StdDev: in.StdDev},
		in.LeadTimeDays, z,
	)
	return &dto.SimulateResponse{
		SafetyStock:    th.SafetyStock,
		ReorderPoint:   th.ReorderPoint,
		LeadTimeDemand: forecast.Round(th.LeadTimeDemand, 2),
		ServiceLevelZ:  z,
	}, nil
}

// ConfirmRestock recalcula el pronóstico con los parámetros hipotéticos y crea una orden real
// por ReorderPoint*2 - CurrentStock. Rechaza cantidades no positivas con INVALID_QUANTITY.
func (uc *ForecastUseCase) ConfirmRestock(ctx context.Context, productID string, leadTimeDays int, serviceLevel float64) (*dto.RestockResponse, error) {
	ctx, span := startSpan(ctx, "inventory.ConfirmRestock", attribute.String("product_id", productID))
	res, err := uc.confirmRestock(ctx, productID, leadTimeDays, serviceLevel)
	endSpan(span, err)
	return res, err
}

func (uc *ForecastUseCase) confirmRestock(ctx context.Context, productID string, leadTimeDays int, serviceLevel float64) (*dto.RestockResponse, error) {
	params := ForecastParams{LeadTimeDays: leadTimeDays, ServiceLevel: serviceLevel}
	if err := uc.validateParams(productID, params); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	var res *dto.RestockResponse
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		fc, err := uc.computeTx(ctx, r, productID, params, now)
		if err != nil {
			return err
		}
		qty := forecast.RestockQuantity(fc.ReorderPoint, fc.CurrentStock)
		if qty <= 0 {
			return domain.InvalidQuantity(qty)
		}
		po, err := createPurchaseOrderTx(ctx, r, productID, qty, uc.clock)
		if err != nil {
			return err
		}
		res = &dto.RestockResponse{
			PurchaseOrderID: po.ID,
			Quantity:        qty,
			ReorderPoint:    fc.ReorderPoint,
			CurrentStock:    fc.CurrentStock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", productID).
		Str("purchase_order_id", res.PurchaseOrderID).
		Int("quantity", res.Quantity).
		Int("reorder_point", res.ReorderPoint).
		Msg("reabastecimiento confirmado")
	return res, nil
}

// ReorderReport evalúa todo el catálogo y devuelve los productos en WARNING o CRITICAL,
// CRITICAL primero y luego por mayor déficit frente al punto de reorden.
func (uc *ForecastUseCase) ReorderReport(ctx context.Context) ([]dto.ReorderReportItem, error) {
	ctx, span := startSpan(ctx, "inventory.ReorderReport")
	now := uc.clock.Now()
	items := make([]dto.ReorderReportItem, 0)
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		return forEachProduct(ctx, r, func(p *entity.Product) error {
			fc, err := uc.forecastProduct(ctx, r, p, ForecastParams{}, now)
			if err != nil {
				return err
			}
			if fc.Status == forecast.StatusSafe {
				return nil
			}
			suggested := forecast.RestockQuantity(fc.ReorderPoint, fc.CurrentStock)
			if suggested < 0 {
				suggested = 0
			}
			items = append(items, dto.ReorderReportItem{
				ProductID:    p.ID,
				SKU:          p.SKU,
				ProductName:  p.Name,
				CurrentStock: p.CurrentStock,
				SafetyStock:  fc.SafetyStock,
				ReorderPoint: fc.ReorderPoint,
				Deficit:      fc.ReorderPoint - p.CurrentStock,
				SuggestedQty: suggested,
				Status:       fc.Status,
			})
			return nil
		})
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		ci := items[i].Status == forecast.StatusCritical
		cj := items[j].Status == forecast.StatusCritical
		if ci != cj {
			return ci
		}
		if items[i].Deficit != items[j].Deficit {
			return items[i].Deficit > items[j].Deficit
		}
		return items[i].SKU < items[j].SKU
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

// forEachProduct recorre el catálogo por páginas dentro de la transacción en curso.
func forEachProduct(ctx context.Context, r Repos, fn func(p *entity.Product) error) error {
	for offset := 0; ; offset += catalogPageSize {
		page, err := r.Products.List(ctx, catalogPageSize, offset)
		if err != nil {
			return err
		}
		for _, p := range page {
			if err := fn(p); err != nil {
				return err
			}
		}
		if len(page) < catalogPageSize {
			return nil
		}
	}
}
