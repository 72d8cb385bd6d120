// Package forecast contiene el motor estadístico de reorden (servicio de dominio puro, sin I/O).
package forecast

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultWindowDays ventana histórica por defecto (días calendario).
const DefaultWindowDays = 90

// Límites de los parámetros de una consulta.
const (
	MaxWindowDays   = 3650
	MaxLeadTimeDays = 365
)

// Estados de stock frente al punto de reorden.
const (
	StatusSafe     = "SAFE"
	StatusWarning  = "WARNING"
	StatusCritical = "CRITICAL"
)

// Demand estadísticas de demanda diaria sobre la ventana.
type Demand struct {
	AvgDailySales float64
	StdDev        float64
}

// Thresholds umbrales de reposición derivados de Demand, lead time y Z.
type Thresholds struct {
	LeadTimeDemand float64
	SafetyStock    int
	ReorderPoint   int
}

// DemandFromSales calcula la demanda promedio y la desviación estándar.
//
// Ambas dividen por la longitud de la ventana (windowDays), no por el número de ventas:
// los días sin movimiento cuentan como cero. La varianza suma una vez por registro,
// sin agrupar por día.
func DemandFromSales(quantities []int, windowDays int) Demand {
	if windowDays <= 0 {
		return Demand{}
	}
	w := float64(windowDays)

	total := 0
	for _, q := range quantities {
		total += q
	}
	avg := float64(total) / w

	var sumSq float64
	for _, q := range quantities {
		d := float64(q) - avg
		sumSq += d * d
	}
	return Demand{AvgDailySales: avg, StdDev: math.Sqrt(sumSq / w)}
}

// ReorderThresholds aplica:
//
//	SafetyStock    = ceil(Z * StdDev * sqrt(L))
//	LeadTimeDemand = AvgDailySales * L
//	ReorderPoint   = ceil(LeadTimeDemand + SafetyStock)
func ReorderThresholds(d Demand, leadTimeDays int, z float64) Thresholds {
	l := float64(leadTimeDays)
	safety := math.Ceil(z * d.StdDev * math.Sqrt(l))
	ltd := d.AvgDailySales * l
	return Thresholds{
		LeadTimeDemand: ltd,
		SafetyStock:    int(safety),
		ReorderPoint:   int(math.Ceil(ltd + safety)),
	}
}

// Classify CRITICAL si no hay stock, WARNING si está en o bajo el punto de reorden, SAFE en otro caso.
func Classify(currentStock, reorderPoint int) string {
	switch {
	case currentStock <= 0:
		return StatusCritical
	case currentStock <= reorderPoint:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// RestockQuantity tamaño de pedido sugerido: el doble del punto de reorden menos el stock actual.
// Puede ser cero o negativo; quien lo usa debe rechazarlo.
func RestockQuantity(reorderPoint, currentStock int) int {
	return reorderPoint*2 - currentStock
}

// Round redondea a places decimales (2 para promedios, 4 para desviación).
// Parte del valor binario exacto, no de su forma decimal más corta: 1.005 queda en 1.00.
func Round(v float64, places int32) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 40, 64))
	if err != nil {
		return v
	}
	return d.Round(places).InexactFloat64()
}
