package forecast

// Niveles de servicio soportados (porcentaje) y su Z-score.
const (
	ServiceLevel90 = 90
	ServiceLevel95 = 95
	ServiceLevel99 = 99

	// DefaultZScore corresponde a 95%.
	DefaultZScore = 1.65
)

// ZScore convierte un nivel de servicio (%) en Z-score.
// Se toma el escalón inmediatamente inferior: 97% usa el Z de 95%.
func ZScore(serviceLevel float64) float64 {
	switch {
	case serviceLevel >= ServiceLevel99:
		return 2.33
	case serviceLevel >= ServiceLevel95:
		return DefaultZScore
	case serviceLevel >= ServiceLevel90:
		return 1.28
	default:
		return 1.0
	}
}
