package cost

// HoursPerMonth is the fixed 30-day month (24 * 30) every monthly figure is
// projected with. Months are not calendar-aware.
const HoursPerMonth = 24 * 30

// SecondsPerHour converts per-second rates and throughput to hourly figures.
const SecondsPerHour = 3600

// HoursPerYear is used by amortization policies.
const HoursPerYear = 24 * 365

// Monthly projects an hourly figure onto the fixed 30-day month.
func Monthly(hourly float64) float64 {
	return hourly * HoursPerMonth
}

// UtilizationFactor converts a utilization percentage into a 0-1 factor.
func UtilizationFactor(pct float64) float64 {
	return pct / 100
}

// ClampUtilization bounds a user-supplied utilization percentage to [1, 100].
func ClampUtilization(pct float64) float64 {
	if pct < 1 {
		return 1
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ClampMarkup bounds a user-supplied markup multiplier to >= 1. There is no
// upper bound.
func ClampMarkup(m float64) float64 {
	if m < 1 {
		return 1
	}
	return m
}

// AmortizationPolicy derives an hourly rate from a hardware list price.
type AmortizationPolicy struct {
	Name               string  `yaml:"name" json:"name"`
	Years              float64 `yaml:"years" json:"years"`
	OverheadPerHourUSD float64 `yaml:"overheadPerHourUSD" json:"overheadPerHourUSD"` // power, hosting
}

// DefaultAmortization writes hardware off over five years plus a flat
// power and hosting overhead.
var DefaultAmortization = AmortizationPolicy{
	Name:               "capex-5y",
	Years:              5,
	OverheadPerHourUSD: 0.10,
}

// HourlyRate returns price / (years * 8760) + overhead. A policy without a
// positive horizon only contributes its overhead.
func (p AmortizationPolicy) HourlyRate(priceUSD float64) float64 {
	if p.Years <= 0 {
		return p.OverheadPerHourUSD
	}
	return priceUSD/(p.Years*HoursPerYear) + p.OverheadPerHourUSD
}
