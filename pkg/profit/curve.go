package profit

import "github.com/koptimizer/inferprofit/pkg/cost"

// Basis holds the 100%-utilization figures a result needs to be re-evaluated
// at any other utilization without new catalog lookups.
type Basis struct {
	MaxRevenuePerHour float64 `json:"maxRevenuePerHour"`
	MaxCostPerHour    float64 `json:"maxCostPerHour"`
	Serverless        bool    `json:"serverless"`
}

// CurveSource is implemented by every calculator result.
type CurveSource interface {
	CurveBasis() Basis
}

type CurvePoint struct {
	UtilizationPct int     `json:"utilization"`
	MonthlyProfit  float64 `json:"monthlyProfit"`
}

// CostPerHourAt is the GPU cost at a utilization: proportional for
// serverless billing, fixed otherwise.
func (b Basis) CostPerHourAt(utilizationPct float64) float64 {
	if b.Serverless {
		return b.MaxCostPerHour * cost.UtilizationFactor(utilizationPct)
	}
	return b.MaxCostPerHour
}

func (b Basis) ProfitPerHourAt(utilizationPct float64) float64 {
	return b.MaxRevenuePerHour*cost.UtilizationFactor(utilizationPct) - b.CostPerHourAt(utilizationPct)
}

func (b Basis) MonthlyProfitAt(utilizationPct float64) float64 {
	return cost.Monthly(b.ProfitPerHourAt(utilizationPct))
}

// Curve evaluates monthly profit at every whole utilization from 1 to 100.
func Curve(src CurveSource) []CurvePoint {
	b := src.CurveBasis()
	points := make([]CurvePoint, 0, 100)
	for u := 1; u <= 100; u++ {
		points = append(points, CurvePoint{UtilizationPct: u, MonthlyProfit: b.MonthlyProfitAt(float64(u))})
	}
	return points
}

// BreakEven returns the utilization at which a flat-rate configuration stops
// losing money. Serverless profit has the sign of revenue minus cost at every
// utilization, so it either breaks even immediately or never. ok is false
// when break-even is not reachable at or below 100%.
func (b Basis) BreakEven() (utilizationPct float64, ok bool) {
	if b.MaxRevenuePerHour <= 0 {
		return 0, false
	}
	if b.Serverless {
		if b.MaxRevenuePerHour >= b.MaxCostPerHour {
			return 0, true
		}
		return 0, false
	}
	pct := b.MaxCostPerHour / b.MaxRevenuePerHour * 100
	if pct > 100 {
		return pct, false
	}
	return pct, true
}
