package profit

import (
	"strings"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

type MediaInput struct {
	GPU            string            `json:"gpu"`
	Model          string            `json:"model"`
	Provider       catalog.Provider  `json:"provider"`
	Kind           catalog.MediaKind `json:"kind"`
	UtilizationPct float64           `json:"utilization"`
	Markup         float64           `json:"markup"`
}

// MediaResult is the unit economics of one (GPU, model, provider) triple.
type MediaResult struct {
	GPU      string            `json:"gpu"`
	Model    string            `json:"model"`
	Kind     catalog.MediaKind `json:"kind"`
	Provider catalog.Provider  `json:"provider"`
	// BilledProvider is the provider whose price was used. It differs from
	// Provider only when the requested provider has no offering.
	BilledProvider catalog.Provider `json:"billedProvider"`
	Serverless     bool             `json:"serverless"`

	MaxCostPerHour    float64 `json:"maxCostPerHour"`
	CostPerHour       float64 `json:"costPerHour"`
	UnitsPerHour      float64 `json:"unitsPerHour"`
	CostPerUnit       float64 `json:"costPerUnit"`
	PricePerUnit      float64 `json:"pricePerUnit"`
	ProfitPerUnit     float64 `json:"profitPerUnit"`
	MarginPct         float64 `json:"marginPct"`
	RevenuePerHour    float64 `json:"revenuePerHour"`
	MaxRevenuePerHour float64 `json:"maxRevenuePerHour"`
	ProfitPerHour     float64 `json:"profitPerHour"`
	ProfitPerMonth    float64 `json:"profitPerMonth"`
	RevenuePerMonth   float64 `json:"revenuePerMonth"`
	Profitable        bool    `json:"profitable"`

	BaselinePrice  float64 `json:"baselinePrice"`
	CompetitorKey  string  `json:"competitorKey,omitempty"`
	UtilizationPct float64 `json:"utilization"`
	Markup         float64 `json:"markup"`
}

func (r MediaResult) MonthlyProfit() float64 { return r.ProfitPerMonth }

func (r MediaResult) CurveBasis() Basis {
	return Basis{
		MaxRevenuePerHour: r.MaxRevenuePerHour,
		MaxCostPerHour:    r.MaxCostPerHour,
		Serverless:        r.Serverless,
	}
}

// GPUCost returns the hourly cost of a GPU under a provider, converting
// serverless per-second rates to an hourly equivalent. When the provider has
// no offering it falls back to cudo, then runpod. Zero means unavailable, not
// free. The second value is the provider whose price was used.
func GPUCost(cat *catalog.Catalog, gpu string, p catalog.Provider) (float64, catalog.Provider) {
	g, ok := cat.MediaGPU(gpu)
	if !ok {
		return 0, p
	}
	if v, ok := g.Price(p); ok {
		if p.Serverless() {
			return v * cost.SecondsPerHour, p
		}
		return v, p
	}
	if v, ok := g.Price(catalog.ProviderCudo); ok {
		return v, catalog.ProviderCudo
	}
	if v, ok := g.Price(catalog.ProviderRunPod); ok {
		return v, catalog.ProviderRunPod
	}
	return 0, p
}

// Throughput returns units per hour at 100% utilization. Image models pick a
// hardware tier from the GPU name; GPUs outside the known tiers use the L40S
// figure. Video throughput is derived from seconds per video.
func Throughput(cat *catalog.Catalog, gpu, model string, kind catalog.MediaKind) float64 {
	switch kind {
	case catalog.MediaImage:
		m, ok := cat.ImageModel(model)
		if !ok {
			return 0
		}
		switch {
		case strings.Contains(gpu, "H100"):
			return m.PerHourH100
		case gpu == "L40S":
			return m.PerHourL40S
		case gpu == "A100":
			return m.PerHourA100
		default:
			return m.PerHourL40S
		}
	case catalog.MediaVideo:
		m, ok := cat.VideoModel(model)
		if !ok || m.SecondsPerVideo <= 0 {
			return 0
		}
		return cost.SecondsPerHour / m.SecondsPerVideo
	}
	return 0
}

// CalculateMedia prices an image or video model on a GPU under a provider.
// It returns false when either the resolved cost or throughput is zero.
//
// Serverless cost scales with utilization because it accrues only while
// generating. Flat-rate cost is the same at every utilization.
func CalculateMedia(cat *catalog.Catalog, in MediaInput) (MediaResult, bool) {
	maxCost, billed := GPUCost(cat, in.GPU, in.Provider)
	throughput := Throughput(cat, in.GPU, in.Model, in.Kind)
	if maxCost <= 0 || throughput <= 0 {
		return MediaResult{}, false
	}

	u := cost.UtilizationFactor(in.UtilizationPct)
	costPerUnit := maxCost / throughput
	price := costPerUnit * in.Markup
	profitPerUnit := price - costPerUnit
	margin := 0.0
	if price > 0 {
		margin = profitPerUnit / price * 100
	}

	var currentCost float64
	switch billed {
	case catalog.ProviderRunPodServerless:
		currentCost = maxCost * u
	case catalog.ProviderCudo, catalog.ProviderRunPod:
		currentCost = maxCost
	default:
		return MediaResult{}, false
	}

	maxRevenue := throughput * price
	revenue := maxRevenue * u
	profitPerHour := revenue - currentCost
	monthly := cost.Monthly(profitPerHour)

	baseline, key := mediaBaseline(cat, in.Model, in.Kind)

	return MediaResult{
		GPU:               in.GPU,
		Model:             in.Model,
		Kind:              in.Kind,
		Provider:          in.Provider,
		BilledProvider:    billed,
		Serverless:        billed.Serverless(),
		MaxCostPerHour:    maxCost,
		CostPerHour:       currentCost,
		UnitsPerHour:      throughput,
		CostPerUnit:       costPerUnit,
		PricePerUnit:      price,
		ProfitPerUnit:     profitPerUnit,
		MarginPct:         margin,
		RevenuePerHour:    revenue,
		MaxRevenuePerHour: maxRevenue,
		ProfitPerHour:     profitPerHour,
		ProfitPerMonth:    monthly,
		RevenuePerMonth:   cost.Monthly(revenue),
		Profitable:        monthly > 0,
		BaselinePrice:     baseline,
		CompetitorKey:     key,
		UtilizationPct:    in.UtilizationPct,
		Markup:            in.Markup,
	}, true
}

func mediaBaseline(cat *catalog.Catalog, model string, kind catalog.MediaKind) (float64, string) {
	switch kind {
	case catalog.MediaImage:
		if m, ok := cat.ImageModel(model); ok {
			return m.BaselinePrice, m.CompetitorKey
		}
	case catalog.MediaVideo:
		if m, ok := cat.VideoModel(model); ok {
			return m.BaselinePrice, m.CompetitorKey
		}
	}
	return 0, ""
}

// RankMedia sweeps GPU x model x provider for one media kind. Only
// providers that actually price a GPU are eligible for it.
func RankMedia(cat *catalog.Catalog, kind catalog.MediaKind, utilizationPct, markup float64) Ranking[MediaResult] {
	var rk Ranking[MediaResult]
	models := cat.MediaModelNames(kind)
	for _, g := range cat.MediaGPUs() {
		for _, m := range models {
			for _, p := range catalog.Providers {
				if _, ok := g.Price(p); !ok {
					continue
				}
				r, ok := CalculateMedia(cat, MediaInput{
					GPU:            g.Name,
					Model:          m,
					Provider:       p,
					Kind:           kind,
					UtilizationPct: utilizationPct,
					Markup:         markup,
				})
				if !ok {
					rk.Excluded++
					continue
				}
				rk.Configurations = append(rk.Configurations, r)
			}
		}
	}
	sortByMonthlyProfit(rk.Configurations)
	return rk
}
