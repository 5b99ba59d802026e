package profit

import (
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

type VoiceInput struct {
	GPU            string  `json:"gpu"`
	Model          string  `json:"model"`
	UtilizationPct float64 `json:"utilization"`
	Markup         float64 `json:"markup"`
}

// VoiceResult is the job economics of one (GPU, model) pair. Voice
// inference is always a dedicated rental.
type VoiceResult struct {
	GPU                string  `json:"gpu"`
	Model              string  `json:"model"`
	Category           string  `json:"category"`
	JobsPerHour        float64 `json:"jobsPerHour"`
	GPUCostPerHour     float64 `json:"gpuCostPerHour"`
	CostPerJob         float64 `json:"costPerJob"`
	CompetitorPriceUSD float64 `json:"competitorPriceUSD"`
	PricePerJob        float64 `json:"pricePerJob"`
	ProfitPerJob       float64 `json:"profitPerJob"`
	RevenuePerHour     float64 `json:"revenuePerHour"`
	MaxRevenuePerHour  float64 `json:"maxRevenuePerHour"`
	ProfitPerHour      float64 `json:"profitPerHour"`
	ProfitPerMonth     float64 `json:"profitPerMonth"`
	RevenuePerMonth    float64 `json:"revenuePerMonth"`
	UtilizationPct     float64 `json:"utilization"`
	Markup             float64 `json:"markup"`
}

func (r VoiceResult) MonthlyProfit() float64 { return r.ProfitPerMonth }

func (r VoiceResult) CurveBasis() Basis {
	return Basis{MaxRevenuePerHour: r.MaxRevenuePerHour, MaxCostPerHour: r.GPUCostPerHour}
}

// CalculateVoice prices a voice model on a GPU from the LLM GPU table. It
// returns false when the GPU is missing or the model has no jobs/hour figure
// for it.
func CalculateVoice(cat *catalog.Catalog, in VoiceInput) (VoiceResult, bool) {
	gpu, ok := cat.LLMGPU(in.GPU)
	if !ok {
		return VoiceResult{}, false
	}
	model, ok := cat.VoiceModel(in.Model)
	if !ok {
		return VoiceResult{}, false
	}
	jph, ok := model.JobsPerHour.Get(in.GPU)
	if !ok || jph <= 0 {
		return VoiceResult{}, false
	}

	costPerJob := gpu.HourlyCostUSD / jph
	price := costPerJob * in.Markup
	maxRevenue := price * jph
	revenue := maxRevenue * cost.UtilizationFactor(in.UtilizationPct)
	profitPerHour := revenue - gpu.HourlyCostUSD

	return VoiceResult{
		GPU:                in.GPU,
		Model:              model.Name,
		Category:           model.Category,
		JobsPerHour:        jph,
		GPUCostPerHour:     gpu.HourlyCostUSD,
		CostPerJob:         costPerJob,
		CompetitorPriceUSD: model.CompetitorPriceUSD,
		PricePerJob:        price,
		ProfitPerJob:       price - costPerJob,
		RevenuePerHour:     revenue,
		MaxRevenuePerHour:  maxRevenue,
		ProfitPerHour:      profitPerHour,
		ProfitPerMonth:     cost.Monthly(profitPerHour),
		RevenuePerMonth:    cost.Monthly(revenue),
		UtilizationPct:     in.UtilizationPct,
		Markup:             in.Markup,
	}, true
}

func RankVoice(cat *catalog.Catalog, utilizationPct, markup float64) Ranking[VoiceResult] {
	var rk Ranking[VoiceResult]
	for _, g := range cat.LLMGPUs() {
		for _, m := range cat.VoiceModels() {
			r, ok := CalculateVoice(cat, VoiceInput{
				GPU:            g.Name,
				Model:          m.Name,
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
	sortByMonthlyProfit(rk.Configurations)
	return rk
}
