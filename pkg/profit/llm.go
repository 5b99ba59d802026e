package profit

import (
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

// LLMInput selects one (GPU, model) pair. A nil override means "use the
// model's default base cost".
type LLMInput struct {
	GPU                string   `json:"gpu"`
	Model              string   `json:"model"`
	UtilizationPct     float64  `json:"utilization"`
	Markup             float64  `json:"markup"`
	InputCostOverride  *float64 `json:"inputCostOverride,omitempty"`
	OutputCostOverride *float64 `json:"outputCostOverride,omitempty"`
}

// LLMResult is the token economics of one (GPU, model) pair.
type LLMResult struct {
	GPU                string  `json:"gpu"`
	Model              string  `json:"model"`
	VRAMGB             float64 `json:"vramGB"`
	HourlyCostUSD      float64 `json:"hourlyCostUSD"`
	InputPricePerMTok  float64 `json:"inputPricePerMTok"`
	OutputPricePerMTok float64 `json:"outputPricePerMTok"`
	TokensPerSecond    float64 `json:"tokensPerSecond"`
	TokensPerHour      float64 `json:"tokensPerHour"`
	RevenuePerHour     float64 `json:"revenuePerHour"`
	ProfitPerHour      float64 `json:"profitPerHour"`
	ProfitPerMonth     float64 `json:"profitPerMonth"`
	RevenuePerMonth    float64 `json:"revenuePerMonth"`
	UtilizationPct     float64 `json:"utilization"`
	Markup             float64 `json:"markup"`

	// 100%-utilization reference values for redrawing the profit curve.
	MaxRevenuePerHour float64 `json:"maxRevenuePerHour"`
	FixedCostPerHour  float64 `json:"fixedCostPerHour"`
}

func (r LLMResult) MonthlyProfit() float64 { return r.ProfitPerMonth }

func (r LLMResult) CurveBasis() Basis {
	return Basis{MaxRevenuePerHour: r.MaxRevenuePerHour, MaxCostPerHour: r.FixedCostPerHour}
}

// CalculateLLM prices a model on a GPU. It returns false when the GPU, the
// model, or the model's throughput on that GPU is missing.
//
// Revenue assumes an even split between input and output tokens. GPU rental
// is a fixed hourly cost; only revenue scales with utilization.
func CalculateLLM(cat *catalog.Catalog, in LLMInput) (LLMResult, bool) {
	gpu, ok := cat.LLMGPU(in.GPU)
	if !ok {
		return LLMResult{}, false
	}
	model, ok := cat.LLMModel(in.Model)
	if !ok {
		return LLMResult{}, false
	}
	tps, ok := model.TokensPerSecond.Get(in.GPU)
	if !ok || tps <= 0 {
		return LLMResult{}, false
	}

	inputBase := model.InputCostPerMTok
	if in.InputCostOverride != nil {
		inputBase = *in.InputCostOverride
	}
	outputBase := model.OutputCostPerMTok
	if in.OutputCostOverride != nil {
		outputBase = *in.OutputCostOverride
	}
	inputPrice := inputBase * in.Markup
	outputPrice := outputBase * in.Markup

	tokensPerHour := tps * cost.SecondsPerHour
	half := tokensPerHour / 2
	maxRevenue := half*inputPrice/1e6 + half*outputPrice/1e6

	revenue := maxRevenue * cost.UtilizationFactor(in.UtilizationPct)
	profitPerHour := revenue - gpu.HourlyCostUSD

	return LLMResult{
		GPU:                in.GPU,
		Model:              in.Model,
		VRAMGB:             gpu.VRAMGB,
		HourlyCostUSD:      gpu.HourlyCostUSD,
		InputPricePerMTok:  inputPrice,
		OutputPricePerMTok: outputPrice,
		TokensPerSecond:    tps,
		TokensPerHour:      tokensPerHour,
		RevenuePerHour:     revenue,
		ProfitPerHour:      profitPerHour,
		ProfitPerMonth:     cost.Monthly(profitPerHour),
		RevenuePerMonth:    cost.Monthly(revenue),
		UtilizationPct:     in.UtilizationPct,
		Markup:             in.Markup,
		MaxRevenuePerHour:  maxRevenue,
		FixedCostPerHour:   gpu.HourlyCostUSD,
	}, true
}

// RankLLM evaluates every GPU against every model and sorts the survivors
// by monthly profit, highest first.
func RankLLM(cat *catalog.Catalog, utilizationPct, markup float64) Ranking[LLMResult] {
	var rk Ranking[LLMResult]
	for _, g := range cat.LLMGPUs() {
		for _, m := range cat.LLMModels() {
			r, ok := CalculateLLM(cat, LLMInput{
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
