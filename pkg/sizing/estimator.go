package sizing

import (
	"fmt"
	"math"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

const (
	DefaultUsers         = 500
	DefaultTokensPerUser = 15000
	DefaultWorkHours     = 8
	DefaultPeakFactor    = 3

	// MemoryOverhead covers KV cache and activations on top of weights.
	MemoryOverhead = 1.2

	// MaxClusterGPUs caps the throughput search.
	MaxClusterGPUs = 1024
)

// Constraint names which bound decided the final GPU count.
type Constraint int

const (
	ConstraintMemory Constraint = iota
	ConstraintThroughput
)

func (c Constraint) String() string {
	if c == ConstraintThroughput {
		return "Throughput"
	}
	return "Memory"
}

func (c Constraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Input describes the expected load. DailyTokensOverride, when positive,
// replaces Users x TokensPerUser. Non-positive WorkHours and PeakFactor fall
// back to the defaults, and a policy with no steps means IntraServer.
type Input struct {
	Users               int           `json:"users"`
	TokensPerUser       float64       `json:"tokensPerUser"`
	DailyTokensOverride float64       `json:"dailyTokensOverride,omitempty"`
	WorkHours           float64       `json:"workHours"`
	PeakFactor          float64       `json:"peakFactor"`
	Precision           Precision     `json:"precision"`
	Policy              ScalingPolicy `json:"policy"`
}

// DefaultInput is the reference enterprise scenario.
func DefaultInput() Input {
	return Input{
		Users:         DefaultUsers,
		TokensPerUser: DefaultTokensPerUser,
		WorkHours:     DefaultWorkHours,
		PeakFactor:    DefaultPeakFactor,
		Precision:     FP8,
		Policy:        IntraServer,
	}
}

type Result struct {
	Model     string    `json:"model"`
	GPU       string    `json:"gpu"`
	Precision Precision `json:"precision"`
	Policy    string    `json:"policy"`

	DailyTokens      float64    `json:"dailyTokens"`
	PeakTPS          float64    `json:"peakTps"`
	MemoryGB         float64    `json:"memoryGB"`
	GPUsByMemory     int        `json:"gpusByMemory"`
	GPUsByThroughput int        `json:"gpusByThroughput"`
	FinalGPUs        int        `json:"finalGpus"`
	Efficiency       float64    `json:"efficiency"`
	CapexUSD         float64    `json:"capexUSD"`
	CostPerMTok      float64    `json:"costPerMTok"`
	Constraint       Constraint `json:"constraint"`

	BaseTPS            float64 `json:"baseTps"`
	ThroughputFallback bool    `json:"throughputFallback"`
	EffectiveTPS       float64 `json:"effectiveTps"`
	HourlyRateUSD      float64 `json:"hourlyRateUSD"`
	MonthlyCostUSD     float64 `json:"monthlyCostUSD"`
}

// Estimate sizes a cluster for a resolved model and GPU. It always returns
// a result; degenerate inputs degrade to a single GPU.
func Estimate(model catalog.EstimatorModel, gpu catalog.EstimatorGPU, in Input) Result {
	workHours := in.WorkHours
	if workHours <= 0 {
		workHours = DefaultWorkHours
	}
	peak := in.PeakFactor
	if peak <= 0 {
		peak = DefaultPeakFactor
	}
	policy := in.Policy
	if len(policy.Steps) == 0 {
		policy = IntraServer
	}

	daily := float64(in.Users) * in.TokensPerUser
	if in.DailyTokensOverride > 0 {
		daily = in.DailyTokensOverride
	}
	peakTPS := daily * peak / (workHours * cost.SecondsPerHour)

	memoryGB := model.ParamsB * in.Precision.BytesPerParam() * MemoryOverhead
	byMemory := 1
	if gpu.VRAMGB > 0 {
		byMemory = int(math.Ceil(memoryGB / gpu.VRAMGB))
	}

	baseTPS, fallback := model.ResolveThroughput(gpu.Name)
	byThroughput := gpusForThroughput(baseTPS, peakTPS, policy)

	final := byMemory
	constraint := ConstraintMemory
	if byThroughput > byMemory {
		final = byThroughput
		constraint = ConstraintThroughput
	}

	eff := policy.Efficiency(final)
	effectiveTPS := baseTPS * float64(final) * eff
	var costPerM float64
	if effectiveTPS > 0 {
		costPerM = gpu.HourlyRateUSD * float64(final) / (effectiveTPS * cost.SecondsPerHour / 1e6)
	}

	return Result{
		Model:              model.Name,
		GPU:                gpu.Name,
		Precision:          in.Precision,
		Policy:             policy.Name,
		DailyTokens:        daily,
		PeakTPS:            peakTPS,
		MemoryGB:           memoryGB,
		GPUsByMemory:       byMemory,
		GPUsByThroughput:   byThroughput,
		FinalGPUs:          final,
		Efficiency:         eff,
		CapexUSD:           float64(final) * gpu.PriceUSD,
		CostPerMTok:        costPerM,
		Constraint:         constraint,
		BaseTPS:            baseTPS,
		ThroughputFallback: fallback,
		EffectiveTPS:       effectiveTPS,
		HourlyRateUSD:      gpu.HourlyRateUSD,
		MonthlyCostUSD:     cost.Monthly(gpu.HourlyRateUSD * float64(final)),
	}
}

// gpusForThroughput grows the cluster one GPU at a time until scaled
// throughput covers the peak, stopping at MaxClusterGPUs.
func gpusForThroughput(baseTPS, peakTPS float64, policy ScalingPolicy) int {
	n := 1
	if baseTPS <= 0 {
		return n
	}
	for n < MaxClusterGPUs && float64(n)*baseTPS*policy.Efficiency(n) < peakTPS {
		n++
	}
	return n
}

// EstimateByName resolves the model and GPU against the catalog first.
func EstimateByName(cat *catalog.Catalog, modelName, gpuName string, in Input) (Result, error) {
	model, ok := cat.EstimatorModel(modelName)
	if !ok {
		return Result{}, fmt.Errorf("unknown estimator model %q", modelName)
	}
	gpu, ok := cat.EstimatorGPU(gpuName)
	if !ok {
		return Result{}, fmt.Errorf("unknown estimator GPU %q", gpuName)
	}
	return Estimate(model, gpu, in), nil
}

// EstimateAll sizes the model on every estimator GPU, in catalog order.
func EstimateAll(cat *catalog.Catalog, modelName string, in Input) ([]Result, error) {
	model, ok := cat.EstimatorModel(modelName)
	if !ok {
		return nil, fmt.Errorf("unknown estimator model %q", modelName)
	}
	gpus := cat.EstimatorGPUs()
	results := make([]Result, 0, len(gpus))
	for _, g := range gpus {
		results = append(results, Estimate(model, g, in))
	}
	return results, nil
}
