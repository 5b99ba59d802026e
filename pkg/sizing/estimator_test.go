package sizing

import (
	"math"
	"reflect"
	"testing"

	"github.com/koptimizer/inferprofit/pkg/catalog"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestEstimate_DefaultScenario(t *testing.T) {
	r, err := EstimateByName(catalog.Default(), "Llama 3.3 70B", "H200 141GB", DefaultInput())
	if err != nil {
		t.Fatalf("EstimateByName() error = %v", err)
	}

	if r.DailyTokens != 7.5e6 {
		t.Errorf("DailyTokens = %v, want 7.5e6", r.DailyTokens)
	}
	if !approx(r.PeakTPS, 781.25) {
		t.Errorf("PeakTPS = %v, want 781.25", r.PeakTPS)
	}
	if !approx(r.MemoryGB, 84) || r.GPUsByMemory != 1 {
		t.Errorf("memory = %v GB / %d GPUs, want 84 / 1", r.MemoryGB, r.GPUsByMemory)
	}
	// 30 x 35 x 0.75 = 787.5 covers the peak; 29 does not.
	if r.GPUsByThroughput != 30 || r.FinalGPUs != 30 {
		t.Errorf("GPUs = %d/%d, want 30/30", r.GPUsByThroughput, r.FinalGPUs)
	}
	if r.Constraint != ConstraintThroughput {
		t.Errorf("Constraint = %v, want Throughput", r.Constraint)
	}
	if r.Efficiency != 0.75 || !approx(r.EffectiveTPS, 787.5) {
		t.Errorf("efficiency = %v, effective = %v", r.Efficiency, r.EffectiveTPS)
	}
	if r.CapexUSD != 1350000 {
		t.Errorf("CapexUSD = %v, want 1350000", r.CapexUSD)
	}
	if want := 1.14 * 30 / (787.5 * 3600 / 1e6); !approx(r.CostPerMTok, want) {
		t.Errorf("CostPerMTok = %v, want %v", r.CostPerMTok, want)
	}
	if !approx(r.MonthlyCostUSD, 1.14*30*720) {
		t.Errorf("MonthlyCostUSD = %v, want %v", r.MonthlyCostUSD, 1.14*30*720)
	}
	if r.ThroughputFallback || r.BaseTPS != 35 {
		t.Errorf("base = %v fallback = %v, want 35/false", r.BaseTPS, r.ThroughputFallback)
	}
}

func TestEstimate_MemoryBound(t *testing.T) {
	model := catalog.EstimatorModel{Name: "big", ParamsB: 100, TokensPerSecond: catalog.RateTable{{Key: "g", Value: 1000}}}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 80, PriceUSD: 10000, HourlyRateUSD: 1}

	in := DefaultInput()
	in.DailyTokensOverride = 1000
	r := Estimate(model, gpu, in)
	if !approx(r.MemoryGB, 120) {
		t.Errorf("MemoryGB = %v, want 120", r.MemoryGB)
	}
	if r.GPUsByMemory != 2 || r.FinalGPUs != 2 || r.Constraint != ConstraintMemory {
		t.Errorf("memory=%d final=%d constraint=%v, want 2/2/Memory", r.GPUsByMemory, r.FinalGPUs, r.Constraint)
	}
}

func TestEstimate_PrecisionScalesMemory(t *testing.T) {
	model := catalog.EstimatorModel{Name: "m", ParamsB: 70}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 80}
	tests := []struct {
		p    Precision
		mem  float64
		gpus int
	}{
		{FP16, 168, 3},
		{FP8, 84, 2},
		{INT4, 42, 1},
	}
	for _, tt := range tests {
		in := DefaultInput()
		in.Precision = tt.p
		r := Estimate(model, gpu, in)
		if !approx(r.MemoryGB, tt.mem) || r.GPUsByMemory != tt.gpus {
			t.Errorf("%v: memory = %v/%d, want %v/%d", tt.p, r.MemoryGB, r.GPUsByMemory, tt.mem, tt.gpus)
		}
	}
}

func TestEstimate_TieGoesToMemory(t *testing.T) {
	model := catalog.EstimatorModel{Name: "m", ParamsB: 100, TokensPerSecond: catalog.RateTable{{Key: "g", Value: 100}}}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 80}
	in := DefaultInput()
	// peak = 150 tps: one GPU gives 100, two give 190.
	in.DailyTokensOverride = 150 * 8 * 3600 / 3
	r := Estimate(model, gpu, in)
	if r.GPUsByMemory != 2 || r.GPUsByThroughput != 2 {
		t.Fatalf("bounds = %d/%d, want 2/2", r.GPUsByMemory, r.GPUsByThroughput)
	}
	if r.Constraint != ConstraintMemory {
		t.Errorf("Constraint = %v, want Memory", r.Constraint)
	}
}

func TestEstimate_ZeroThroughput(t *testing.T) {
	model := catalog.EstimatorModel{Name: "m", ParamsB: 1}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 80, HourlyRateUSD: 2}
	r := Estimate(model, gpu, DefaultInput())
	if r.GPUsByThroughput != 1 || r.FinalGPUs != 1 {
		t.Errorf("GPUs = %d/%d, want 1/1", r.GPUsByThroughput, r.FinalGPUs)
	}
	if r.EffectiveTPS != 0 || r.CostPerMTok != 0 {
		t.Errorf("effective = %v cost/M = %v, want 0/0", r.EffectiveTPS, r.CostPerMTok)
	}
}

func TestEstimate_ThroughputCap(t *testing.T) {
	model := catalog.EstimatorModel{Name: "m", ParamsB: 1, TokensPerSecond: catalog.RateTable{{Key: "g", Value: 1}}}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 80}
	in := DefaultInput()
	in.DailyTokensOverride = 1e12
	r := Estimate(model, gpu, in)
	if r.GPUsByThroughput != MaxClusterGPUs {
		t.Errorf("GPUsByThroughput = %d, want %d", r.GPUsByThroughput, MaxClusterGPUs)
	}
}

func TestEstimate_Fallback(t *testing.T) {
	r, err := EstimateByName(catalog.Default(), "DeepSeek R1 (Full)", "RTX PRO 6000 Blackwell Server", DefaultInput())
	if err != nil {
		t.Fatalf("EstimateByName() error = %v", err)
	}
	if !r.ThroughputFallback || !approx(r.BaseTPS, 55*1.1) {
		t.Errorf("base = %v fallback = %v, want %v/true", r.BaseTPS, r.ThroughputFallback, 55*1.1)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	cat := catalog.Default()
	in := DefaultInput()
	in.Policy = Conservative
	a, _ := EstimateByName(cat, "Qwen3-235B-A22B", "B200 192GB", in)
	b, _ := EstimateByName(cat, "Qwen3-235B-A22B", "B200 192GB", in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ:\n%+v\n%+v", a, b)
	}
}

func TestEstimate_DegenerateInputsUseDefaults(t *testing.T) {
	model := catalog.EstimatorModel{Name: "m", ParamsB: 8, TokensPerSecond: catalog.RateTable{{Key: "g", Value: 100}}}
	gpu := catalog.EstimatorGPU{Name: "g", VRAMGB: 24}
	in := Input{Users: 500, TokensPerUser: 15000, Precision: FP8}
	got := Estimate(model, gpu, in)
	want := Estimate(model, gpu, DefaultInput())
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Estimate() = %+v, want %+v", got, want)
	}
}

func TestEstimateByName_Unknown(t *testing.T) {
	cat := catalog.Default()
	if _, err := EstimateByName(cat, "nope", "H200 141GB", DefaultInput()); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := EstimateByName(cat, "Llama 3 8B", "nope", DefaultInput()); err == nil {
		t.Error("expected error for unknown GPU")
	}
}

func TestEstimateAll(t *testing.T) {
	cat := catalog.Default()
	rs, err := EstimateAll(cat, "Llama 3 8B", DefaultInput())
	if err != nil {
		t.Fatalf("EstimateAll() error = %v", err)
	}
	gpus := cat.EstimatorGPUs()
	if len(rs) != len(gpus) {
		t.Fatalf("len = %d, want %d", len(rs), len(gpus))
	}
	for i := range rs {
		if rs[i].GPU != gpus[i].Name {
			t.Errorf("rs[%d].GPU = %q, want %q", i, rs[i].GPU, gpus[i].Name)
		}
	}
}

func TestScalingPolicy_Efficiency(t *testing.T) {
	tests := []struct {
		policy ScalingPolicy
		n      int
		want   float64
	}{
		{IntraServer, 1, 1.0},
		{IntraServer, 2, 0.95},
		{IntraServer, 3, 0.92},
		{IntraServer, 8, 0.88},
		{IntraServer, 16, 0.82},
		{IntraServer, 17, 0.75},
		{Conservative, 2, 0.90},
		{Conservative, 12, 0.70},
		{Conservative, 100, 0.60},
	}
	for _, tt := range tests {
		if got := tt.policy.Efficiency(tt.n); got != tt.want {
			t.Errorf("%s.Efficiency(%d) = %v, want %v", tt.policy.Name, tt.n, got, tt.want)
		}
	}
}

func TestScalingPolicy_Validate(t *testing.T) {
	for _, p := range BuiltinPolicies {
		if err := p.Validate(); err != nil {
			t.Errorf("%s: Validate() error = %v", p.Name, err)
		}
	}
	bad := []ScalingPolicy{
		{Name: "empty", Beyond: 0.5},
		{Name: "unordered", Steps: []ScalingStep{{MaxGPUs: 4, Efficiency: 1}, {MaxGPUs: 2, Efficiency: 0.9}}, Beyond: 0.5},
		{Name: "too efficient", Steps: []ScalingStep{{MaxGPUs: 1, Efficiency: 1.2}}, Beyond: 0.5},
		{Name: "no beyond", Steps: []ScalingStep{{MaxGPUs: 1, Efficiency: 1}}},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", p.Name)
		}
	}
}

func TestPolicyByName(t *testing.T) {
	if p, err := PolicyByName(""); err != nil || p.Name != "intra-server" {
		t.Errorf("PolicyByName(\"\") = %v, %v", p.Name, err)
	}
	if p, err := PolicyByName("conservative"); err != nil || p.Name != "conservative" {
		t.Errorf("PolicyByName(conservative) = %v, %v", p.Name, err)
	}
	if _, err := PolicyByName("linear"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Precision
		wantErr bool
	}{
		{"fp16", FP16, false},
		{"FP8", FP8, false},
		{" int4 ", INT4, false},
		{"fp4", INT4, false},
		{"fp32", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrecision(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePrecision(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePrecision(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
