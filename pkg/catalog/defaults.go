package catalog

func price(v float64) *float64 { return &v }

func rates(kv ...interface{}) RateTable {
	rt := make(RateTable, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		var v float64
		switch n := kv[i+1].(type) {
		case int:
			v = float64(n)
		case float64:
			v = n
		}
		rt = append(rt, Rate{Key: kv[i].(string), Value: v})
	}
	return rt
}

// DefaultTables returns the built-in reference data.
func DefaultTables() Tables {
	return Tables{
		LLMGPUs: []LLMGPU{
			{Name: "H100 NVL", VRAMGB: 94, HourlyCostUSD: 2.47, Provider: "CUDO"},
			{Name: "H100 SXM", VRAMGB: 80, HourlyCostUSD: 2.25, Provider: "CUDO"},
			{Name: "RTX 6000 Pro", VRAMGB: 96, HourlyCostUSD: 1.7, Provider: "CUDO"},
			{Name: "L40S", VRAMGB: 48, HourlyCostUSD: 0.87, Provider: "CUDO"},
			{Name: "A100", VRAMGB: 80, HourlyCostUSD: 1.35, Provider: "CUDO"},
		},
		LLMModels: []LLMModel{
			{
				Name: "DeepSeek V3.2-Exp", InputCostPerMTok: 0.28, OutputCostPerMTok: 0.42,
				TokensPerSecond: rates("H100 NVL", 35, "H100 SXM", 35, "RTX 6000 Pro", 18, "L40S", 14, "A100", 11),
				Context:         "128K", Notes: "Cache hit: $0.028",
			},
			{
				Name: "Qwen 3 Coder 480B", InputCostPerMTok: 0.22, OutputCostPerMTok: 0.95,
				TokensPerSecond: rates("H100 NVL", 250, "H100 SXM", 250, "RTX 6000 Pro", 125, "L40S", 100, "A100", 75),
				Context:         "256K", Notes: "Coding, MoE architecture",
			},
			{
				Name: "Qwen 3 235B", InputCostPerMTok: 0.08, OutputCostPerMTok: 0.32,
				TokensPerSecond: rates("H100 NVL", 120, "H100 SXM", 120, "RTX 6000 Pro", 60, "L40S", 48, "A100", 36),
				Context:         "128K", Notes: "Most cost efficient",
			},
			{
				Name: "Mistral Large", InputCostPerMTok: 0.27, OutputCostPerMTok: 0.81,
				TokensPerSecond: rates("H100 NVL", 80, "H100 SXM", 80, "RTX 6000 Pro", 40, "L40S", 32, "A100", 25),
				Context:         "32K", Notes: "Good all-rounder, open source",
			},
		},
		MediaGPUs: []MediaGPU{
			{Name: "H100 NVL", VRAMGB: 94, Cudo: price(2.47), RunPod: price(2.39), RunPodServerless: price(0.00116)},
			{Name: "H100 SXM", VRAMGB: 80, Cudo: price(2.25), RunPod: price(2.69)},
			{Name: "L40S", VRAMGB: 48, Cudo: price(0.87), RunPod: price(0.86), RunPodServerless: price(0.00053)},
			{Name: "A100", VRAMGB: 80, Cudo: price(1.35), RunPod: price(1.64), RunPodServerless: price(0.00076)},
			{Name: "RTX 4090", VRAMGB: 24, RunPod: price(0.69), RunPodServerless: price(0.00031)},
		},
		ImageModels: []ImageModel{
			{Name: "SDXL", BaselinePrice: 0.015, PerHourH100: 1200, PerHourL40S: 1200, PerHourA100: 1000, SecondsPerImage: 3, CompetitorKey: "sdxl"},
			{Name: "FLUX.1", BaselinePrice: 0.025, PerHourH100: 900, PerHourL40S: 900, PerHourA100: 800, SecondsPerImage: 4, CompetitorKey: "flux"},
			{Name: "Fast (Turbo)", BaselinePrice: 0.015, PerHourH100: 2400, PerHourL40S: 2400, PerHourA100: 2000, SecondsPerImage: 1.5, CompetitorKey: "turbo"},
			{Name: "Ideogram Turbo", BaselinePrice: 0.025, PerHourH100: 2400, PerHourL40S: 2400, PerHourA100: 2000, SecondsPerImage: 1.5, CompetitorKey: "turbo"},
			{Name: "Recraft V3", BaselinePrice: 0.04, PerHourH100: 1029, PerHourL40S: 1029, PerHourA100: 900, SecondsPerImage: 3.5},
		},
		VideoModels: []VideoModel{
			{Name: "SVD (Stable Video)", BaselinePrice: 0.40, SecondsPerVideo: 6.5, DurationSeconds: 4, CompetitorKey: "svd"},
			{Name: "AnimateDiff", BaselinePrice: 0.15, SecondsPerVideo: 9, DurationSeconds: 2, CompetitorKey: "animatediff"},
		},
		VoiceModels: []VoiceModel{
			{
				Name: "Whisper-v3 (OpenAI)", Category: "STT / Transcription", CompetitorPriceUSD: 0.15,
				JobsPerHour: rates("H100 NVL", 300, "H100 SXM", 200, "L40S", 133, "A100", 150),
			},
			{
				Name: "XTTS-v2 (Coqui AI)", Category: "Voice-Clone / TTS", CompetitorPriceUSD: 0.18,
				JobsPerHour: rates("H100 NVL", 120, "H100 SXM", 100, "L40S", 75, "A100", 90),
			},
			{
				Name: "Stable Audio Open 1.0 (Stability AI)", Category: "Sound Effects / Music", CompetitorPriceUSD: 0.25,
				JobsPerHour: rates("H100 NVL", 60, "H100 SXM", 20, "L40S", 10, "A100", 15),
			},
		},
		EstimatorGPUs: []EstimatorGPU{
			// Offered at a flat $1.10/hr rather than an amortized rate.
			{Name: "RTX PRO 6000 Blackwell Server", VRAMGB: 96, BandwidthTBs: 1.597, FP4TFLOPS: price(4000), PriceUSD: 13500, HourlyRateUSD: 1.10},
			{Name: "RTX 4090", VRAMGB: 24, BandwidthTBs: 1.0, FP16TFLOPS: price(83), PriceUSD: 1600, HourlyRateUSD: 0.09},
			{Name: "A100 80GB", VRAMGB: 80, BandwidthTBs: 2.04, FP16TFLOPS: price(312), PriceUSD: 15000, HourlyRateUSD: 0.40},
			{Name: "H100 80GB", VRAMGB: 80, BandwidthTBs: 3.35, FP16TFLOPS: price(989), FP8TFLOPS: price(1979), PriceUSD: 30000, HourlyRateUSD: 0.79},
			{Name: "H200 141GB", VRAMGB: 141, BandwidthTBs: 4.8, FP16TFLOPS: price(989), FP8TFLOPS: price(1979), PriceUSD: 45000, HourlyRateUSD: 1.14},
			{Name: "B200 192GB", VRAMGB: 192, BandwidthTBs: 8.0, FP16TFLOPS: price(2250), FP8TFLOPS: price(4500), FP4TFLOPS: price(9000), PriceUSD: 50000, HourlyRateUSD: 1.29},
			{Name: "B300 288GB", VRAMGB: 288, BandwidthTBs: 8.0, FP16TFLOPS: price(2250), FP8TFLOPS: price(4500), FP4TFLOPS: price(14000), PriceUSD: 55000, HourlyRateUSD: 1.41},
		},
		EstimatorModels: []EstimatorModel{
			{Name: "Kimi K2.5 (Thinking)", ParamsB: 1000, ActiveParamsB: price(32), TokensPerSecond: blackwellRates(8, 15, 25, 40, 50)},
			{Name: "Kimi K2 (Thinking)", ParamsB: 1000, ActiveParamsB: price(32), TokensPerSecond: blackwellRates(8, 15, 25, 40, 50)},
			{Name: "DeepSeek R1 (Full)", ParamsB: 671, ActiveParamsB: price(671), TokensPerSecond: blackwellRates(0, 12, 25, 45, 55)},
			{Name: "DeepSeek V3", ParamsB: 671, ActiveParamsB: price(37), TokensPerSecond: blackwellRates(0, 15, 30, 50, 65)},
			{Name: "Qwen3-235B-A22B", ParamsB: 235, ActiveParamsB: price(22), TokensPerSecond: blackwellRates(6, 40, 50, 75, 90)},
			{Name: "Qwen2.5-72B", ParamsB: 72, ActiveParamsB: price(72), TokensPerSecond: blackwellRates(18, 55, 55, 80, 100)},
			{Name: "Llama 3 8B", ParamsB: 8, ActiveParamsB: price(8), TokensPerSecond: blackwellRates(150, 90, 110, 150, 180)},
			{Name: "Llama 3.3 70B", ParamsB: 70, ActiveParamsB: price(70), TokensPerSecond: blackwellRates(22, 25, 35, 50, 65)},
			{Name: "Llama 3.1 405B", ParamsB: 405, ActiveParamsB: price(405), TokensPerSecond: blackwellRates(0, 10, 18, 30, 40)},
			{Name: "Mistral Large 3", ParamsB: 123, ActiveParamsB: price(123), TokensPerSecond: blackwellRates(10, 20, 30, 45, 55)},
		},
		Competitors: []Competitor{
			{Name: "Fal.ai", Prices: rates("sdxl", 0.015, "flux", 0.025, "turbo", 0.025, "svd", 0.40, "animatediff", 0.15)},
			{Name: "Replicate", Prices: rates("sdxl", 0.0025, "flux", 0.008, "turbo", 0.0016, "svd", 0.30, "animatediff", 0.10)},
			{Name: "Runway", Prices: rates("sdxl", 0.05, "flux", 0.08, "turbo", 0.05, "svd", 0.60, "animatediff", 0.25)},
		},
	}
}

// blackwellRates builds the estimator throughput table in the order the
// fallback relies on: RTX PRO 6000, H100, H200, B200, B300.
func blackwellRates(rtxPro, h100, h200, b200, b300 float64) RateTable {
	return rates(
		"RTX PRO 6000 Blackwell Server", rtxPro,
		"H100 80GB", h100,
		"H200 141GB", h200,
		"B200 192GB", b200,
		"B300 288GB", b300,
	)
}

// Default returns a catalog over the built-in reference data.
func Default() *Catalog {
	c, err := New(DefaultTables())
	if err != nil {
		panic("built-in catalog is invalid: " + err.Error())
	}
	return c
}
