package catalog

import (
	"fmt"
	"strings"
)

// Provider is a GPU rental offering for image/video workloads. The set is
// closed: two flat-rate providers and one serverless provider.
type Provider int

const (
	// ProviderCudo bills a flat hourly rental.
	ProviderCudo Provider = iota
	// ProviderRunPod bills a flat hourly rental.
	ProviderRunPod
	// ProviderRunPodServerless bills per second of active generation.
	ProviderRunPodServerless
)

// Providers lists every provider in enumeration order.
var Providers = []Provider{ProviderCudo, ProviderRunPod, ProviderRunPodServerless}

func (p Provider) String() string {
	switch p {
	case ProviderCudo:
		return "cudo"
	case ProviderRunPod:
		return "runpod"
	case ProviderRunPodServerless:
		return "runpod_serverless"
	}
	return fmt.Sprintf("provider(%d)", int(p))
}

// Serverless reports whether GPU cost accrues only while generating.
func (p Provider) Serverless() bool {
	switch p {
	case ProviderRunPodServerless:
		return true
	case ProviderCudo, ProviderRunPod:
		return false
	}
	return false
}

// ParseProvider accepts the provider names used in config files and requests.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cudo", "flat-rate-a":
		return ProviderCudo, nil
	case "runpod", "flat-rate-b":
		return ProviderRunPod, nil
	case "runpod_serverless", "runpod-serverless", "serverless":
		return ProviderRunPodServerless, nil
	}
	return 0, fmt.Errorf("unknown provider %q: must be cudo, runpod, or runpod_serverless", s)
}

func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Provider) UnmarshalText(b []byte) error {
	v, err := ParseProvider(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MediaKind selects between the image and video model tables.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Unit is the display name of one generated item.
func (k MediaKind) Unit() string {
	if k == MediaVideo {
		return "video"
	}
	return "image"
}

func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "images", "":
		return MediaImage, nil
	case "video", "videos":
		return MediaVideo, nil
	}
	return 0, fmt.Errorf("unknown media kind %q: must be image or video", s)
}

func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MediaKind) UnmarshalText(b []byte) error {
	v, err := ParseMediaKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// LLMGPU is a rentable GPU used by the language-model and voice calculators.
type LLMGPU struct {
	Name          string  `yaml:"name" json:"name"`
	VRAMGB        float64 `yaml:"vram" json:"vramGB"`
	HourlyCostUSD float64 `yaml:"cost" json:"hourlyCostUSD"`
	Provider      string  `yaml:"provider" json:"provider"`
}

// MediaGPU carries up to three price points. A nil price means the provider
// has no offering for this GPU.
type MediaGPU struct {
	Name   string   `yaml:"name" json:"name"`
	VRAMGB float64  `yaml:"vram" json:"vramGB"`
	Cudo   *float64 `yaml:"cudo" json:"cudo"`
	RunPod *float64 `yaml:"runpod" json:"runpod"`
	// RunPodServerless is a per-second rate.
	RunPodServerless *float64 `yaml:"runpodServerless" json:"runpodServerless"`
}

// Price returns the raw stored rate for a provider, or false when the
// provider does not offer this GPU. Serverless rates are per second.
func (g MediaGPU) Price(p Provider) (float64, bool) {
	var v *float64
	switch p {
	case ProviderCudo:
		v = g.Cudo
	case ProviderRunPod:
		v = g.RunPod
	case ProviderRunPodServerless:
		v = g.RunPodServerless
	}
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

type LLMModel struct {
	Name string `yaml:"name" json:"name"`
	// InputCostPerMTok and OutputCostPerMTok are base costs in $ per 1M tokens.
	InputCostPerMTok  float64   `yaml:"input" json:"inputCostPerMTok"`
	OutputCostPerMTok float64   `yaml:"output" json:"outputCostPerMTok"`
	TokensPerSecond   RateTable `yaml:"tps" json:"tokensPerSecond"`
	Context           string    `yaml:"context" json:"context"`
	Notes             string    `yaml:"notes" json:"notes"`
}

// ImageModel throughput figures are images per hour at 100% utilization for
// each hardware tier.
type ImageModel struct {
	Name            string  `yaml:"name" json:"name"`
	BaselinePrice   float64 `yaml:"falPrice" json:"baselinePrice"`
	PerHourH100     float64 `yaml:"tpsH100" json:"perHourH100"`
	PerHourL40S     float64 `yaml:"tpsL40S" json:"perHourL40S"`
	PerHourA100     float64 `yaml:"tpsA100" json:"perHourA100"`
	SecondsPerImage float64 `yaml:"secPerImage" json:"secondsPerImage"`
	CompetitorKey   string  `yaml:"competitorKey" json:"competitorKey,omitempty"`
}

type VideoModel struct {
	Name            string  `yaml:"name" json:"name"`
	BaselinePrice   float64 `yaml:"falPrice" json:"baselinePrice"`
	SecondsPerVideo float64 `yaml:"secPerVideo" json:"secondsPerVideo"`
	DurationSeconds float64 `yaml:"durationSec" json:"durationSeconds"`
	CompetitorKey   string  `yaml:"competitorKey" json:"competitorKey,omitempty"`
}

type VoiceModel struct {
	Name               string    `yaml:"name" json:"name"`
	Category           string    `yaml:"category" json:"category"`
	CompetitorPriceUSD float64   `yaml:"competitorPrice" json:"competitorPriceUSD"`
	JobsPerHour        RateTable `yaml:"jobsPerHour" json:"jobsPerHour"`
}

// EstimatorGPU is owned hardware for cluster sizing. HourlyRateUSD is an
// amortized figure supplied with the table, not computed by the estimator.
type EstimatorGPU struct {
	Name          string   `yaml:"name" json:"name"`
	VRAMGB        float64  `yaml:"vram" json:"vramGB"`
	BandwidthTBs  float64  `yaml:"bandwidth" json:"bandwidthTBs"`
	FP16TFLOPS    *float64 `yaml:"fp16,omitempty" json:"fp16TFLOPS,omitempty"`
	FP8TFLOPS     *float64 `yaml:"fp8,omitempty" json:"fp8TFLOPS,omitempty"`
	FP4TFLOPS     *float64 `yaml:"fp4,omitempty" json:"fp4TFLOPS,omitempty"`
	PriceUSD      float64  `yaml:"price" json:"priceUSD"`
	HourlyRateUSD float64  `yaml:"hourlyRate" json:"hourlyRateUSD"`
}

type EstimatorModel struct {
	Name string `yaml:"name" json:"name"`
	// ParamsB is the total parameter count in billions.
	ParamsB float64 `yaml:"params" json:"paramsB"`
	// ActiveParamsB is set for mixture-of-experts models.
	ActiveParamsB   *float64  `yaml:"activeParams,omitempty" json:"activeParamsB,omitempty"`
	TokensPerSecond RateTable `yaml:"tps" json:"tokensPerSecond"`
}

// Competitor is one entry of the competitor price sheet, keyed by model
// competitor key (sdxl, flux, turbo, svd, animatediff).
type Competitor struct {
	Name   string    `yaml:"name" json:"name"`
	Prices RateTable `yaml:"prices" json:"prices"`
}

// Tables is the serializable form of a catalog.
type Tables struct {
	LLMGPUs         []LLMGPU         `yaml:"llmGpus" json:"llmGpus"`
	LLMModels       []LLMModel       `yaml:"llmModels" json:"llmModels"`
	MediaGPUs       []MediaGPU       `yaml:"mediaGpus" json:"mediaGpus"`
	ImageModels     []ImageModel     `yaml:"imageModels" json:"imageModels"`
	VideoModels     []VideoModel     `yaml:"videoModels" json:"videoModels"`
	VoiceModels     []VoiceModel     `yaml:"voiceModels" json:"voiceModels"`
	EstimatorGPUs   []EstimatorGPU   `yaml:"estimatorGpus" json:"estimatorGpus"`
	EstimatorModels []EstimatorModel `yaml:"estimatorModels" json:"estimatorModels"`
	Competitors     []Competitor     `yaml:"competitors" json:"competitors"`
}
