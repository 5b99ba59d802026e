package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/koptimizer/inferprofit/pkg/cost"
)

// MaxHourlyRateUSD bounds any rental rate a catalog may carry. A rate above
// it is a data entry error (per-second serverless rates are converted first).
const MaxHourlyRateUSD = 200.0

// FallbackBonus scales the last known throughput figure when a model has no
// entry for the requested estimator GPU.
const FallbackBonus = 1.10

// Catalog holds the reference tables. It is built once at startup and never
// mutated, so a single instance can be shared across goroutines.
type Catalog struct {
	t Tables

	llmGPUs         map[string]int
	llmModels       map[string]int
	mediaGPUs       map[string]int
	imageModels     map[string]int
	videoModels     map[string]int
	voiceModels     map[string]int
	estimatorGPUs   map[string]int
	estimatorModels map[string]int
}

// ValidationError collects every problem found in a set of tables.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// New validates the tables and indexes them by name. The tables are cloned,
// so later changes by the caller do not leak into the catalog.
func New(t Tables) (*Catalog, error) {
	t = cloneTables(t)
	ve := &ValidationError{}
	c := &Catalog{
		t:               t,
		llmGPUs:         index(ve, "llmGpus", len(t.LLMGPUs), func(i int) string { return t.LLMGPUs[i].Name }),
		llmModels:       index(ve, "llmModels", len(t.LLMModels), func(i int) string { return t.LLMModels[i].Name }),
		mediaGPUs:       index(ve, "mediaGpus", len(t.MediaGPUs), func(i int) string { return t.MediaGPUs[i].Name }),
		imageModels:     index(ve, "imageModels", len(t.ImageModels), func(i int) string { return t.ImageModels[i].Name }),
		videoModels:     index(ve, "videoModels", len(t.VideoModels), func(i int) string { return t.VideoModels[i].Name }),
		voiceModels:     index(ve, "voiceModels", len(t.VoiceModels), func(i int) string { return t.VoiceModels[i].Name }),
		estimatorGPUs:   index(ve, "estimatorGpus", len(t.EstimatorGPUs), func(i int) string { return t.EstimatorGPUs[i].Name }),
		estimatorModels: index(ve, "estimatorModels", len(t.EstimatorModels), func(i int) string { return t.EstimatorModels[i].Name }),
	}
	index(ve, "competitors", len(t.Competitors), func(i int) string { return t.Competitors[i].Name })
	validate(ve, t)
	if ve.HasErrors() {
		return nil, ve
	}
	return c, nil
}

func index(ve *ValidationError, table string, n int, name func(int) string) map[string]int {
	m := make(map[string]int, n)
	for i := 0; i < n; i++ {
		k := name(i)
		if k == "" {
			ve.Add("%s[%d]: name is required", table, i)
			continue
		}
		if _, dup := m[k]; dup {
			ve.Add("%s: duplicate name %q", table, k)
			continue
		}
		m[k] = i
	}
	return m
}

func validate(ve *ValidationError, t Tables) {
	for _, g := range t.LLMGPUs {
		if g.VRAMGB <= 0 {
			ve.Add("llmGpus %q: vram must be > 0", g.Name)
		}
		if g.HourlyCostUSD < 0 || g.HourlyCostUSD > MaxHourlyRateUSD {
			ve.Add("llmGpus %q: cost must be between 0 and %g", g.Name, MaxHourlyRateUSD)
		}
	}
	for _, g := range t.MediaGPUs {
		for _, p := range Providers {
			v := mediaPrice(g, p)
			if v == nil {
				continue
			}
			hourly := *v
			if p.Serverless() {
				hourly *= cost.SecondsPerHour
			}
			if hourly < 0 || hourly > MaxHourlyRateUSD {
				ve.Add("mediaGpus %q: %s price must be between 0 and $%g/hr", g.Name, p, MaxHourlyRateUSD)
			}
		}
	}
	for _, m := range t.LLMModels {
		if m.InputCostPerMTok < 0 || m.OutputCostPerMTok < 0 {
			ve.Add("llmModels %q: token costs must be >= 0", m.Name)
		}
		checkRates(ve, "llmModels", m.Name, m.TokensPerSecond)
	}
	for _, m := range t.VideoModels {
		if m.SecondsPerVideo < 0 {
			ve.Add("videoModels %q: secPerVideo must be >= 0", m.Name)
		}
	}
	for _, m := range t.VoiceModels {
		checkRates(ve, "voiceModels", m.Name, m.JobsPerHour)
	}
	for _, g := range t.EstimatorGPUs {
		if g.VRAMGB <= 0 {
			ve.Add("estimatorGpus %q: vram must be > 0", g.Name)
		}
		if g.PriceUSD < 0 || g.HourlyRateUSD < 0 {
			ve.Add("estimatorGpus %q: price and hourlyRate must be >= 0", g.Name)
		}
	}
	for _, m := range t.EstimatorModels {
		if m.ParamsB <= 0 {
			ve.Add("estimatorModels %q: params must be > 0", m.Name)
		}
		checkRates(ve, "estimatorModels", m.Name, m.TokensPerSecond)
	}
}

func checkRates(ve *ValidationError, table, name string, rt RateTable) {
	for _, r := range rt {
		if r.Value < 0 {
			ve.Add("%s %q: rate for %q must be >= 0", table, name, r.Key)
		}
	}
}

func mediaPrice(g MediaGPU, p Provider) *float64 {
	switch p {
	case ProviderCudo:
		return g.Cudo
	case ProviderRunPod:
		return g.RunPod
	case ProviderRunPodServerless:
		return g.RunPodServerless
	}
	return nil
}

// Tables returns a deep copy of the underlying tables.
func (c *Catalog) Tables() Tables {
	return cloneTables(c.t)
}

// The list accessors return deep copies; callers may modify the result.

func (c *Catalog) LLMGPUs() []LLMGPU { return slices.Clone(c.t.LLMGPUs) }

func (c *Catalog) LLMModels() []LLMModel { return cloneEach(c.t.LLMModels, LLMModel.clone) }

func (c *Catalog) MediaGPUs() []MediaGPU { return cloneEach(c.t.MediaGPUs, MediaGPU.clone) }

func (c *Catalog) ImageModels() []ImageModel { return slices.Clone(c.t.ImageModels) }

func (c *Catalog) VideoModels() []VideoModel { return slices.Clone(c.t.VideoModels) }

func (c *Catalog) VoiceModels() []VoiceModel { return cloneEach(c.t.VoiceModels, VoiceModel.clone) }

func (c *Catalog) EstimatorGPUs() []EstimatorGPU {
	return cloneEach(c.t.EstimatorGPUs, EstimatorGPU.clone)
}

func (c *Catalog) EstimatorModels() []EstimatorModel {
	return cloneEach(c.t.EstimatorModels, EstimatorModel.clone)
}

func (c *Catalog) Competitors() []Competitor { return cloneEach(c.t.Competitors, Competitor.clone) }

// MediaModelNames lists the model names for a media kind in table order.
func (c *Catalog) MediaModelNames(kind MediaKind) []string {
	var names []string
	switch kind {
	case MediaImage:
		for _, m := range c.t.ImageModels {
			names = append(names, m.Name)
		}
	case MediaVideo:
		for _, m := range c.t.VideoModels {
			names = append(names, m.Name)
		}
	}
	return names
}

func (c *Catalog) LLMGPU(name string) (LLMGPU, bool) {
	i, ok := c.llmGPUs[name]
	if !ok {
		return LLMGPU{}, false
	}
	return c.t.LLMGPUs[i], true
}

func (c *Catalog) LLMModel(name string) (LLMModel, bool) {
	i, ok := c.llmModels[name]
	if !ok {
		return LLMModel{}, false
	}
	return c.t.LLMModels[i].clone(), true
}

func (c *Catalog) MediaGPU(name string) (MediaGPU, bool) {
	i, ok := c.mediaGPUs[name]
	if !ok {
		return MediaGPU{}, false
	}
	return c.t.MediaGPUs[i].clone(), true
}

func (c *Catalog) ImageModel(name string) (ImageModel, bool) {
	i, ok := c.imageModels[name]
	if !ok {
		return ImageModel{}, false
	}
	return c.t.ImageModels[i], true
}

func (c *Catalog) VideoModel(name string) (VideoModel, bool) {
	i, ok := c.videoModels[name]
	if !ok {
		return VideoModel{}, false
	}
	return c.t.VideoModels[i], true
}

func (c *Catalog) VoiceModel(name string) (VoiceModel, bool) {
	i, ok := c.voiceModels[name]
	if !ok {
		return VoiceModel{}, false
	}
	return c.t.VoiceModels[i].clone(), true
}

func (c *Catalog) EstimatorGPU(name string) (EstimatorGPU, bool) {
	i, ok := c.estimatorGPUs[name]
	if !ok {
		return EstimatorGPU{}, false
	}
	return c.t.EstimatorGPUs[i].clone(), true
}

func (c *Catalog) EstimatorModel(name string) (EstimatorModel, bool) {
	i, ok := c.estimatorModels[name]
	if !ok {
		return EstimatorModel{}, false
	}
	return c.t.EstimatorModels[i].clone(), true
}

// ResolveThroughput returns the tokens/sec figure a model achieves on gpu.
// When the model has no usable entry for gpu, the last entry of its table is
// taken and scaled by FallbackBonus; fallback reports that this happened.
// A model with no data at all yields zero.
//
// The last entry is documented elsewhere as the "highest-throughput" GPU but
// it is simply the last-inserted one. Tables are ordered oldest to newest
// hardware, which makes the two coincide for the built-in data.
func (m EstimatorModel) ResolveThroughput(gpu string) (tps float64, fallback bool) {
	if v, ok := m.TokensPerSecond.Get(gpu); ok && v > 0 {
		return v, false
	}
	last, ok := m.TokensPerSecond.Last()
	if !ok {
		return 0, false
	}
	return last.Value * FallbackBonus, true
}

func cloneTables(t Tables) Tables {
	return Tables{
		LLMGPUs:         slices.Clone(t.LLMGPUs),
		LLMModels:       cloneEach(t.LLMModels, LLMModel.clone),
		MediaGPUs:       cloneEach(t.MediaGPUs, MediaGPU.clone),
		ImageModels:     slices.Clone(t.ImageModels),
		VideoModels:     slices.Clone(t.VideoModels),
		VoiceModels:     cloneEach(t.VoiceModels, VoiceModel.clone),
		EstimatorGPUs:   cloneEach(t.EstimatorGPUs, EstimatorGPU.clone),
		EstimatorModels: cloneEach(t.EstimatorModels, EstimatorModel.clone),
		Competitors:     cloneEach(t.Competitors, Competitor.clone),
	}
}

func cloneEach[T any](s []T, clone func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = clone(v)
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (m LLMModel) clone() LLMModel {
	m.TokensPerSecond = slices.Clone(m.TokensPerSecond)
	return m
}

func (g MediaGPU) clone() MediaGPU {
	g.Cudo = clonePtr(g.Cudo)
	g.RunPod = clonePtr(g.RunPod)
	g.RunPodServerless = clonePtr(g.RunPodServerless)
	return g
}

func (m VoiceModel) clone() VoiceModel {
	m.JobsPerHour = slices.Clone(m.JobsPerHour)
	return m
}

func (g EstimatorGPU) clone() EstimatorGPU {
	g.FP16TFLOPS = clonePtr(g.FP16TFLOPS)
	g.FP8TFLOPS = clonePtr(g.FP8TFLOPS)
	g.FP4TFLOPS = clonePtr(g.FP4TFLOPS)
	return g
}

func (m EstimatorModel) clone() EstimatorModel {
	m.ActiveParamsB = clonePtr(m.ActiveParamsB)
	m.TokensPerSecond = slices.Clone(m.TokensPerSecond)
	return m
}

func (c Competitor) clone() Competitor {
	c.Prices = slices.Clone(c.Prices)
	return c
}
