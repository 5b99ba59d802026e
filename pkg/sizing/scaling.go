package sizing

import (
	"errors"
	"fmt"
)

// ScalingStep applies Efficiency to clusters of at most MaxGPUs GPUs.
type ScalingStep struct {
	MaxGPUs    int     `yaml:"maxGpus" json:"maxGpus"`
	Efficiency float64 `yaml:"efficiency" json:"efficiency"`
}

// ScalingPolicy maps a GPU count to the fraction of linear throughput a
// cluster of that size delivers. Steps are checked in order; counts past the
// last step get Beyond.
type ScalingPolicy struct {
	Name   string        `yaml:"name" json:"name"`
	Steps  []ScalingStep `yaml:"steps" json:"steps"`
	Beyond float64       `yaml:"beyond" json:"beyond"`
}

var (
	// IntraServer models NVLink-connected GPUs with a gentle falloff.
	IntraServer = ScalingPolicy{
		Name: "intra-server",
		Steps: []ScalingStep{
			{MaxGPUs: 1, Efficiency: 1.0},
			{MaxGPUs: 2, Efficiency: 0.95},
			{MaxGPUs: 4, Efficiency: 0.92},
			{MaxGPUs: 8, Efficiency: 0.88},
			{MaxGPUs: 16, Efficiency: 0.82},
		},
		Beyond: 0.75,
	}

	// Conservative is an illustrative steeper curve for multi-node clusters.
	Conservative = ScalingPolicy{
		Name: "conservative",
		Steps: []ScalingStep{
			{MaxGPUs: 1, Efficiency: 1.0},
			{MaxGPUs: 2, Efficiency: 0.90},
			{MaxGPUs: 4, Efficiency: 0.85},
			{MaxGPUs: 8, Efficiency: 0.80},
			{MaxGPUs: 16, Efficiency: 0.70},
		},
		Beyond: 0.60,
	}
)

// BuiltinPolicies is keyed by policy name.
var BuiltinPolicies = map[string]ScalingPolicy{
	IntraServer.Name:  IntraServer,
	Conservative.Name: Conservative,
}

// PolicyByName looks up a built-in policy. An empty name means IntraServer.
func PolicyByName(name string) (ScalingPolicy, error) {
	if name == "" {
		return IntraServer, nil
	}
	p, ok := BuiltinPolicies[name]
	if !ok {
		return ScalingPolicy{}, fmt.Errorf("unknown scaling policy %q", name)
	}
	return p, nil
}

// Efficiency returns the scaling factor for n GPUs.
func (p ScalingPolicy) Efficiency(n int) float64 {
	for _, s := range p.Steps {
		if n <= s.MaxGPUs {
			return s.Efficiency
		}
	}
	return p.Beyond
}

func (p ScalingPolicy) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New("scaling policy needs at least one step")
	}
	prev := 0
	for i, s := range p.Steps {
		if s.MaxGPUs <= prev {
			return fmt.Errorf("step %d: maxGpus must increase (got %d after %d)", i, s.MaxGPUs, prev)
		}
		if s.Efficiency <= 0 || s.Efficiency > 1 {
			return fmt.Errorf("step %d: efficiency must be in (0, 1], got %v", i, s.Efficiency)
		}
		prev = s.MaxGPUs
	}
	if p.Beyond <= 0 || p.Beyond > 1 {
		return fmt.Errorf("beyond efficiency must be in (0, 1], got %v", p.Beyond)
	}
	return nil
}
