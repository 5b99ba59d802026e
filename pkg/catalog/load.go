package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/koptimizer/inferprofit/pkg/cost"
)

// Parse decodes a YAML catalog document. Estimator GPUs without an
// hourlyRate get one derived from their list price with the given policy.
func Parse(data []byte, amort cost.AmortizationPolicy) (*Catalog, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	FillHourlyRates(&t, amort)
	return New(t)
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string, amort cost.AmortizationPolicy) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data, amort)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FillHourlyRates sets HourlyRateUSD on estimator GPUs that have a list
// price but no rate. Explicit rates are never overwritten.
func FillHourlyRates(t *Tables, amort cost.AmortizationPolicy) int {
	filled := 0
	for i := range t.EstimatorGPUs {
		g := &t.EstimatorGPUs[i]
		if g.HourlyRateUSD == 0 && g.PriceUSD > 0 {
			g.HourlyRateUSD = amort.HourlyRate(g.PriceUSD)
			filled++
		}
	}
	return filled
}

// Marshal encodes the catalog as a YAML document that Parse accepts.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c.Tables())
}
