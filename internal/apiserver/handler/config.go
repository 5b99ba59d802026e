package handler

import (
	"net/http"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

type ConfigHandler struct {
	config *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the calculator defaults the server applies to requests.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	policy, _ := h.config.Estimator.Policy()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalog": catalogSource(h.config.CatalogPath),
		"calculators": map[string]interface{}{
			"llm":   h.config.LLM,
			"media": map[string]interface{}{
				"utilizationPct": h.config.Media.UtilizationPct,
				"markup":         h.config.Media.Markup,
				"kind":           h.config.Media.Kind,
			},
			"voice": h.config.Voice,
		},
		"estimator": map[string]interface{}{
			"users":          h.config.Estimator.Users,
			"tokensPerUser":  h.config.Estimator.TokensPerUser,
			"workHours":      h.config.Estimator.WorkHours,
			"peakFactor":     h.config.Estimator.PeakFactor,
			"precision":      h.config.Estimator.Precision,
			"model":          h.config.Estimator.Model,
			"gpu":            h.config.Estimator.GPU,
			"scalingPolicy":  policy,
			"maxClusterGpus": sizing.MaxClusterGPUs,
		},
		"amortization": h.config.Amortization,
		"highlightTop": h.config.Ranking.HighlightTop,
	})
}

func catalogSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
