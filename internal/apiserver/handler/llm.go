package handler

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/metrics"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
	"github.com/koptimizer/inferprofit/pkg/profit"
)

type LLMHandler struct {
	catalog *catalog.Catalog
	config  *config.Config
}

func NewLLMHandler(cat *catalog.Catalog, cfg *config.Config) *LLMHandler {
	return &LLMHandler{catalog: cat, config: cfg}
}

// List ranks every GPU x model pair.
func (h *LLMHandler) List(w http.ResponseWriter, r *http.Request) {
	util, markup, err := sweepParams(r, h.config.LLM)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	rk := profit.RankLLM(h.catalog, util, markup)
	best, _ := rk.Best()
	metrics.ObserveRanking("llm", len(rk.Configurations), rk.Excluded, best.ProfitPerMonth)
	logr.FromContextOrDiscard(r.Context()).V(1).Info("Ranked LLM configurations",
		"configurations", len(rk.Configurations), "excluded", rk.Excluded)

	writeJSON(w, http.StatusOK, rankingResponse{
		UtilizationPct: util,
		Markup:         markup,
		HighlightTop:   h.config.Ranking.HighlightTop,
		Configurations: rk.Top(top),
		Excluded:       rk.Excluded,
	})
}

// Calculate evaluates one pair. Omitted utilization and markup take the
// configured defaults.
func (h *LLMHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	in := profit.LLMInput{
		UtilizationPct: h.config.LLM.UtilizationPct,
		Markup:         h.config.LLM.Markup,
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if in.GPU == "" || in.Model == "" {
		writeError(w, http.StatusBadRequest, "gpu and model are required")
		return
	}
	in.UtilizationPct = cost.ClampUtilization(in.UtilizationPct)
	in.Markup = cost.ClampMarkup(in.Markup)

	res, ok := profit.CalculateLLM(h.catalog, in)
	metrics.ObserveCalculation("llm", ok)
	if !ok {
		writeError(w, http.StatusNotFound, "no LLM configuration for GPU %q and model %q", in.GPU, in.Model)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse(res))
}

// calculateResponse wraps a result with its break-even utilization.
func calculateResponse(res profit.CurveSource) map[string]interface{} {
	resp := map[string]interface{}{"result": res}
	if pct, ok := res.CurveBasis().BreakEven(); ok {
		resp["breakEvenUtilization"] = pct
	}
	return resp
}
