package handler

import (
	"net/http"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/metrics"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
	"github.com/koptimizer/inferprofit/pkg/profit"
)

type VoiceHandler struct {
	catalog *catalog.Catalog
	config  *config.Config
}

func NewVoiceHandler(cat *catalog.Catalog, cfg *config.Config) *VoiceHandler {
	return &VoiceHandler{catalog: cat, config: cfg}
}

func (h *VoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	util, markup, err := sweepParams(r, h.config.Voice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	rk := profit.RankVoice(h.catalog, util, markup)
	best, _ := rk.Best()
	metrics.ObserveRanking("voice", len(rk.Configurations), rk.Excluded, best.ProfitPerMonth)

	writeJSON(w, http.StatusOK, rankingResponse{
		UtilizationPct: util,
		Markup:         markup,
		HighlightTop:   h.config.Ranking.HighlightTop,
		Configurations: rk.Top(top),
		Excluded:       rk.Excluded,
	})
}

func (h *VoiceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	in := profit.VoiceInput{
		UtilizationPct: h.config.Voice.UtilizationPct,
		Markup:         h.config.Voice.Markup,
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

	res, ok := profit.CalculateVoice(h.catalog, in)
	metrics.ObserveCalculation("voice", ok)
	if !ok {
		writeError(w, http.StatusNotFound, "no voice configuration for GPU %q and model %q", in.GPU, in.Model)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse(res))
}
