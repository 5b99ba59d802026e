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

type MediaHandler struct {
	catalog *catalog.Catalog
	config  *config.Config
}

func NewMediaHandler(cat *catalog.Catalog, cfg *config.Config) *MediaHandler {
	return &MediaHandler{catalog: cat, config: cfg}
}

// List ranks every GPU x model x provider triple for one media kind
// (?kind=image|video, default from config).
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	util, markup, err := sweepParams(r, h.config.Media.CalculatorConfig)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	kind := h.config.Media.Kind
	if s := r.URL.Query().Get("kind"); s != "" {
		if kind, err = catalog.ParseMediaKind(s); err != nil {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
	}

	rk := profit.RankMedia(h.catalog, kind, util, markup)
	best, _ := rk.Best()
	metrics.ObserveRanking("media_"+kind.String(), len(rk.Configurations), rk.Excluded, best.ProfitPerMonth)
	logr.FromContextOrDiscard(r.Context()).V(1).Info("Ranked media configurations",
		"kind", kind.String(), "configurations", len(rk.Configurations), "excluded", rk.Excluded)

	writeJSON(w, http.StatusOK, rankingResponse{
		Kind:           kind.String(),
		UtilizationPct: util,
		Markup:         markup,
		HighlightTop:   h.config.Ranking.HighlightTop,
		Configurations: rk.Top(top),
		Excluded:       rk.Excluded,
	})
}

// Calculate evaluates one triple and attaches the competitor comparison for
// the model's competitor key.
func (h *MediaHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	in := profit.MediaInput{
		Kind:           h.config.Media.Kind,
		UtilizationPct: h.config.Media.UtilizationPct,
		Markup:         h.config.Media.Markup,
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

	res, ok := profit.CalculateMedia(h.catalog, in)
	metrics.ObserveCalculation("media_"+in.Kind.String(), ok)
	if !ok {
		writeError(w, http.StatusNotFound, "no %s configuration for GPU %q, model %q and provider %s",
			in.Kind, in.GPU, in.Model, in.Provider)
		return
	}

	resp := calculateResponse(res)
	if quotes := profit.CompareCompetitors(h.catalog, res.CompetitorKey, res.PricePerUnit); len(quotes) > 0 {
		resp["competitors"] = quotes
	}
	writeJSON(w, http.StatusOK, resp)
}
