package handler

import (
	"net/http"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/profit"
)

type CurveHandler struct {
	catalog *catalog.Catalog
	config  *config.Config
}

func NewCurveHandler(cat *catalog.Catalog, cfg *config.Config) *CurveHandler {
	return &CurveHandler{catalog: cat, config: cfg}
}

// Get returns monthly profit at every utilization for one configuration.
// Query: calculator=llm|media|voice, gpu, model, markup, and for media
// provider and kind.
func (h *CurveHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gpu, model := q.Get("gpu"), q.Get("model")
	if gpu == "" || model == "" {
		writeError(w, http.StatusBadRequest, "gpu and model are required")
		return
	}

	var (
		src profit.CurveSource
		ok  bool
	)
	switch calc := q.Get("calculator"); calc {
	case "", "llm":
		_, markup, err := sweepParams(r, h.config.LLM)
		if err != nil {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		src, ok = calculateLLMSource(h.catalog, profit.LLMInput{GPU: gpu, Model: model, UtilizationPct: 100, Markup: markup})
	case "media":
		_, markup, err := sweepParams(r, h.config.Media.CalculatorConfig)
		if err != nil {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		in := profit.MediaInput{GPU: gpu, Model: model, Kind: h.config.Media.Kind, UtilizationPct: 100, Markup: markup}
		if s := q.Get("provider"); s != "" {
			if in.Provider, err = catalog.ParseProvider(s); err != nil {
				writeError(w, http.StatusBadRequest, "%v", err)
				return
			}
		}
		if s := q.Get("kind"); s != "" {
			if in.Kind, err = catalog.ParseMediaKind(s); err != nil {
				writeError(w, http.StatusBadRequest, "%v", err)
				return
			}
		}
		src, ok = calculateMediaSource(h.catalog, in)
	case "voice":
		_, markup, err := sweepParams(r, h.config.Voice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		src, ok = calculateVoiceSource(h.catalog, profit.VoiceInput{GPU: gpu, Model: model, UtilizationPct: 100, Markup: markup})
	default:
		writeError(w, http.StatusBadRequest, "unknown calculator %q (want llm, media or voice)", calc)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no configuration for GPU %q and model %q", gpu, model)
		return
	}

	basis := src.CurveBasis()
	resp := map[string]interface{}{
		"basis":  basis,
		"points": profit.Curve(src),
	}
	if pct, ok := basis.BreakEven(); ok {
		resp["breakEvenUtilization"] = pct
	}
	writeJSON(w, http.StatusOK, resp)
}

func calculateLLMSource(cat *catalog.Catalog, in profit.LLMInput) (profit.CurveSource, bool) {
	r, ok := profit.CalculateLLM(cat, in)
	return r, ok
}

func calculateMediaSource(cat *catalog.Catalog, in profit.MediaInput) (profit.CurveSource, bool) {
	r, ok := profit.CalculateMedia(cat, in)
	return r, ok
}

func calculateVoiceSource(cat *catalog.Catalog, in profit.VoiceInput) (profit.CurveSource, bool) {
	r, ok := profit.CalculateVoice(cat, in)
	return r, ok
}
