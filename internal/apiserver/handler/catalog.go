package handler

import (
	"net/http"

	"github.com/koptimizer/inferprofit/pkg/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Get returns every reference table, or one of them with ?table=.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		writeJSON(w, http.StatusOK, h.catalog.Tables())
		return
	}

	c := h.catalog
	tables := map[string]func() interface{}{
		"llmGpus":         func() interface{} { return c.LLMGPUs() },
		"llmModels":       func() interface{} { return c.LLMModels() },
		"mediaGpus":       func() interface{} { return c.MediaGPUs() },
		"imageModels":     func() interface{} { return c.ImageModels() },
		"videoModels":     func() interface{} { return c.VideoModels() },
		"voiceModels":     func() interface{} { return c.VoiceModels() },
		"estimatorGpus":   func() interface{} { return c.EstimatorGPUs() },
		"estimatorModels": func() interface{} { return c.EstimatorModels() },
		"competitors":     func() interface{} { return c.Competitors() },
	}
	rows, ok := tables[table]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table %q", table)
		return
	}
	writeJSON(w, http.StatusOK, rows())
}
