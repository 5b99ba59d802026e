package handler

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/metrics"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

type EstimatorHandler struct {
	catalog *catalog.Catalog
	config  *config.Config
}

func NewEstimatorHandler(cat *catalog.Catalog, cfg *config.Config) *EstimatorHandler {
	return &EstimatorHandler{catalog: cat, config: cfg}
}

type estimateRequest struct {
	Model               string           `json:"model"`
	GPU                 string           `json:"gpu"`
	AllGPUs             bool             `json:"allGpus"`
	Users               int              `json:"users"`
	TokensPerUser       float64          `json:"tokensPerUser"`
	DailyTokensOverride float64          `json:"dailyTokensOverride"`
	WorkHours           float64          `json:"workHours"`
	PeakFactor          float64          `json:"peakFactor"`
	Precision           sizing.Precision `json:"precision"`
	ScalingPolicy       string           `json:"scalingPolicy"`
}

// Estimate sizes a cluster for one GPU, or for every GPU when allGpus is set.
func (h *EstimatorHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	d := h.config.Estimator
	req := estimateRequest{
		Model:         d.Model,
		GPU:           d.GPU,
		Users:         d.Users,
		TokensPerUser: d.TokensPerUser,
		WorkHours:     d.WorkHours,
		PeakFactor:    d.PeakFactor,
		Precision:     d.Precision,
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.Users < 0 || req.TokensPerUser < 0 || req.DailyTokensOverride < 0 {
		writeError(w, http.StatusBadRequest, "users, tokensPerUser and dailyTokensOverride must be >= 0")
		return
	}

	policy, err := d.Policy()
	if req.ScalingPolicy != "" {
		policy, err = sizing.PolicyByName(req.ScalingPolicy)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	in := sizing.Input{
		Users:               req.Users,
		TokensPerUser:       req.TokensPerUser,
		DailyTokensOverride: req.DailyTokensOverride,
		WorkHours:           req.WorkHours,
		PeakFactor:          req.PeakFactor,
		Precision:           req.Precision,
		Policy:              policy,
	}
	log := logr.FromContextOrDiscard(r.Context())

	if req.AllGPUs {
		results, err := sizing.EstimateAll(h.catalog, req.Model, in)
		if err != nil {
			writeError(w, http.StatusNotFound, "%v", err)
			return
		}
		for _, res := range results {
			metrics.ObserveEstimate(res)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
		return
	}

	res, err := sizing.EstimateByName(h.catalog, req.Model, req.GPU, in)
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	metrics.ObserveEstimate(res)
	log.V(1).Info("Sized cluster", "model", res.Model, "gpu", res.GPU,
		"finalGpus", res.FinalGPUs, "constraint", res.Constraint.String())
	writeJSON(w, http.StatusOK, res)
}
