package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

// maxBodyBytes bounds request bodies; every request type is a handful of
// scalar fields.
const maxBodyBytes = 1 << 20

// writeJSON is a shared helper for all handlers.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// decodeJSON decodes the request body into v. An empty body leaves v as is
// so callers can pre-fill defaults.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.New("invalid request")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %v", err)
	}
	return nil
}

// floatParam reads an optional numeric query parameter.
func floatParam(r *http.Request, name string, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s: %q is not a number", name, s)
	}
	return v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query parameter %s: %q is not a non-negative integer", name, s)
	}
	return v, nil
}

// sweepParams reads utilization and markup with calculator defaults and
// clamps them into range.
func sweepParams(r *http.Request, defaults config.CalculatorConfig) (util, markup float64, err error) {
	util, err = floatParam(r, "utilization", defaults.UtilizationPct)
	if err != nil {
		return 0, 0, err
	}
	markup, err = floatParam(r, "markup", defaults.Markup)
	if err != nil {
		return 0, 0, err
	}
	return cost.ClampUtilization(util), cost.ClampMarkup(markup), nil
}

// rankingResponse is the body of every GET .../configurations endpoint.
type rankingResponse struct {
	Kind           string      `json:"kind,omitempty"`
	UtilizationPct float64     `json:"utilization"`
	Markup         float64     `json:"markup"`
	HighlightTop   int         `json:"highlightTop"`
	Configurations interface{} `json:"configurations"`
	Excluded       int         `json:"excluded"`
}
