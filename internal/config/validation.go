package config

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateDetailed performs comprehensive config validation.
func ValidateDetailed(cfg *Config) *ValidationError {
	ve := &ValidationError{}

	// Calculators
	checkCalculator(ve, "llm", cfg.LLM)
	checkCalculator(ve, "media", cfg.Media.CalculatorConfig)
	checkCalculator(ve, "voice", cfg.Voice)

	// Estimator
	if cfg.Estimator.Users < 0 {
		ve.Add("estimator.users must be >= 0")
	}
	if cfg.Estimator.TokensPerUser < 0 {
		ve.Add("estimator.tokensPerUser must be >= 0")
	}
	if cfg.Estimator.WorkHours <= 0 || cfg.Estimator.WorkHours > 24 {
		ve.Add("estimator.workHours must be between 0 and 24")
	}
	if cfg.Estimator.PeakFactor < 1 {
		ve.Add("estimator.peakFactor must be >= 1.0")
	}
	if _, err := cfg.Estimator.Policy(); err != nil {
		ve.Add(fmt.Sprintf("estimator: %v", err))
	}

	// Amortization
	if cfg.Amortization.Years < 0 {
		ve.Add("amortization.years must be >= 0")
	}
	if cfg.Amortization.OverheadPerHourUSD < 0 {
		ve.Add("amortization.overheadPerHourUSD must be >= 0")
	}

	if cfg.Ranking.HighlightTop < 0 {
		ve.Add("ranking.highlightTop must be >= 0")
	}

	// API Server
	if cfg.APIServer.Port < 1 || cfg.APIServer.Port > 65535 {
		ve.Add("apiServer.port must be between 1 and 65535")
	}
	if cfg.APIServer.ReadTimeout < 0 || cfg.APIServer.WriteTimeout < 0 || cfg.APIServer.IdleTimeout < 0 {
		ve.Add("apiServer timeouts must be >= 0")
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		ve.Add("metrics.path must start with /")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		ve.Add(fmt.Sprintf("invalid logging.level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Encoding {
	case "json", "console":
	default:
		ve.Add(fmt.Sprintf("invalid logging.encoding %q", cfg.Logging.Encoding))
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func checkCalculator(ve *ValidationError, name string, c CalculatorConfig) {
	if c.UtilizationPct < 1 || c.UtilizationPct > 100 {
		ve.Add(fmt.Sprintf("%s.utilizationPct must be between 1 and 100", name))
	}
	if c.Markup < 1 {
		ve.Add(fmt.Sprintf("%s.markup must be >= 1.0", name))
	}
}
