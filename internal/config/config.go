package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

// Config is the top-level configuration shared by the CLI, the API server
// and the MCP bridge.
type Config struct {
	CatalogPath string `yaml:"catalogPath"` // empty means built-in reference data

	LLM          CalculatorConfig        `yaml:"llm"`
	Media        MediaConfig             `yaml:"media"`
	Voice        CalculatorConfig        `yaml:"voice"`
	Estimator    EstimatorConfig         `yaml:"estimator"`
	Amortization cost.AmortizationPolicy `yaml:"amortization"`
	Ranking      RankingConfig           `yaml:"ranking"`
	APIServer    APIServerConfig         `yaml:"apiServer"`
	Metrics      MetricsConfig           `yaml:"metrics"`
	Logging      LoggingConfig           `yaml:"logging"`
	MCP          MCPConfig               `yaml:"mcp"`
}

// CalculatorConfig holds the defaults a calculator uses when a request
// leaves them out.
type CalculatorConfig struct {
	UtilizationPct float64 `yaml:"utilizationPct" json:"utilizationPct"`
	Markup         float64 `yaml:"markup" json:"markup"`
}

type MediaConfig struct {
	CalculatorConfig `yaml:",inline"`
	Kind             catalog.MediaKind `yaml:"kind"`
}

type EstimatorConfig struct {
	Users         int              `yaml:"users"`
	TokensPerUser float64          `yaml:"tokensPerUser"`
	WorkHours     float64          `yaml:"workHours"`
	PeakFactor    float64          `yaml:"peakFactor"`
	Precision     sizing.Precision `yaml:"precision"`
	Model         string           `yaml:"model"`
	GPU           string           `yaml:"gpu"`
	ScalingPolicy string           `yaml:"scalingPolicy"` // "intra-server" or "conservative"
	// CustomPolicy, when set, replaces the named policy.
	CustomPolicy *sizing.ScalingPolicy `yaml:"customPolicy,omitempty"`
}

type RankingConfig struct {
	HighlightTop int `yaml:"highlightTop"`
}

type APIServerConfig struct {
	Address      string        `yaml:"address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`    // debug, info, warn, error
	Encoding    string `yaml:"encoding"` // json or console
	Development bool   `yaml:"development"`
}

type MCPConfig struct {
	APIURL string `yaml:"apiURL"`
}

// DefaultConfig returns a Config with sensible defaults.
// The catalog path and API URL can be set via INFERPROFIT_CATALOG and
// INFERPROFIT_API_URL.
func DefaultConfig() *Config {
	cfg := &Config{
		LLM: CalculatorConfig{
			UtilizationPct: 80,
			Markup:         3,
		},
		Media: MediaConfig{
			CalculatorConfig: CalculatorConfig{UtilizationPct: 70, Markup: 1.5},
			Kind:             catalog.MediaImage,
		},
		Voice: CalculatorConfig{
			UtilizationPct: 70,
			Markup:         2.5,
		},
		Estimator: EstimatorConfig{
			Users:         sizing.DefaultUsers,
			TokensPerUser: sizing.DefaultTokensPerUser,
			WorkHours:     sizing.DefaultWorkHours,
			PeakFactor:    sizing.DefaultPeakFactor,
			Precision:     sizing.FP8,
			Model:         "Llama 3.3 70B",
			GPU:           "H200 141GB",
			ScalingPolicy: sizing.IntraServer.Name,
		},
		Amortization: cost.DefaultAmortization,
		Ranking: RankingConfig{
			HighlightTop: 5,
		},
		APIServer: APIServerConfig{
			Address:      "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFromFile loads config from a YAML file, overlaying on defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides fills in empty fields from environment variables.
// INFERPROFIT_LOG_LEVEL and INFERPROFIT_PORT always win when set.
func (c *Config) applyEnvOverrides() {
	if c.CatalogPath == "" {
		c.CatalogPath = os.Getenv("INFERPROFIT_CATALOG")
	}
	if c.MCP.APIURL == "" {
		if v := os.Getenv("INFERPROFIT_API_URL"); v != "" {
			c.MCP.APIURL = v
		} else {
			c.MCP.APIURL = "http://localhost:8080"
		}
	}
	if v := os.Getenv("INFERPROFIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("INFERPROFIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIServer.Port = port
		}
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	for _, calc := range []struct {
		name string
		cfg  CalculatorConfig
	}{
		{"llm", c.LLM},
		{"media", c.Media.CalculatorConfig},
		{"voice", c.Voice},
	} {
		if calc.cfg.UtilizationPct < 1 || calc.cfg.UtilizationPct > 100 {
			return fmt.Errorf("%s.utilizationPct must be between 1 and 100, got %.1f", calc.name, calc.cfg.UtilizationPct)
		}
		if calc.cfg.Markup < 1 {
			return fmt.Errorf("%s.markup must be >= 1.0, got %.2f", calc.name, calc.cfg.Markup)
		}
	}

	if _, err := c.Estimator.Policy(); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}

	if c.APIServer.Port < 1 || c.APIServer.Port > 65535 {
		return fmt.Errorf("apiServer.port must be between 1 and 65535, got %d", c.APIServer.Port)
	}

	return nil
}

// ValidateDetailed runs Validate and then the checks that collect every
// problem at once.
func (c *Config) ValidateDetailed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if ve := ValidateDetailed(c); ve != nil {
		return ve
	}
	return nil
}

// Policy resolves the scaling policy the estimator should use.
func (e EstimatorConfig) Policy() (sizing.ScalingPolicy, error) {
	if e.CustomPolicy != nil {
		p := *e.CustomPolicy
		if p.Name == "" {
			p.Name = "custom"
		}
		if err := p.Validate(); err != nil {
			return sizing.ScalingPolicy{}, fmt.Errorf("custom scaling policy: %w", err)
		}
		return p, nil
	}
	return sizing.PolicyByName(e.ScalingPolicy)
}

// Input builds the estimator input these defaults describe.
func (e EstimatorConfig) Input() (sizing.Input, error) {
	p, err := e.Policy()
	if err != nil {
		return sizing.Input{}, err
	}
	return sizing.Input{
		Users:         e.Users,
		TokensPerUser: e.TokensPerUser,
		WorkHours:     e.WorkHours,
		PeakFactor:    e.PeakFactor,
		Precision:     e.Precision,
		Policy:        p,
	}, nil
}

// LoadCatalog returns the configured reference data, or the built-in tables
// when no catalog file is set.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(c.CatalogPath, c.Amortization)
}
