// Package cli implements the inferprofit command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/logging"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

// app is the state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	configPath string
	catalogArg string
	logLevel   string
	output     string

	cfg *config.Config
	cat *catalog.Catalog
	log logr.Logger
}

// NewCLI builds the root command with every subcommand attached.
func NewCLI() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "inferprofit",
		Short: "GPU inference profitability calculator and cluster sizer",
		Long: "inferprofit ranks GPU x model configurations by monthly profit for language, " +
			"image/video and voice inference, and sizes GPU clusters for a user population.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.catalogArg, "catalog", "", "Path to a YAML catalog (default: built-in reference data)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVarP(&a.output, "output", "o", "table", "Output format: table or json")

	root.AddCommand(
		newLLMCmd(a),
		newMediaCmd(a),
		newVoiceCmd(a),
		newEstimateCmd(a),
		newCurveCmd(a),
		newCatalogCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q (want table or json)", a.output)
	}

	cfg := config.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(a.configPath); err != nil {
			return err
		}
	}
	if a.catalogArg != "" {
		cfg.CatalogPath = a.catalogArg
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	cfg.Logging.Encoding = "console"
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return err
	}
	log.V(1).Info("Loaded catalog", "source", catalogSource(cfg.CatalogPath))

	a.cfg, a.cat, a.log = cfg, cat, log
	return nil
}

func catalogSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// emit writes v as indented JSON when --output=json and otherwise calls
// table.
func (a *app) emit(w io.Writer, v interface{}, table func()) error {
	if a.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	table()
	return nil
}

// floatFlag returns the flag's value when the user set it and def
// otherwise.
func floatFlag(cmd *cobra.Command, name string, def float64) float64 {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func intFlag(cmd *cobra.Command, name string, def int) int {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func stringFlag(cmd *cobra.Command, name, def string) string {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("utilization", "u", 0, "Utilization percentage, 1-100 (default from config)")
	cmd.Flags().Float64P("markup", "m", 0, "Price multiplier over cost, >= 1 (default from config)")
	cmd.Flags().Int("top", 0, "Show only the N most profitable configurations (0 = all)")
	cmd.Flags().String("gpu", "", "Evaluate a single GPU (requires --model)")
	cmd.Flags().String("model", "", "Evaluate a single model (requires --gpu)")
}

// sweep resolves utilization and markup against calculator defaults and
// clamps them into range.
func sweep(cmd *cobra.Command, defaults config.CalculatorConfig) (util, markup float64) {
	util = floatFlag(cmd, "utilization", defaults.UtilizationPct)
	markup = floatFlag(cmd, "markup", defaults.Markup)
	return cost.ClampUtilization(util), cost.ClampMarkup(markup)
}

// single reports whether the user asked for one configuration rather than
// a ranking.
func single(cmd *cobra.Command) (gpu, model string, ok bool, err error) {
	gpu, _ = cmd.Flags().GetString("gpu")
	model, _ = cmd.Flags().GetString("model")
	switch {
	case gpu == "" && model == "":
		return "", "", false, nil
	case gpu == "" || model == "":
		return "", "", false, fmt.Errorf("--gpu and --model must be given together")
	}
	return gpu, model, true, nil
}
