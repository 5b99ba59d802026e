package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/koptimizer/inferprofit/internal/render"
	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
	"github.com/koptimizer/inferprofit/pkg/profit"
)

func newLLMCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Rank GPU x language model pairs by monthly profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			util, markup := sweep(cmd, a.cfg.LLM)
			out := cmd.OutOrStdout()

			gpu, model, one, err := single(cmd)
			if err != nil {
				return err
			}
			if one {
				in := profit.LLMInput{GPU: gpu, Model: model, UtilizationPct: util, Markup: markup}
				if cmd.Flags().Changed("input-cost") {
					v, _ := cmd.Flags().GetFloat64("input-cost")
					in.InputCostOverride = &v
				}
				if cmd.Flags().Changed("output-cost") {
					v, _ := cmd.Flags().GetFloat64("output-cost")
					in.OutputCostOverride = &v
				}
				res, ok := profit.CalculateLLM(a.cat, in)
				if !ok {
					return fmt.Errorf("no LLM configuration for GPU %q and model %q", gpu, model)
				}
				return a.emit(out, res, func() {
					render.LLM(out, []profit.LLMResult{res}, 0)
					printBreakEven(out, res)
				})
			}

			rk := profit.RankLLM(a.cat, util, markup)
			a.log.V(1).Info("Ranked LLM configurations", "configurations", len(rk.Configurations), "excluded", rk.Excluded)
			return a.emit(out, rk, func() {
				render.LLM(out, rk.Top(intFlag(cmd, "top", 0)), a.cfg.Ranking.HighlightTop)
				printExcluded(out, rk.Excluded)
			})
		},
	}
	addSweepFlags(cmd)
	cmd.Flags().Float64("input-cost", 0, "Override the model's input cost per 1M tokens (single pair only)")
	cmd.Flags().Float64("output-cost", 0, "Override the model's output cost per 1M tokens (single pair only)")
	return cmd
}

func newMediaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Rank GPU x provider x image or video model by monthly profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			util, markup := sweep(cmd, a.cfg.Media.CalculatorConfig)
			out := cmd.OutOrStdout()

			kind := a.cfg.Media.Kind
			if s := stringFlag(cmd, "kind", ""); s != "" {
				var err error
				if kind, err = catalog.ParseMediaKind(s); err != nil {
					return err
				}
			}

			gpu, model, one, err := single(cmd)
			if err != nil {
				return err
			}
			if one {
				in := profit.MediaInput{GPU: gpu, Model: model, Kind: kind, UtilizationPct: util, Markup: markup}
				if s := stringFlag(cmd, "provider", ""); s != "" {
					if in.Provider, err = catalog.ParseProvider(s); err != nil {
						return err
					}
				}
				res, ok := profit.CalculateMedia(a.cat, in)
				if !ok {
					return fmt.Errorf("no %s configuration for GPU %q, model %q and provider %s", kind, gpu, model, in.Provider)
				}
				quotes := profit.CompareCompetitors(a.cat, res.CompetitorKey, res.PricePerUnit)
				body := map[string]interface{}{"result": res, "competitors": quotes}
				return a.emit(out, body, func() {
					render.Media(out, []profit.MediaResult{res}, 0)
					if res.BilledProvider != res.Provider {
						fmt.Fprintf(out, "\nBilled at %s rates: %s does not offer %s.\n", res.BilledProvider, res.Provider, res.GPU)
					}
					printBreakEven(out, res)
					if len(quotes) > 0 {
						fmt.Fprintln(out)
						render.Competitors(out, quotes)
					}
				})
			}

			rk := profit.RankMedia(a.cat, kind, util, markup)
			a.log.V(1).Info("Ranked media configurations", "kind", kind.String(), "configurations", len(rk.Configurations))
			return a.emit(out, rk, func() {
				render.Media(out, rk.Top(intFlag(cmd, "top", 0)), a.cfg.Ranking.HighlightTop)
				printExcluded(out, rk.Excluded)
			})
		},
	}
	addSweepFlags(cmd)
	cmd.Flags().String("kind", "", "Model table: image or video (default from config)")
	cmd.Flags().String("provider", "", "GPU provider for a single configuration: cudo, runpod or runpod_serverless")
	return cmd
}

func newVoiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Rank GPU x voice model pairs by monthly profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			util, markup := sweep(cmd, a.cfg.Voice)
			out := cmd.OutOrStdout()

			gpu, model, one, err := single(cmd)
			if err != nil {
				return err
			}
			if one {
				res, ok := profit.CalculateVoice(a.cat, profit.VoiceInput{GPU: gpu, Model: model, UtilizationPct: util, Markup: markup})
				if !ok {
					return fmt.Errorf("no voice configuration for GPU %q and model %q", gpu, model)
				}
				return a.emit(out, res, func() {
					render.Voice(out, []profit.VoiceResult{res}, 0)
					printBreakEven(out, res)
				})
			}

			rk := profit.RankVoice(a.cat, util, markup)
			return a.emit(out, rk, func() {
				render.Voice(out, rk.Top(intFlag(cmd, "top", 0)), a.cfg.Ranking.HighlightTop)
				printExcluded(out, rk.Excluded)
			})
		},
	}
	addSweepFlags(cmd)
	return cmd
}

func newCurveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Show monthly profit across utilization for one configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gpu, model, one, err := single(cmd)
			if err != nil {
				return err
			}
			if !one {
				return fmt.Errorf("--gpu and --model are required")
			}

			var (
				src profit.CurveSource
				ok  bool
			)
			switch calc := stringFlag(cmd, "calculator", "llm"); calc {
			case "llm":
				markup := cost.ClampMarkup(floatFlag(cmd, "markup", a.cfg.LLM.Markup))
				src, ok = asSource(profit.CalculateLLM(a.cat, profit.LLMInput{GPU: gpu, Model: model, UtilizationPct: 100, Markup: markup}))
			case "media":
				markup := cost.ClampMarkup(floatFlag(cmd, "markup", a.cfg.Media.Markup))
				in := profit.MediaInput{GPU: gpu, Model: model, Kind: a.cfg.Media.Kind, UtilizationPct: 100, Markup: markup}
				if s := stringFlag(cmd, "provider", ""); s != "" {
					if in.Provider, err = catalog.ParseProvider(s); err != nil {
						return err
					}
				}
				if s := stringFlag(cmd, "kind", ""); s != "" {
					if in.Kind, err = catalog.ParseMediaKind(s); err != nil {
						return err
					}
				}
				src, ok = asSource(profit.CalculateMedia(a.cat, in))
			case "voice":
				markup := cost.ClampMarkup(floatFlag(cmd, "markup", a.cfg.Voice.Markup))
				src, ok = asSource(profit.CalculateVoice(a.cat, profit.VoiceInput{GPU: gpu, Model: model, UtilizationPct: 100, Markup: markup}))
			default:
				return fmt.Errorf("unknown calculator %q (want llm, media or voice)", calc)
			}
			if !ok {
				return fmt.Errorf("no configuration for GPU %q and model %q", gpu, model)
			}

			points := profit.Curve(src)
			out := cmd.OutOrStdout()
			body := map[string]interface{}{"basis": src.CurveBasis(), "points": points}
			return a.emit(out, body, func() {
				render.Curve(out, points, intFlag(cmd, "step", 10))
				printBreakEven(out, src)
			})
		},
	}
	cmd.Flags().String("calculator", "llm", "Calculator: llm, media or voice")
	cmd.Flags().String("gpu", "", "GPU name")
	cmd.Flags().String("model", "", "Model name")
	cmd.Flags().Float64P("markup", "m", 0, "Price multiplier over cost (default from config)")
	cmd.Flags().String("provider", "", "Media GPU provider")
	cmd.Flags().String("kind", "", "Media model table: image or video")
	cmd.Flags().Int("step", 10, "Show every Nth utilization point")
	return cmd
}

// asSource adapts a calculator's (result, ok) pair to a curve source.
func asSource[T profit.CurveSource](res T, ok bool) (profit.CurveSource, bool) {
	return res, ok
}

func printBreakEven(w io.Writer, src profit.CurveSource) {
	if pct, ok := src.CurveBasis().BreakEven(); ok {
		fmt.Fprintf(w, "\nBreak-even utilization: %.1f%%\n", pct)
		return
	}
	fmt.Fprintln(w, "\nNever profitable at this markup.")
}

func printExcluded(w io.Writer, n int) {
	if n > 0 {
		fmt.Fprintf(w, "\n%d combinations skipped for missing price or throughput data.\n", n)
	}
}
