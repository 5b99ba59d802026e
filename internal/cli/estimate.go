package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koptimizer/inferprofit/internal/render"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

func newEstimateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Size a GPU cluster for a user population",
		Long: "estimate computes how many GPUs a model needs to fit in memory and to serve peak " +
			"token throughput, applies the multi-GPU scaling policy and reports capex and cost " +
			"per million tokens.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := a.cfg.Estimator
			in, err := d.Input()
			if err != nil {
				return err
			}
			in.Users = intFlag(cmd, "users", in.Users)
			in.TokensPerUser = floatFlag(cmd, "tokens-per-user", in.TokensPerUser)
			in.DailyTokensOverride = floatFlag(cmd, "daily-tokens", 0)
			in.WorkHours = floatFlag(cmd, "work-hours", in.WorkHours)
			in.PeakFactor = floatFlag(cmd, "peak-factor", in.PeakFactor)
			if in.Users < 0 || in.TokensPerUser < 0 || in.DailyTokensOverride < 0 {
				return fmt.Errorf("--users, --tokens-per-user and --daily-tokens must be >= 0")
			}
			if s := stringFlag(cmd, "precision", ""); s != "" {
				if in.Precision, err = sizing.ParsePrecision(s); err != nil {
					return err
				}
			}
			if s := stringFlag(cmd, "scaling-policy", ""); s != "" {
				if in.Policy, err = sizing.PolicyByName(s); err != nil {
					return err
				}
			}

			model := stringFlag(cmd, "model", d.Model)
			out := cmd.OutOrStdout()

			if all, _ := cmd.Flags().GetBool("all-gpus"); all {
				results, err := sizing.EstimateAll(a.cat, model, in)
				if err != nil {
					return err
				}
				return a.emit(out, results, func() {
					fmt.Fprintf(out, "%s at %s, %s scaling\n\n", model, in.Precision, in.Policy.Name)
					render.Estimates(out, results)
				})
			}

			res, err := sizing.EstimateByName(a.cat, model, stringFlag(cmd, "gpu", d.GPU), in)
			if err != nil {
				return err
			}
			a.log.V(1).Info("Sized cluster", "model", res.Model, "gpu", res.GPU, "finalGpus", res.FinalGPUs)
			return a.emit(out, res, func() {
				render.Estimate(out, res)
				if res.GPUsByThroughput == sizing.MaxClusterGPUs {
					fmt.Fprintf(out, "\nThroughput search capped at %d GPUs.\n", sizing.MaxClusterGPUs)
				}
			})
		},
	}

	f := cmd.Flags()
	f.String("model", "", "Estimator model (default from config)")
	f.String("gpu", "", "Estimator GPU (default from config)")
	f.Bool("all-gpus", false, "Estimate for every GPU in the catalog")
	f.Int("users", 0, "Number of users (default from config)")
	f.Float64("tokens-per-user", 0, "Daily tokens per user (default from config)")
	f.Float64("daily-tokens", 0, "Total daily tokens, replacing users x tokens-per-user")
	f.Float64("work-hours", 0, "Hours per day the load is spread over (default from config)")
	f.Float64("peak-factor", 0, "Peak to average load ratio (default from config)")
	f.String("precision", "", "Weight precision: FP16, FP8 or INT4 (default from config)")
	f.String("scaling-policy", "", "Scaling policy: intra-server or conservative (default from config)")
	return cmd
}
