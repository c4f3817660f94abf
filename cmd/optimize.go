package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/territory-cli/internal/allocation"
)

var (
	optimizeEnterpriseCap float64
	optimizeMidMarketCap  float64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for the fairest weight split",
	Long:  "Brute-forces every integer ARR/account/risk weight combination summing to 100 and recommends the one with the highest balanced fairness. Optional caps reject combinations whose per-segment ARR max/min ratio is too lopsided.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reps, accounts, err := loadData(cmd)
		if err != nil {
			return err
		}
		ec := engineConfig(cmd)

		var opts allocation.OptimizeOptions
		if cmd.Flags().Changed("enterprise-cap") {
			opts.EnterpriseCap = &optimizeEnterpriseCap
		}
		if cmd.Flags().Changed("midmarket-cap") {
			opts.MidMarketCap = &optimizeMidMarketCap
		}

		result, err := allocation.OptimizeWeights(ctx, accounts, reps, ec.Threshold, ec.GeoMatchBonus, ec.PreserveBonus, ec.HighRiskThreshold, opts)
		if err != nil {
			return err
		}

		zap.L().Info("optimization complete",
			zap.Int("arr_weight", result.ARRWeight),
			zap.Int("account_weight", result.AccountWeight),
			zap.Int("risk_weight", result.RiskWeight),
			zap.Bool("constraints_met", result.ConstraintsMet),
		)
		return printJSON(result)
	},
}

func init() {
	registerDataFlags(optimizeCmd)
	registerEngineFlags(optimizeCmd)
	optimizeCmd.Flags().Float64Var(&optimizeEnterpriseCap, "enterprise-cap", 0, "max allowed Enterprise ARR max/min ratio across reps")
	optimizeCmd.Flags().Float64Var(&optimizeMidMarketCap, "midmarket-cap", 0, "max allowed Mid Market ARR max/min ratio across reps")
	rootCmd.AddCommand(optimizeCmd)
}
