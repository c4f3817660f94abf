package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/territory-cli/internal/allocation"
)

var fairnessBySegment bool

var fairnessCmd = &cobra.Command{
	Use:   "fairness",
	Short: "Score the fairness of an allocation",
	Long:  "Runs the allocation and reports 0-100 fairness scores per dimension (ARR, account count, high-risk ARR) plus weighted and balanced composites, with traffic-light color bands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reps, accounts, err := loadData(cmd)
		if err != nil {
			return err
		}
		ec := engineConfig(cmd)

		results := allocation.Allocate(accounts, reps, ec)

		metrics := allocation.Fairness(reps, results, accounts, ec.Weights(), ec.HighRiskThreshold)
		if fairnessBySegment {
			metrics = allocation.SegmentBasedFairness(reps, results, accounts, ec.Weights(), ec.HighRiskThreshold)
		}

		type scored struct {
			Score *float64 `json:"score"`
			Color string   `json:"color"`
		}
		band := func(s *float64) scored { return scored{s, allocation.FairnessColor(s)} }

		return printJSON(struct {
			ARR       scored `json:"arr_fairness"`
			Account   scored `json:"account_fairness"`
			Risk      scored `json:"risk_fairness"`
			Custom    scored `json:"custom_composite"`
			Balanced  scored `json:"balanced_composite"`
			Segmented bool   `json:"segment_based"`
		}{
			band(metrics.ARRFairness),
			band(metrics.AccountFairness),
			band(metrics.RiskFairness),
			band(metrics.CustomComposite),
			band(metrics.BalancedComposite),
			fairnessBySegment,
		})
	},
}

func init() {
	registerDataFlags(fairnessCmd)
	registerEngineFlags(fairnessCmd)
	fairnessCmd.Flags().BoolVar(&fairnessBySegment, "by-segment", false, "average per-segment fairness instead of scoring the whole book")
	rootCmd.AddCommand(fairnessCmd)
}
