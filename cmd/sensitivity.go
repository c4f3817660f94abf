package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/territory-cli/internal/allocation"
	"github.com/sells-group/territory-cli/internal/model"
)

var sensitivityJSON bool

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Sweep the segmentation threshold and chart fairness",
	Long:  "Re-runs the allocation at every 1,000-employee step across the account book's employee range, reporting fairness and the Enterprise/Mid Market average deal size ratio at each threshold.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reps, accounts, err := loadData(cmd)
		if err != nil {
			return err
		}
		ec := engineConfig(cmd)

		points, err := allocation.Sensitivity(ctx, accounts, reps, ec)
		if err != nil {
			return err
		}

		if sensitivityJSON {
			return printJSON(points)
		}
		formatSensitivity(os.Stdout, points)
		return nil
	},
}

func formatSensitivity(out io.Writer, points []model.SensitivityPoint) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "THRESHOLD\tBALANCED\tCUSTOM\tDEAL_SIZE_RATIO")
	_, _ = fmt.Fprintln(w, "---------\t--------\t------\t---------------")
	for _, p := range points {
		_, _ = fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%s\n",
			p.Threshold,
			p.BalancedFairness,
			p.CustomFairness,
			p.DealSizeRatioLabel,
		)
	}
	_ = w.Flush()
}

func init() {
	registerDataFlags(sensitivityCmd)
	registerEngineFlags(sensitivityCmd)
	sensitivityCmd.Flags().BoolVar(&sensitivityJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(sensitivityCmd)
}
