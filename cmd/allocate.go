package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/territory-cli/internal/allocation"
	"github.com/sells-group/territory-cli/internal/export"
	"github.com/sells-group/territory-cli/internal/model"
)

var (
	allocateOutput string
	allocateSave   bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run the allocation and report fairness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reps, accounts, err := loadData(cmd)
		if err != nil {
			return err
		}
		ec := engineConfig(cmd)

		results := allocation.Allocate(accounts, reps, ec)
		fairness := allocation.Fairness(reps, results, accounts, ec.Weights(), ec.HighRiskThreshold)

		zap.L().Info("allocation complete",
			zap.Int("assigned", len(results)),
			zap.Int("threshold", ec.Threshold),
		)

		if allocateSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}

			saved, err := st.CreateRun(ctx, model.Run{
				Config:       ec,
				RepCount:     len(reps),
				AccountCount: len(accounts),
				Results:      results,
				Fairness:     fairness,
			})
			if err != nil {
				return eris.Wrap(err, "save run")
			}
			zap.L().Info("run saved", zap.String("run_id", saved.ID))
		}

		if allocateOutput != "" {
			path := allocateOutput
			if path == "auto" {
				path = export.DefaultFilename(time.Now())
			}
			f, err := os.Create(path)
			if err != nil {
				return eris.Wrapf(err, "create %s", path)
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteResults(f, accounts, results); err != nil {
				return err
			}
			zap.L().Info("results exported", zap.String("path", path))
		}

		return printJSON(struct {
			Results  []model.AllocationResult `json:"results"`
			Fairness model.FairnessMetrics    `json:"fairness"`
		}{results, fairness})
	},
}

func init() {
	registerDataFlags(allocateCmd)
	registerEngineFlags(allocateCmd)
	allocateCmd.Flags().StringVar(&allocateOutput, "output", "", `export results CSV to this path ("auto" for territory-allocation-<date>.csv)`)
	allocateCmd.Flags().BoolVar(&allocateSave, "save", false, "persist the run to the store")
	rootCmd.AddCommand(allocateCmd)
}
