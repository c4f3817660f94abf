package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/territory-cli/internal/allocation"
)

var auditAccountID string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Explain every allocation decision",
	Long:  "Replays the allocation step by step, capturing each account's eligible reps, per-rep score breakdowns, the winner, and a plain-English reason for the pick.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reps, accounts, err := loadData(cmd)
		if err != nil {
			return err
		}
		ec := engineConfig(cmd)

		steps := allocation.AuditTrail(accounts, reps, ec)

		if auditAccountID != "" {
			for _, step := range steps {
				if step.Account.ID == auditAccountID {
					return printJSON(step)
				}
			}
			return eris.Errorf("no audit step for account %q", auditAccountID)
		}
		return printJSON(steps)
	},
}

func init() {
	registerDataFlags(auditCmd)
	registerEngineFlags(auditCmd)
	auditCmd.Flags().StringVar(&auditAccountID, "account", "", "show only the step for this account ID")
	rootCmd.AddCommand(auditCmd)
}
