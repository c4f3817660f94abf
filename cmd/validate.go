package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/territory-cli/internal/loader"
	"github.com/sells-group/territory-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check input files without allocating",
	Long:  "Parses the rep and account files and reports every parse failure, duplicate, out-of-range value, and consistency warning as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		repsPath, _ := cmd.Flags().GetString("reps")
		if repsPath == "" {
			repsPath = cfg.Data.RepsPath
		}
		accountsPath, _ := cmd.Flags().GetString("accounts")
		if accountsPath == "" {
			accountsPath = cfg.Data.AccountsPath
		}
		sheet, _ := cmd.Flags().GetString("sheet")
		if sheet == "" {
			sheet = cfg.Data.SheetName
		}
		if repsPath == "" || accountsPath == "" {
			return eris.New("reps and accounts files are required (--reps/--accounts or config data.reps_path/data.accounts_path)")
		}
		opts := loader.Options{SheetName: sheet}

		reps, repRowErrs, err := loader.LoadReps(repsPath, opts)
		if err != nil {
			return eris.Wrapf(err, "load reps %s", repsPath)
		}
		accounts, accountRowErrs, err := loader.LoadAccounts(accountsPath, opts)
		if err != nil {
			return eris.Wrapf(err, "load accounts %s", accountsPath)
		}

		res := validate.All(reps, accounts)

		report := struct {
			RepRowErrors     []loader.RowError `json:"rep_row_errors"`
			AccountRowErrors []loader.RowError `json:"account_row_errors"`
			Errors           []validate.Issue  `json:"errors"`
			Warnings         []validate.Issue  `json:"warnings"`
			Valid            bool              `json:"valid"`
		}{repRowErrs, accountRowErrs, res.Errors, res.Warnings, res.Valid() && len(repRowErrs) == 0 && len(accountRowErrs) == 0}

		if err := printJSON(report); err != nil {
			return err
		}
		if !report.Valid {
			return eris.New("validation failed")
		}
		return nil
	},
}

func init() {
	registerDataFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
