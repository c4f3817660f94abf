package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/territory-cli/internal/loader"
	"github.com/sells-group/territory-cli/internal/model"
	"github.com/sells-group/territory-cli/internal/store"
	"github.com/sells-group/territory-cli/internal/validate"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "territory.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// registerDataFlags adds the input-file flags shared by every command that
// reads rep and account data.
func registerDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("reps", "", "reps file, CSV or XLSX (default from config)")
	cmd.Flags().String("accounts", "", "accounts file, CSV or XLSX (default from config)")
	cmd.Flags().String("sheet", "", "XLSX sheet name (default first sheet)")
}

// loadData reads both input files, logs any skipped rows, and blocks on
// validation errors.
func loadData(cmd *cobra.Command) ([]model.Rep, []model.Account, error) {
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
		return nil, nil, eris.New("reps and accounts files are required (--reps/--accounts or config data.reps_path/data.accounts_path)")
	}
	opts := loader.Options{SheetName: sheet}

	reps, repErrs, err := loader.LoadReps(repsPath, opts)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "load reps %s", repsPath)
	}
	logRowErrors(repsPath, repErrs)

	accounts, accountErrs, err := loader.LoadAccounts(accountsPath, opts)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "load accounts %s", accountsPath)
	}
	logRowErrors(accountsPath, accountErrs)

	res := validate.All(reps, accounts)
	for _, w := range res.Warnings {
		zap.L().Warn("validation warning", zap.String("message", w.Message), zap.Int("row", w.Row), zap.String("column", w.Column))
	}
	if !res.Valid() {
		for _, e := range res.Errors {
			zap.L().Error("validation error", zap.String("message", e.Message), zap.Int("row", e.Row), zap.String("column", e.Column))
		}
		return nil, nil, eris.Errorf("input data failed validation with %d error(s)", len(res.Errors))
	}

	zap.L().Info("data loaded",
		zap.Int("reps", len(reps)),
		zap.Int("accounts", len(accounts)),
	)
	return reps, accounts, nil
}

func logRowErrors(path string, rowErrs []loader.RowError) {
	for _, re := range rowErrs {
		zap.L().Warn("skipped bad row",
			zap.String("file", path),
			zap.Int("row", re.Row),
			zap.String("column", re.Column),
			zap.String("message", re.Message),
		)
	}
}

// registerEngineFlags adds the allocation tuning flags. Config supplies the
// defaults; a flag set on the command line wins.
func registerEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("threshold", 0, "employee-count segmentation threshold (default from config)")
	cmd.Flags().Float64("arr-weight", 0, "ARR balance weight, 0-100 (default from config)")
	cmd.Flags().Float64("account-weight", 0, "account count balance weight, 0-100 (default from config)")
	cmd.Flags().Float64("risk-weight", 0, "high-risk ARR balance weight, 0-100 (default from config)")
	cmd.Flags().Float64("geo-bonus", 0, "geographic match bonus multiplier (default from config)")
	cmd.Flags().Float64("preserve-bonus", 0, "relationship preservation bonus multiplier (default from config)")
	cmd.Flags().Float64("high-risk-threshold", 0, "risk score at or above which an account counts as high risk (default from config)")
}

// engineConfig merges command-line flags over the configured defaults.
func engineConfig(cmd *cobra.Command) model.AllocationConfig {
	ec := cfg.Allocation.Engine()
	if cmd.Flags().Changed("threshold") {
		ec.Threshold, _ = cmd.Flags().GetInt("threshold")
	}
	if cmd.Flags().Changed("arr-weight") {
		ec.ARRWeight, _ = cmd.Flags().GetFloat64("arr-weight")
	}
	if cmd.Flags().Changed("account-weight") {
		ec.AccountWeight, _ = cmd.Flags().GetFloat64("account-weight")
	}
	if cmd.Flags().Changed("risk-weight") {
		ec.RiskWeight, _ = cmd.Flags().GetFloat64("risk-weight")
	}
	if cmd.Flags().Changed("geo-bonus") {
		ec.GeoMatchBonus, _ = cmd.Flags().GetFloat64("geo-bonus")
	}
	if cmd.Flags().Changed("preserve-bonus") {
		ec.PreserveBonus, _ = cmd.Flags().GetFloat64("preserve-bonus")
	}
	if cmd.Flags().Changed("high-risk-threshold") {
		ec.HighRiskThreshold, _ = cmd.Flags().GetFloat64("high-risk-threshold")
	}
	return ec
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
