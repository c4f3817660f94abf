package allocation

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/territory-cli/internal/model"
)

// DealSizeRatio is the mean Enterprise ARR divided by the mean Mid Market
// ARR. Nil if either segment is empty or the Mid Market mean is zero.
func DealSizeRatio(enterprise, midMarket []model.Account) *float64 {
	if len(enterprise) == 0 || len(midMarket) == 0 {
		return nil
	}

	var entTotal, mmTotal float64
	for _, a := range enterprise {
		entTotal += a.ARR
	}
	for _, a := range midMarket {
		mmTotal += a.ARR
	}

	entMean := entTotal / float64(len(enterprise))
	mmMean := mmTotal / float64(len(midMarket))
	if mmMean == 0 {
		return nil
	}

	ratio := entMean / mmMean
	return &ratio
}

// DealSizeRatioLabel renders a ratio as "X.X:1", or "N/A" for nil.
func DealSizeRatioLabel(ratio *float64) string {
	if ratio == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f:1", *ratio)
}

// Sensitivity samples the segmentation threshold across the data's employee
// range in 1,000-employee steps (always including the exact max) and
// re-runs the full allocation at each sample, reporting segment-based
// balanced and custom fairness plus the deal size ratio. Points come back
// sorted ascending by threshold.
//
// Degenerate inputs (no accounts, no reps, or a single-step range) yield an
// empty series. Each sample is independent, so they run in parallel.
func Sensitivity(ctx context.Context, accounts []model.Account, reps []model.Rep, cfg model.AllocationConfig) ([]model.SensitivityPoint, error) {
	if len(accounts) == 0 || len(reps) == 0 {
		return nil, nil
	}

	min, max := ThresholdRange(accounts)
	if min == max {
		return nil, nil
	}

	var thresholds []int
	for t := min; t <= max; t += ThresholdStep {
		thresholds = append(thresholds, t)
	}
	if thresholds[len(thresholds)-1] != max {
		thresholds = append(thresholds, max)
	}

	points := make([]model.SensitivityPoint, len(thresholds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, threshold := range thresholds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			points[i] = samplePoint(accounts, reps, cfg, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "sensitivity: sampling cancelled")
	}

	return points, nil
}

// samplePoint runs one allocation at the given threshold with all other
// config held fixed. Nil fairness collapses to 0 here; the series feeds a
// chart, and the ratio keeps its nil-ness through the label.
func samplePoint(accounts []model.Account, reps []model.Rep, cfg model.AllocationConfig, threshold int) model.SensitivityPoint {
	runCfg := cfg
	runCfg.Threshold = threshold

	results := Allocate(accounts, reps, runCfg)
	metrics := SegmentBasedFairness(reps, results, accounts, runCfg.Weights(), runCfg.HighRiskThreshold)

	enterprise, midMarket := SegmentAccounts(accounts, threshold)
	ratio := DealSizeRatio(enterprise, midMarket)

	p := model.SensitivityPoint{
		Threshold:          threshold,
		DealSizeRatio:      ratio,
		DealSizeRatioLabel: DealSizeRatioLabel(ratio),
	}
	if metrics.BalancedComposite != nil {
		p.BalancedFairness = *metrics.BalancedComposite
	}
	if metrics.CustomComposite != nil {
		p.CustomFairness = *metrics.CustomComposite
	}
	return p
}
