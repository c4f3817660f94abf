package allocation

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/territory-cli/internal/model"
)

// OptimizeOptions carries the optional segment ARR max/min ratio caps. When
// a cap is set, only weight candidates whose post-allocation ratio stays at
// or under it are considered feasible.
type OptimizeOptions struct {
	EnterpriseCap *float64
	MidMarketCap  *float64
}

// candidate is one weight triple with its score and cap ratios.
type candidate struct {
	arrWeight     int
	accountWeight int
	riskWeight    int
	balancedScore float64
	entRatio      *float64
	mmRatio       *float64
}

// stripeResult is the reduction of one arrWeight stripe of the search space.
type stripeResult struct {
	best     *candidate
	feasible *candidate
}

// OptimizeWeights brute-forces every integer weight triple summing to 100
// (about 5,050 combinations), runs a full allocation for each, and returns
// the triple with the highest segment-based balanced fairness. Ties keep
// the first candidate in search order (ascending arrWeight, then ascending
// accountWeight). When no account carries a risk score, triples with a
// nonzero risk weight are skipped entirely.
//
// Each triple is independent, so stripes of the search space run in
// parallel across cores; the reduction is performed in search order to
// keep the result deterministic.
func OptimizeWeights(ctx context.Context, accounts []model.Account, reps []model.Rep, threshold int, geoMatchBonus, preserveBonus, highRiskThreshold float64, opts OptimizeOptions) (model.OptimizationResult, error) {
	hasRisk := model.AnyRiskScore(accounts)
	capped := opts.EnterpriseCap != nil || opts.MidMarketCap != nil

	stripes := make([]stripeResult, 101)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for arrWeight := 0; arrWeight <= 100; arrWeight++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stripes[arrWeight] = searchStripe(accounts, reps, threshold, geoMatchBonus, preserveBonus, highRiskThreshold, arrWeight, hasRisk, capped, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.OptimizationResult{}, eris.Wrap(err, "optimizer: search cancelled")
	}

	// Reduce in ascending arrWeight order so that equal scores keep the
	// first candidate found, exactly as a sequential scan would.
	best := fallbackCandidate(hasRisk)
	var feasible *candidate
	for _, s := range stripes {
		if s.best != nil && s.best.balancedScore > best.balancedScore {
			best = *s.best
		}
		if s.feasible != nil && (feasible == nil || s.feasible.balancedScore > feasible.balancedScore) {
			feasible = s.feasible
		}
	}

	use := best
	constraintsMet := true
	if capped {
		if feasible != nil {
			use = *feasible
		} else {
			constraintsMet = false
		}
	}

	return model.OptimizationResult{
		ARRWeight:      use.arrWeight,
		AccountWeight:  use.accountWeight,
		RiskWeight:     use.riskWeight,
		BalancedScore:  use.balancedScore,
		ConstraintsMet: constraintsMet,
	}, nil
}

// fallbackCandidate is returned when no candidate beats a score of 0. With
// risk data absent the risk dimension is locked to zero, mirroring the
// 50/50 split the weight sliders collapse to.
func fallbackCandidate(hasRisk bool) candidate {
	if !hasRisk {
		return candidate{arrWeight: 50, accountWeight: 50, riskWeight: 0}
	}
	return candidate{arrWeight: 33, accountWeight: 33, riskWeight: 34}
}

// searchStripe scans one arrWeight stripe (accountWeight ascending) and
// returns its best candidate, plus its best cap-feasible candidate when
// caps are in play.
func searchStripe(accounts []model.Account, reps []model.Rep, threshold int, geoMatchBonus, preserveBonus, highRiskThreshold float64, arrWeight int, hasRisk, capped bool, opts OptimizeOptions) stripeResult {
	var out stripeResult

	for accountWeight := 0; accountWeight <= 100-arrWeight; accountWeight++ {
		riskWeight := 100 - arrWeight - accountWeight
		if !hasRisk && riskWeight > 0 {
			continue
		}

		cfg := model.AllocationConfig{
			Threshold:         threshold,
			ARRWeight:         float64(arrWeight),
			AccountWeight:     float64(accountWeight),
			RiskWeight:        float64(riskWeight),
			GeoMatchBonus:     geoMatchBonus,
			PreserveBonus:     preserveBonus,
			HighRiskThreshold: highRiskThreshold,
		}
		results := Allocate(accounts, reps, cfg)
		metrics := SegmentBasedFairness(reps, results, accounts, cfg.Weights(), highRiskThreshold)

		c := candidate{arrWeight: arrWeight, accountWeight: accountWeight, riskWeight: riskWeight}
		if metrics.BalancedComposite != nil {
			c.balancedScore = *metrics.BalancedComposite
		}
		if capped {
			c.entRatio = segmentARRMaxMinRatio(model.SegmentEnterprise, reps, results, accounts)
			c.mmRatio = segmentARRMaxMinRatio(model.SegmentMidMarket, reps, results, accounts)
		}

		if out.best == nil || c.balancedScore > out.best.balancedScore {
			cc := c
			out.best = &cc
		}
		if capped && meetsCaps(c, opts) && (out.feasible == nil || c.balancedScore > out.feasible.balancedScore) {
			cc := c
			out.feasible = &cc
		}
	}
	return out
}

// meetsCaps reports whether a candidate satisfies every configured cap. A
// candidate with an unknowable ratio (nil) fails a configured cap.
func meetsCaps(c candidate, opts OptimizeOptions) bool {
	if opts.EnterpriseCap != nil && (c.entRatio == nil || *c.entRatio > *opts.EnterpriseCap) {
		return false
	}
	if opts.MidMarketCap != nil && (c.mmRatio == nil || *c.mmRatio > *opts.MidMarketCap) {
		return false
	}
	return true
}

// segmentARRMaxMinRatio computes max(rep ARR)/min(rep ARR) for one segment.
// Nil if the segment has no reps, no assignments, or a rep with zero ARR.
func segmentARRMaxMinRatio(segment model.Segment, reps []model.Rep, results []model.AllocationResult, accounts []model.Account) *float64 {
	segReps := model.RepsBySegment(reps, segment)
	segResults := resultsBySegment(results, segment)
	if len(segReps) == 0 || len(segResults) == 0 {
		return nil
	}

	totals := repARRTotals(segReps, segResults, accounts)
	min, max := totals[0], totals[0]
	for _, v := range totals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min <= 0 {
		return nil
	}
	ratio := max / min
	return &ratio
}
