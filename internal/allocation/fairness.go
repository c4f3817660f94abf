package allocation

import (
	"math"

	"github.com/sells-group/territory-cli/internal/model"
)

// CoefficientOfVariation returns the population CV% of values:
// stddev/mean*100 with both moments divided by N. It returns nil for an
// empty slice or a zero mean (undefined ratio). A single value yields 0.
func CoefficientOfVariation(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return nil
	}

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	cv := math.Sqrt(variance) / mean * 100
	return &cv
}

// fairnessFromCV converts CV% to a 0-100 fairness score: 100-cv clamped to
// [0, 100]. Nil propagates.
func fairnessFromCV(cv *float64) *float64 {
	if cv == nil {
		return nil
	}
	f := math.Max(0, math.Min(100, 100-*cv))
	return &f
}

// repARRTotals sums assigned ARR per rep, in reps order, with zeros for
// reps that received nothing. A rep left empty while others are loaded is
// itself an unfairness signal, so nobody is excluded.
func repARRTotals(reps []model.Rep, results []model.AllocationResult, accounts []model.Account) []float64 {
	index := make(map[string]int, len(reps))
	for i, r := range reps {
		index[r.Name] = i
	}
	arrByID := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		arrByID[a.ID] = a.ARR
	}

	totals := make([]float64, len(reps))
	for _, res := range results {
		if i, ok := index[res.AssignedRep]; ok {
			totals[i] += arrByID[res.AccountID]
		}
	}
	return totals
}

// ARRFairness scores how evenly ARR is spread across reps. Nil if there are
// no reps or no results.
func ARRFairness(reps []model.Rep, results []model.AllocationResult, accounts []model.Account) *float64 {
	if len(reps) == 0 || len(results) == 0 {
		return nil
	}
	return fairnessFromCV(CoefficientOfVariation(repARRTotals(reps, results, accounts)))
}

// AccountFairness scores how evenly account counts are spread across reps.
func AccountFairness(reps []model.Rep, results []model.AllocationResult) *float64 {
	if len(reps) == 0 || len(results) == 0 {
		return nil
	}

	index := make(map[string]int, len(reps))
	for i, r := range reps {
		index[r.Name] = i
	}
	counts := make([]float64, len(reps))
	for _, res := range results {
		if i, ok := index[res.AssignedRep]; ok {
			counts[i]++
		}
	}
	return fairnessFromCV(CoefficientOfVariation(counts))
}

// RiskFairness scores how evenly each rep's high-risk ARR share
// (highRiskARR/totalARR*100) is spread. It is nil when no account in the
// input carries a risk score at all, which distinguishes "no risk data"
// from "risk data but perfectly balanced".
func RiskFairness(reps []model.Rep, results []model.AllocationResult, accounts []model.Account, highRiskThreshold float64) *float64 {
	if len(reps) == 0 || len(results) == 0 {
		return nil
	}
	if !model.AnyRiskScore(accounts) {
		return nil
	}

	index := make(map[string]int, len(reps))
	for i, r := range reps {
		index[r.Name] = i
	}
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	totalARR := make([]float64, len(reps))
	riskARR := make([]float64, len(reps))
	for _, res := range results {
		i, ok := index[res.AssignedRep]
		if !ok {
			continue
		}
		account, ok := byID[res.AccountID]
		if !ok {
			continue
		}
		totalARR[i] += account.ARR
		if account.HighRisk(highRiskThreshold) {
			riskARR[i] += account.ARR
		}
	}

	shares := make([]float64, len(reps))
	for i := range reps {
		if totalARR[i] > 0 {
			shares[i] = riskARR[i] / totalARR[i] * 100
		}
	}
	return fairnessFromCV(CoefficientOfVariation(shares))
}

// CustomComposite is the weighted mean of the non-nil dimension scores,
// with weights renormalized to the dimensions actually present: a nil risk
// score shifts all weight onto ARR and account rather than dragging the
// composite toward zero.
func CustomComposite(arr, account, risk *float64, weights model.Weights) *float64 {
	var weightedSum, totalWeight float64
	for _, c := range []struct {
		score  *float64
		weight float64
	}{
		{arr, weights.ARR},
		{account, weights.Account},
		{risk, weights.Risk},
	} {
		if c.score != nil {
			weightedSum += *c.score * c.weight
			totalWeight += c.weight
		}
	}
	if totalWeight == 0 {
		return nil
	}
	out := weightedSum / totalWeight
	return &out
}

// BalancedComposite is the unweighted mean of whichever dimension scores
// are non-nil; nil when all three are.
func BalancedComposite(arr, account, risk *float64) *float64 {
	var sum float64
	var n int
	for _, s := range []*float64{arr, account, risk} {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	out := sum / float64(n)
	return &out
}

// Fairness computes the full metric set over one rep/result population.
func Fairness(reps []model.Rep, results []model.AllocationResult, accounts []model.Account, weights model.Weights, highRiskThreshold float64) model.FairnessMetrics {
	arr := ARRFairness(reps, results, accounts)
	account := AccountFairness(reps, results)
	risk := RiskFairness(reps, results, accounts, highRiskThreshold)
	return model.FairnessMetrics{
		ARRFairness:       arr,
		AccountFairness:   account,
		RiskFairness:      risk,
		CustomComposite:   CustomComposite(arr, account, risk, weights),
		BalancedComposite: BalancedComposite(arr, account, risk),
	}
}

// SegmentBasedFairness computes every metric independently for Enterprise
// and Mid Market and averages the two. A segment whose metric is nil is
// excluded from the average rather than counted as zero. This matches how
// the optimizer scores weight candidates.
func SegmentBasedFairness(reps []model.Rep, results []model.AllocationResult, accounts []model.Account, weights model.Weights, highRiskThreshold float64) model.FairnessMetrics {
	ent := Fairness(
		model.RepsBySegment(reps, model.SegmentEnterprise),
		resultsBySegment(results, model.SegmentEnterprise),
		accounts, weights, highRiskThreshold,
	)
	mm := Fairness(
		model.RepsBySegment(reps, model.SegmentMidMarket),
		resultsBySegment(results, model.SegmentMidMarket),
		accounts, weights, highRiskThreshold,
	)

	return model.FairnessMetrics{
		ARRFairness:       averageScores(ent.ARRFairness, mm.ARRFairness),
		AccountFairness:   averageScores(ent.AccountFairness, mm.AccountFairness),
		RiskFairness:      averageScores(ent.RiskFairness, mm.RiskFairness),
		CustomComposite:   averageScores(ent.CustomComposite, mm.CustomComposite),
		BalancedComposite: averageScores(ent.BalancedComposite, mm.BalancedComposite),
	}
}

func resultsBySegment(results []model.AllocationResult, segment model.Segment) []model.AllocationResult {
	var out []model.AllocationResult
	for _, r := range results {
		if r.Segment == segment {
			out = append(out, r)
		}
	}
	return out
}

// averageScores averages two nullable scores, passing through whichever is
// non-nil when the other is missing.
func averageScores(a, b *float64) *float64 {
	switch {
	case a != nil && b != nil:
		avg := (*a + *b) / 2
		return &avg
	case a != nil:
		return a
	default:
		return b
	}
}

// FairnessColor maps a fairness score to its display band. Informational
// only; no computation depends on it.
func FairnessColor(score *float64) string {
	if score == nil {
		return "gray"
	}
	switch {
	case *score >= 94:
		return "dark-green"
	case *score >= 88:
		return "light-green"
	case *score >= 82:
		return "yellow"
	case *score >= 75:
		return "orange"
	default:
		return "red"
	}
}
