package allocation

import (
	"sort"

	"github.com/sells-group/territory-cli/internal/model"
)

// repState is per-call scratch state for one rep, rebuilt fresh on every
// allocation pass and never shared across calls.
type repState struct {
	rep                model.Rep
	currentARR         float64
	currentAccounts    int
	currentRiskARR     float64
	assignedAccountIDs []string
}

// targetARR is the per-rep ARR target for a segment: total ARR / rep count,
// 0 if the segment has no reps.
func targetARR(reps []model.Rep, accounts []model.Account) float64 {
	if len(reps) == 0 {
		return 0
	}
	var total float64
	for _, a := range accounts {
		total += a.ARR
	}
	return total / float64(len(reps))
}

// targetAccounts is the per-rep account count target for a segment.
func targetAccounts(reps []model.Rep, accounts []model.Account) float64 {
	if len(reps) == 0 {
		return 0
	}
	return float64(len(accounts)) / float64(len(reps))
}

// targetRiskARR is the per-rep high-risk ARR target for a segment. Only
// accounts with a risk score at or above highRiskThreshold contribute.
func targetRiskARR(reps []model.Rep, accounts []model.Account, highRiskThreshold float64) float64 {
	if len(reps) == 0 {
		return 0
	}
	var total float64
	for _, a := range accounts {
		if a.HighRisk(highRiskThreshold) {
			total += a.ARR
		}
	}
	return total / float64(len(reps))
}

// blendedScore is the rep's normalized deficit from target across the three
// dimensions, weighted by the config's percentage weights. Positive means
// under target (needs more), negative means over target.
func blendedScore(st *repState, targARR, targAccounts, targRiskARR float64, cfg model.AllocationConfig) float64 {
	var arrNeed, accountNeed, riskNeed float64
	if targARR > 0 {
		arrNeed = (targARR - st.currentARR) / targARR
	}
	if targAccounts > 0 {
		accountNeed = (targAccounts - float64(st.currentAccounts)) / targAccounts
	}
	if targRiskARR > 0 {
		riskNeed = (targRiskARR - st.currentRiskARR) / targRiskARR
	}

	return arrNeed*cfg.ARRWeight/100 + accountNeed*cfg.AccountWeight/100 + riskNeed*cfg.RiskWeight/100
}

// sortAccountsForAllocation orders accounts by ARR descending, ties broken
// by account ID ascending. This ordering is a load-bearing contract shared
// with the audit trail generator; the two must never diverge.
func sortAccountsForAllocation(accounts []model.Account) []model.Account {
	sorted := make([]model.Account, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ARR != sorted[j].ARR {
			return sorted[i].ARR > sorted[j].ARR
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// scoreReps computes every rep's score for one account against the current
// segment state. Results are indexed like states.
func scoreReps(account model.Account, states []*repState, targARR, targAccounts, targRiskARR float64, cfg model.AllocationConfig) []model.RepScore {
	scores := make([]model.RepScore, len(states))
	for i, st := range states {
		blended := blendedScore(st, targARR, targAccounts, targRiskARR, cfg)
		geo := geoBonus(account, st.rep, cfg.GeoMatchBonus)
		preserve := preserveBonus(account, st.rep, cfg.PreserveBonus)
		scores[i] = model.RepScore{
			RepName:         st.rep.Name,
			BlendedScore:    blended,
			GeoBonus:        geo,
			PreserveBonus:   preserve,
			TotalScore:      ApplyBonuses(blended, geo, preserve),
			CurrentARR:      st.currentARR,
			CurrentAccounts: st.currentAccounts,
			CurrentRiskARR:  st.currentRiskARR,
		}
	}
	return scores
}

// pickWinner returns the index of the winning rep: highest total score, ties
// broken by lowest current ARR, then alphabetically-first rep name.
func pickWinner(scores []model.RepScore) int {
	winner := 0
	for i := 1; i < len(scores); i++ {
		c, w := scores[i], scores[winner]
		switch {
		case c.TotalScore > w.TotalScore:
			winner = i
		case c.TotalScore == w.TotalScore && c.CurrentARR < w.CurrentARR:
			winner = i
		case c.TotalScore == w.TotalScore && c.CurrentARR == w.CurrentARR && c.RepName < w.RepName:
			winner = i
		}
	}
	return winner
}

// assign books the account onto the winner's running state.
func assign(st *repState, account model.Account, highRiskThreshold float64) {
	st.currentARR += account.ARR
	st.currentAccounts++
	if account.HighRisk(highRiskThreshold) {
		st.currentRiskARR += account.ARR
	}
	st.assignedAccountIDs = append(st.assignedAccountIDs, account.ID)
}

// Allocate assigns every account to a rep within its segment using the
// weighted greedy algorithm: accounts are processed in descending ARR order
// and each goes to the rep with the greatest bonus-adjusted need.
//
// A segment with accounts but no reps contributes zero results; surfacing
// unallocatable accounts is the caller's concern, not an error here.
func Allocate(accounts []model.Account, reps []model.Rep, cfg model.AllocationConfig) []model.AllocationResult {
	enterprise, midMarket := SegmentAccounts(accounts, cfg.Threshold)

	var results []model.AllocationResult
	results = append(results, allocateSegment(enterprise, model.RepsBySegment(reps, model.SegmentEnterprise), model.SegmentEnterprise, cfg)...)
	results = append(results, allocateSegment(midMarket, model.RepsBySegment(reps, model.SegmentMidMarket), model.SegmentMidMarket, cfg)...)
	return results
}

// allocateSegment runs the greedy loop for one segment.
func allocateSegment(accounts []model.Account, reps []model.Rep, segment model.Segment, cfg model.AllocationConfig) []model.AllocationResult {
	if len(accounts) == 0 || len(reps) == 0 {
		return nil
	}

	targARR := targetARR(reps, accounts)
	targAccounts := targetAccounts(reps, accounts)
	targRiskARR := targetRiskARR(reps, accounts, cfg.HighRiskThreshold)

	states := make([]*repState, len(reps))
	for i, r := range reps {
		states[i] = &repState{rep: r}
	}

	results := make([]model.AllocationResult, 0, len(accounts))
	for _, account := range sortAccountsForAllocation(accounts) {
		scores := scoreReps(account, states, targARR, targAccounts, targRiskARR, cfg)
		win := pickWinner(scores)

		assign(states[win], account, cfg.HighRiskThreshold)

		results = append(results, model.AllocationResult{
			AccountID:     account.ID,
			AssignedRep:   states[win].rep.Name,
			Segment:       segment,
			BlendedScore:  scores[win].BlendedScore,
			GeoBonus:      scores[win].GeoBonus,
			PreserveBonus: scores[win].PreserveBonus,
			TotalScore:    scores[win].TotalScore,
		})
	}
	return results
}
