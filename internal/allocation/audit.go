package allocation

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/territory-cli/internal/model"
)

// printer formats counts with thousands separators for reasoning strings.
var printer = message.NewPrinter(language.English)

// SegmentReason explains why an account landed in its segment, e.g.
// "Enterprise (threshold 2,750: 53,000 >= 2,750)".
func SegmentReason(account model.Account, segment model.Segment, threshold int) string {
	op := ">="
	if segment == model.SegmentMidMarket {
		op = "<"
	}
	return printer.Sprintf("%s (threshold %d: %d %s %d)", string(segment), threshold, account.NumEmployees, op, threshold)
}

// WinnerReason explains why the winner took the account: a tie-break, a
// decisive preference bonus, or plain greatest unmet need. The message
// names the mechanism rather than repeating the numbers already captured
// in the step's score table.
func WinnerReason(winner model.RepScore, allScores []model.RepScore) string {
	// Runner-up: best score among the losers, ranked exactly like the
	// allocator ranks candidates.
	var others []model.RepScore
	for _, s := range allScores {
		if s.RepName != winner.RepName {
			others = append(others, s)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		if others[i].TotalScore != others[j].TotalScore {
			return others[i].TotalScore > others[j].TotalScore
		}
		if others[i].CurrentARR != others[j].CurrentARR {
			return others[i].CurrentARR < others[j].CurrentARR
		}
		return others[i].RepName < others[j].RepName
	})

	var tied []model.RepScore
	for _, s := range others {
		if s.TotalScore == winner.TotalScore {
			tied = append(tied, s)
		}
	}

	if len(tied) > 0 {
		lowerARR := true
		for _, s := range tied {
			if winner.CurrentARR >= s.CurrentARR {
				lowerARR = false
				break
			}
		}
		if lowerARR {
			return printer.Sprintf("Tied with %s but had lower current ARR", tied[0].RepName)
		}
		return printer.Sprintf("Tied with %s, won alphabetically", tied[0].RepName)
	}

	// Were the bonuses decisive? Without them the winner's raw blended
	// score would not have beaten the runner-up.
	hasBonuses := winner.GeoBonus > 0 || winner.PreserveBonus > 0
	if hasBonuses && len(others) > 0 && winner.BlendedScore <= others[0].TotalScore {
		var names []string
		if winner.GeoBonus > 0 {
			names = append(names, "geo")
		}
		if winner.PreserveBonus > 0 {
			names = append(names, "preserve")
		}
		plural := "bonus"
		if len(names) > 1 {
			plural = "bonuses"
		}
		return printer.Sprintf("%s %s pushed score above %s's need score", strings.Join(names, " + "), plural, others[0].RepName)
	}

	needStatus := "most under target"
	if winner.BlendedScore < 0 {
		needStatus = "least over target"
	}
	return "Had the highest need (" + needStatus + ")"
}

// AuditTrail replays the allocator's exact per-account logic (same targets,
// same sort order, same scoring, same tie-break) while capturing every
// candidate rep's score breakdown and a reasoning string for the winner.
// For any account, the step's winner always equals the rep Allocate would
// assign under the same config.
func AuditTrail(accounts []model.Account, reps []model.Rep, cfg model.AllocationConfig) []model.AuditStep {
	enterprise, midMarket := SegmentAccounts(accounts, cfg.Threshold)

	steps := auditSegment(enterprise, model.RepsBySegment(reps, model.SegmentEnterprise), model.SegmentEnterprise, cfg)
	steps = append(steps, auditSegment(midMarket, model.RepsBySegment(reps, model.SegmentMidMarket), model.SegmentMidMarket, cfg)...)

	// Merge the two segments into the global presentation order: ARR
	// descending, account ID ascending.
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Account.ARR != steps[j].Account.ARR {
			return steps[i].Account.ARR > steps[j].Account.ARR
		}
		return steps[i].Account.ID < steps[j].Account.ID
	})
	return steps
}

func auditSegment(accounts []model.Account, reps []model.Rep, segment model.Segment, cfg model.AllocationConfig) []model.AuditStep {
	if len(accounts) == 0 || len(reps) == 0 {
		return nil
	}

	targARR := targetARR(reps, accounts)
	targAccounts := targetAccounts(reps, accounts)
	targRiskARR := targetRiskARR(reps, accounts, cfg.HighRiskThreshold)

	states := make([]*repState, len(reps))
	eligible := make([]string, len(reps))
	for i, r := range reps {
		states[i] = &repState{rep: r}
		eligible[i] = r.Name
	}

	steps := make([]model.AuditStep, 0, len(accounts))
	for idx, account := range sortAccountsForAllocation(accounts) {
		scores := scoreReps(account, states, targARR, targAccounts, targRiskARR, cfg)
		win := pickWinner(scores)

		assign(states[win], account, cfg.HighRiskThreshold)

		steps = append(steps, model.AuditStep{
			Account:         account,
			Segment:         segment,
			SegmentReason:   SegmentReason(account, segment, cfg.Threshold),
			EligibleReps:    eligible,
			RepScores:       scores,
			Winner:          scores[win].RepName,
			Reasoning:       WinnerReason(scores[win], scores),
			AllocationIndex: idx,
		})
	}
	return steps
}
