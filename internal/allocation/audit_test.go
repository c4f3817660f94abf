package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/territory-cli/internal/model"
)

// The audit trail and the allocator share per-account logic; if they ever
// disagree about a winner, the explainability view is lying. This is the
// single most important property in the package.
func TestAuditTrailAgreesWithAllocator(t *testing.T) {
	t.Parallel()

	accounts, reps := mixedBook()

	configs := []model.AllocationConfig{
		mixedConfig(),
		arrOnlyConfig(5000),
		{Threshold: 2000, ARRWeight: 20, AccountWeight: 60, RiskWeight: 20, GeoMatchBonus: 0.10, PreserveBonus: 0.02, HighRiskThreshold: 50},
		{Threshold: 10_000, AccountWeight: 100, HighRiskThreshold: 70},
	}

	for _, cfg := range configs {
		results := Allocate(accounts, reps, cfg)
		steps := AuditTrail(accounts, reps, cfg)
		require.Len(t, steps, len(results))

		assignedBy := map[string]string{}
		for _, res := range results {
			assignedBy[res.AccountID] = res.AssignedRep
		}
		for _, step := range steps {
			assert.Equal(t, assignedBy[step.Account.ID], step.Winner,
				"audit winner diverged from allocator for account %s", step.Account.ID)
		}
	}
}

func TestAuditTrailOrderAndIndices(t *testing.T) {
	t.Parallel()

	accounts, reps := mixedBook()
	cfg := mixedConfig()

	steps := AuditTrail(accounts, reps, cfg)
	require.NotEmpty(t, steps)

	// Presentation order: ARR descending, ID ascending across segments.
	for i := 1; i < len(steps); i++ {
		prev, cur := steps[i-1], steps[i]
		ordered := prev.Account.ARR > cur.Account.ARR ||
			(prev.Account.ARR == cur.Account.ARR && prev.Account.ID < cur.Account.ID)
		assert.True(t, ordered, "steps out of order at %d", i)
	}

	// AllocationIndex counts per segment, 0-based and dense.
	perSegment := map[model.Segment][]model.AuditStep{}
	for _, s := range steps {
		perSegment[s.Segment] = append(perSegment[s.Segment], s)
	}
	for _, segSteps := range perSegment {
		indices := map[int]bool{}
		for _, s := range segSteps {
			indices[s.AllocationIndex] = true
		}
		for i := range segSteps {
			assert.True(t, indices[i], "missing allocation index %d", i)
		}
	}
}

func TestAuditStepCapturesAllCandidates(t *testing.T) {
	t.Parallel()

	accounts, reps := mixedBook()
	steps := AuditTrail(accounts, reps, mixedConfig())

	for _, step := range steps {
		segReps := model.RepsBySegment(reps, step.Segment)
		require.Len(t, step.RepScores, len(segReps))
		require.Len(t, step.EligibleReps, len(segReps))
		for i, r := range segReps {
			assert.Equal(t, r.Name, step.RepScores[i].RepName)
			assert.InDelta(t,
				ApplyBonuses(step.RepScores[i].BlendedScore, step.RepScores[i].GeoBonus, step.RepScores[i].PreserveBonus),
				step.RepScores[i].TotalScore, 1e-12)
		}
	}
}

func TestSegmentReason(t *testing.T) {
	t.Parallel()

	account := model.Account{NumEmployees: 53_000}
	got := SegmentReason(account, model.SegmentEnterprise, 2750)
	assert.Equal(t, "Enterprise (threshold 2,750: 53,000 >= 2,750)", got)

	account = model.Account{NumEmployees: 450}
	got = SegmentReason(account, model.SegmentMidMarket, 2750)
	assert.Equal(t, "Mid Market (threshold 2,750: 450 < 2,750)", got)
}

func TestWinnerReasonTieBreaks(t *testing.T) {
	t.Parallel()

	// Equal scores, winner has strictly lower current ARR.
	winner := model.RepScore{RepName: "Alice", TotalScore: 1.0, CurrentARR: 50_000}
	all := []model.RepScore{
		winner,
		{RepName: "Bob", TotalScore: 1.0, CurrentARR: 80_000},
	}
	assert.Equal(t, "Tied with Bob but had lower current ARR", WinnerReason(winner, all))

	// Equal scores and equal ARR: alphabetical.
	winner = model.RepScore{RepName: "Alice", TotalScore: 1.0}
	all = []model.RepScore{
		winner,
		{RepName: "Bob", TotalScore: 1.0},
	}
	assert.Equal(t, "Tied with Bob, won alphabetically", WinnerReason(winner, all))
}

func TestWinnerReasonDecisiveBonus(t *testing.T) {
	t.Parallel()

	// Without the geo bonus Bob's raw blended score (1.0) would not beat
	// Alice's total (1.0); the bonus decided it.
	winner := model.RepScore{RepName: "Bob", BlendedScore: 1.0, GeoBonus: 0.10, TotalScore: 1.10}
	all := []model.RepScore{
		{RepName: "Alice", BlendedScore: 1.0, TotalScore: 1.0},
		winner,
	}
	assert.Equal(t, "geo bonus pushed score above Alice's need score", WinnerReason(winner, all))

	// Both bonuses in play.
	winner = model.RepScore{RepName: "Bob", BlendedScore: 1.0, GeoBonus: 0.05, PreserveBonus: 0.05, TotalScore: 1.10}
	all = []model.RepScore{
		{RepName: "Alice", BlendedScore: 1.0, TotalScore: 1.0},
		winner,
	}
	assert.Equal(t, "geo + preserve bonuses pushed score above Alice's need score", WinnerReason(winner, all))
}

func TestWinnerReasonHighestNeed(t *testing.T) {
	t.Parallel()

	winner := model.RepScore{RepName: "Alice", BlendedScore: 0.8, TotalScore: 0.8}
	all := []model.RepScore{
		winner,
		{RepName: "Bob", BlendedScore: 0.2, TotalScore: 0.2},
	}
	assert.Equal(t, "Had the highest need (most under target)", WinnerReason(winner, all))

	// Every rep over target: the winner is merely least over.
	winner = model.RepScore{RepName: "Alice", BlendedScore: -0.1, TotalScore: -0.1}
	all = []model.RepScore{
		winner,
		{RepName: "Bob", BlendedScore: -0.5, TotalScore: -0.5},
	}
	assert.Equal(t, "Had the highest need (least over target)", WinnerReason(winner, all))
}

func TestWinnerReasonSingleRep(t *testing.T) {
	t.Parallel()

	winner := model.RepScore{RepName: "Alice", BlendedScore: 1.0, GeoBonus: 0.05, TotalScore: 1.05}
	assert.Equal(t, "Had the highest need (most under target)", WinnerReason(winner, []model.RepScore{winner}))
}
