package allocation

import (
	"github.com/sells-group/territory-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

// arrOnlyConfig balances purely on ARR with no bonuses, which makes winner
// selection hand-computable.
func arrOnlyConfig(threshold int) model.AllocationConfig {
	return model.AllocationConfig{
		Threshold:         threshold,
		ARRWeight:         100,
		HighRiskThreshold: 70,
	}
}

// mixedBook is a two-segment dataset with risk scores, geo matches and
// original-rep relationships, used by the cross-component tests.
func mixedBook() ([]model.Account, []model.Rep) {
	accounts := []model.Account{
		{ID: "A1", Name: "Acme", OriginalRep: "Alice", ARR: 500_000, NumEmployees: 12_000, Location: "CA", RiskScore: fptr(85)},
		{ID: "A2", Name: "Globex", OriginalRep: "Bob", ARR: 350_000, NumEmployees: 8_000, Location: "NY", RiskScore: fptr(40)},
		{ID: "A3", Name: "Initech", OriginalRep: "Alice", ARR: 350_000, NumEmployees: 6_500, Location: "TX", RiskScore: nil},
		{ID: "A4", Name: "Umbrella", OriginalRep: "Carol", ARR: 200_000, NumEmployees: 9_200, Location: "ca", RiskScore: fptr(91)},
		{ID: "A5", Name: "Hooli", OriginalRep: "Dave", ARR: 180_000, NumEmployees: 1_200, Location: "WA", RiskScore: fptr(12)},
		{ID: "A6", Name: "Vandelay", OriginalRep: "Dave", ARR: 120_000, NumEmployees: 800, Location: "OR", RiskScore: nil},
		{ID: "A7", Name: "Stark", OriginalRep: "Erin", ARR: 95_000, NumEmployees: 2_400, Location: "WA", RiskScore: fptr(77)},
		{ID: "A8", Name: "Wayne", OriginalRep: "Erin", ARR: 60_000, NumEmployees: 450, Location: "or", RiskScore: fptr(55)},
		{ID: "A9", Name: "Cyberdyne", OriginalRep: "Dave", ARR: 60_000, NumEmployees: 3_100, Location: "WA", RiskScore: nil},
	}
	reps := []model.Rep{
		{Name: "Alice", Segment: model.SegmentEnterprise, Location: "CA"},
		{Name: "Bob", Segment: model.SegmentEnterprise, Location: "NY"},
		{Name: "Carol", Segment: model.SegmentEnterprise, Location: "TX"},
		{Name: "Dave", Segment: model.SegmentMidMarket, Location: "WA"},
		{Name: "Erin", Segment: model.SegmentMidMarket, Location: "OR"},
	}
	return accounts, reps
}

func mixedConfig() model.AllocationConfig {
	return model.AllocationConfig{
		Threshold:         5000,
		ARRWeight:         33,
		AccountWeight:     33,
		RiskWeight:        34,
		GeoMatchBonus:     0.05,
		PreserveBonus:     0.05,
		HighRiskThreshold: 70,
	}
}
