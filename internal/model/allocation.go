package model

// AllocationConfig holds the user-adjustable knobs for one allocation run.
// Weights are percentages (0-100) expected to sum to 100; bonuses are
// multipliers in [0, 0.10]. The engine documents but does not re-validate
// these preconditions.
type AllocationConfig struct {
	Threshold         int     `json:"threshold"`
	ARRWeight         float64 `json:"arr_weight"`
	AccountWeight     float64 `json:"account_weight"`
	RiskWeight        float64 `json:"risk_weight"`
	GeoMatchBonus     float64 `json:"geo_match_bonus"`
	PreserveBonus     float64 `json:"preserve_bonus"`
	HighRiskThreshold float64 `json:"high_risk_threshold"`
}

// Weights returns the config's balance weights as a Weights value.
func (c AllocationConfig) Weights() Weights {
	return Weights{ARR: c.ARRWeight, Account: c.AccountWeight, Risk: c.RiskWeight}
}

// Weights is a fairness weighting across the three balance dimensions.
type Weights struct {
	ARR     float64 `json:"arr"`
	Account float64 `json:"account"`
	Risk    float64 `json:"risk"`
}

// AllocationResult records the assignment of a single account to a rep,
// with the score breakdown that produced the decision.
type AllocationResult struct {
	AccountID     string  `json:"account_id"`
	AssignedRep   string  `json:"assigned_rep"`
	Segment       Segment `json:"segment"`
	BlendedScore  float64 `json:"blended_score"`
	GeoBonus      float64 `json:"geo_bonus"`
	PreserveBonus float64 `json:"preserve_bonus"`
	TotalScore    float64 `json:"total_score"`
}

// FairnessMetrics holds the 0-100 fairness scores for an allocation.
// A nil score means "not computable" (empty segment, no risk data, zero
// mean), which is distinct from 0 (maximally unfair).
type FairnessMetrics struct {
	ARRFairness       *float64 `json:"arr_fairness"`
	AccountFairness   *float64 `json:"account_fairness"`
	RiskFairness      *float64 `json:"risk_fairness"`
	CustomComposite   *float64 `json:"custom_composite"`
	BalancedComposite *float64 `json:"balanced_composite"`
}

// OptimizationResult is the recommended weight split from the brute-force
// optimizer. Weights are integers summing to exactly 100.
type OptimizationResult struct {
	ARRWeight      int     `json:"arr_weight"`
	AccountWeight  int     `json:"account_weight"`
	RiskWeight     int     `json:"risk_weight"`
	BalancedScore  float64 `json:"balanced_score"`
	ConstraintsMet bool    `json:"constraints_met"`
}

// SensitivityPoint is one sample of the threshold sensitivity series.
// DealSizeRatio is nil when either segment is empty or the Mid Market mean
// ARR is zero; the label renders as "N/A" in that case.
type SensitivityPoint struct {
	Threshold          int      `json:"threshold"`
	BalancedFairness   float64  `json:"balanced_fairness"`
	CustomFairness     float64  `json:"custom_fairness"`
	DealSizeRatio      *float64 `json:"deal_size_ratio"`
	DealSizeRatioLabel string   `json:"deal_size_ratio_label"`
}

// RepScore is one candidate rep's full score breakdown at decision time,
// captured by the audit trail generator.
type RepScore struct {
	RepName         string  `json:"rep_name"`
	BlendedScore    float64 `json:"blended_score"`
	GeoBonus        float64 `json:"geo_bonus"`
	PreserveBonus   float64 `json:"preserve_bonus"`
	TotalScore      float64 `json:"total_score"`
	CurrentARR      float64 `json:"current_arr"`
	CurrentAccounts int     `json:"current_accounts"`
	CurrentRiskARR  float64 `json:"current_risk_arr"`
}

// AuditStep is a replay record of one account's assignment decision.
// AllocationIndex is the 0-based position in the step's own segment
// processing order.
type AuditStep struct {
	Account         Account    `json:"account"`
	Segment         Segment    `json:"segment"`
	SegmentReason   string     `json:"segment_reason"`
	EligibleReps    []string   `json:"eligible_reps"`
	RepScores       []RepScore `json:"rep_scores"`
	Winner          string     `json:"winner"`
	Reasoning       string     `json:"reasoning"`
	AllocationIndex int        `json:"allocation_index"`
}
