package model

import "time"

// Run is one persisted allocation: the configuration used, every
// per-account assignment, and the fairness scores of the outcome.
type Run struct {
	ID           string             `json:"id"`
	Config       AllocationConfig   `json:"config"`
	RepCount     int                `json:"rep_count"`
	AccountCount int                `json:"account_count"`
	Results      []AllocationResult `json:"results"`
	Fairness     FairnessMetrics    `json:"fairness"`
	CreatedAt    time.Time          `json:"created_at"`
}

// RunSummary is the listing view of a run, without the per-account
// payload.
type RunSummary struct {
	ID               string    `json:"id"`
	Threshold        int       `json:"threshold"`
	RepCount         int       `json:"rep_count"`
	AccountCount     int       `json:"account_count"`
	BalancedFairness *float64  `json:"balanced_fairness"`
	CreatedAt        time.Time `json:"created_at"`
}

// Summary projects a run down to its listing view.
func (r *Run) Summary() RunSummary {
	return RunSummary{
		ID:               r.ID,
		Threshold:        r.Config.Threshold,
		RepCount:         r.RepCount,
		AccountCount:     r.AccountCount,
		BalancedFairness: r.Fairness.BalancedComposite,
		CreatedAt:        r.CreatedAt,
	}
}
