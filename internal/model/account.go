package model

// Account represents a customer account to be allocated. RiskScore is nil
// when the input carried no risk data; nil and 0 are distinct states.
type Account struct {
	ID           string   `json:"account_id"`
	Name         string   `json:"account_name"`
	OriginalRep  string   `json:"original_rep"`
	ARR          float64  `json:"arr"`
	NumEmployees int      `json:"num_employees"`
	Location     string   `json:"location"`
	RiskScore    *float64 `json:"risk_score"`
}

// HighRisk reports whether the account has a risk score at or above the
// high-risk threshold. Accounts without a risk score are never high-risk.
func (a Account) HighRisk(threshold float64) bool {
	return a.RiskScore != nil && *a.RiskScore >= threshold
}

// AnyRiskScore reports whether at least one account carries a risk score.
// When false, the risk dimension is structurally unavailable.
func AnyRiskScore(accounts []Account) bool {
	for _, a := range accounts {
		if a.RiskScore != nil {
			return true
		}
	}
	return false
}
