// Package allocation implements the territory allocation engine: threshold
// segmentation, the weighted greedy assignment algorithm, CV%-based fairness
// scoring, the brute-force weight optimizer, threshold sensitivity analysis,
// and the audit trail generator.
//
// Everything here is pure with respect to its inputs and fully deterministic:
// identical inputs always produce identical outputs.
package allocation

import (
	"github.com/sells-group/territory-cli/internal/model"
)

// ThresholdStep is the employee-count granularity of the threshold slider
// and the sensitivity analyzer sampling.
const ThresholdStep = 1000

// SegmentAccount classifies one account: Enterprise iff NumEmployees is at
// or above the threshold.
func SegmentAccount(account model.Account, threshold int) model.Segment {
	if account.NumEmployees >= threshold {
		return model.SegmentEnterprise
	}
	return model.SegmentMidMarket
}

// SegmentAccounts partitions accounts into Enterprise and Mid Market in a
// single pass, preserving input order.
func SegmentAccounts(accounts []model.Account, threshold int) (enterprise, midMarket []model.Account) {
	for _, a := range accounts {
		if SegmentAccount(a, threshold) == model.SegmentEnterprise {
			enterprise = append(enterprise, a)
		} else {
			midMarket = append(midMarket, a)
		}
	}
	return enterprise, midMarket
}

// ThresholdRange returns the employee-count range of the data, min rounded
// down and max rounded up to the nearest thousand for clean slider values.
// An empty account list yields {0, 0}.
func ThresholdRange(accounts []model.Account) (min, max int) {
	if len(accounts) == 0 {
		return 0, 0
	}

	lo, hi := accounts[0].NumEmployees, accounts[0].NumEmployees
	for _, a := range accounts[1:] {
		if a.NumEmployees < lo {
			lo = a.NumEmployees
		}
		if a.NumEmployees > hi {
			hi = a.NumEmployees
		}
	}

	min = (lo / ThresholdStep) * ThresholdStep
	max = ((hi + ThresholdStep - 1) / ThresholdStep) * ThresholdStep
	return min, max
}
